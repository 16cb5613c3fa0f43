package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	articlesearch "github.com/bharadwaj008/Article-Search-Pipeline"
	"github.com/bharadwaj008/Article-Search-Pipeline/api"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/search"
	"github.com/urfave/cli/v2"
)

func openEngine(c *cli.Context) (*articlesearch.Engine, error) {
	engine, err := articlesearch.Open(c.Context, loadedConfig(c))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func ingestCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("ingest requires a JSON file argument")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := articlesearch.ReadArticles(f)
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	inserted, report, err := engine.Ingest(c.Context, docs)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Read %d articles, stored %d new, indexed %d\n", len(docs), len(inserted), report.Indexed)
	printFailures(c, report.Failed)
	return nil
}

func indexCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.Reindex(c.Context, c.Bool("drop"), c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	printFailures(c, report.Failed)
	return nil
}

func buildIndexCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	built, err := engine.BuildIndex(c.Context)
	if err != nil {
		return err
	}
	if built {
		fmt.Fprintln(c.App.Writer, "Index built")
	} else {
		fmt.Fprintln(c.App.Writer, "Index already exists")
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("search requires a query")
	}
	display := strings.ToLower(c.String("display"))
	if !validDisplay(display) {
		return fmt.Errorf("invalid display %q: must be one of all, titles, keywords", display)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var monitor search.SearchMonitor
	if c.Bool("verbose") {
		monitor = newVerboseMonitor(c.App.ErrWriter)
	}

	docs, err := engine.SearchWithMonitor(c.Context, query, c.Int("nprobe"), c.Int("limit"), monitor)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	results := toResults(docs)

	printResults(c.App.Writer, results, display)

	if path := c.String("csv"); path != "" {
		if err := exportCSV(path, results); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Results exported to %s\n", path)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	addr := c.String("addr")
	if addr == "" {
		addr = engine.Config().Server.Addr
	}

	server, err := api.NewServer(engine)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	return server.ListenAndServe(ctx, addr)
}

func showConfigCommand(c *cli.Context) error {
	return loadedConfig(c).Write(c.App.Writer)
}

func printFailures(c *cli.Context, failures []core.IndexFailure) {
	for _, f := range failures {
		fmt.Fprintf(c.App.ErrWriter, "  article %d: %v\n", f.DocumentID, f.Reason)
	}
}
