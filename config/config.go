package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/ai"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage/sqlstore"
	"github.com/pelletier/go-toml/v2"
)

// Config is the complete application configuration.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Vector    VectorConfig    `toml:"vector"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Index     IndexConfig     `toml:"index"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// DatabaseConfig locates the relational article store.
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Path     string `toml:"path"`
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
}

// VectorConfig locates and shapes the vector collection.
type VectorConfig struct {
	Path       string `toml:"path"`
	Collection string `toml:"collection"`
	Dimension  int    `toml:"dimension"`
	Metric     string `toml:"metric"`
	NList      int    `toml:"nlist"`
}

// EmbeddingConfig describes the embedding service.
type EmbeddingConfig struct {
	Host        string `toml:"host"`
	Model       string `toml:"model"`
	Token       string `toml:"token"`
	Concurrency int    `toml:"concurrency"`
	BatchSize   int    `toml:"batch_size"`
	CacheSize   int    `toml:"cache_size"`
}

// SearchConfig holds query defaults and timeouts.
type SearchConfig struct {
	NProbe        int      `toml:"nprobe"`
	Limit         int      `toml:"limit"`
	VectorTimeout Duration `toml:"vector_timeout"`
	FetchTimeout  Duration `toml:"fetch_timeout"`
}

// IndexConfig holds fusion and upsert settings.
type IndexConfig struct {
	Weights       WeightsConfig `toml:"weights"`
	BatchSize     int           `toml:"batch_size"`
	UpsertTimeout Duration      `toml:"upsert_timeout"`
}

// WeightsConfig are the fusion weights of the title, abstract and summary vectors.
type WeightsConfig struct {
	Title    float32 `toml:"title"`
	Abstract float32 `toml:"abstract"`
	Summary  float32 `toml:"summary"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Driver: sqlstore.DriverSQLite,
			Path:   "data/articles.db",
			Port:   3306,
		},
		Vector: VectorConfig{
			Path:       "data/vectors",
			Collection: "articles",
			Dimension:  core.DefaultDimension,
			Metric:     string(core.MetricL2),
			NList:      128,
		},
		Embedding: EmbeddingConfig{
			Host:        aiDefaults.EmbeddingHost,
			Model:       aiDefaults.EmbeddingModel,
			Token:       aiDefaults.APIToken,
			Concurrency: aiDefaults.MaxConcurrency,
			BatchSize:   aiDefaults.BatchSize,
			CacheSize:   aiDefaults.CacheSize,
		},
		Search: SearchConfig{
			NProbe:        20,
			Limit:         10,
			VectorTimeout: Duration(5 * time.Second),
			FetchTimeout:  Duration(5 * time.Second),
		},
		Index: IndexConfig{
			Weights: WeightsConfig{
				Title:    core.DefaultWeights.Title,
				Abstract: core.DefaultWeights.Abstract,
				Summary:  core.DefaultWeights.Summary,
			},
			BatchSize:     256,
			UpsertTimeout: Duration(30 * time.Second),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	defer f.Close()

	if err := Decode(f, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Decode reads TOML from r into cfg. Keys absent from r keep their current values.
// Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", core.ErrConfiguration, strict.String())
		}
		return fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	return nil
}

// Write encodes cfg as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks the configuration is complete and consistent.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case sqlstore.DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case sqlstore.DriverMySQL:
		if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.Name == "") {
			errs = append(errs, errors.New("database.host and database.name are required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not one of sqlite, mysql", c.Database.Driver))
	}

	if c.Vector.Path == "" {
		errs = append(errs, errors.New("vector.path is required"))
	}
	if c.Vector.Collection == "" || strings.Contains(c.Vector.Collection, ":") {
		errs = append(errs, fmt.Errorf("vector.collection %q is invalid", c.Vector.Collection))
	}
	if c.Vector.Dimension < 1 {
		errs = append(errs, errors.New("vector.dimension must be positive"))
	}
	switch core.Metric(c.Vector.Metric) {
	case core.MetricL2, core.MetricIP:
	default:
		errs = append(errs, fmt.Errorf("vector.metric %q is not one of L2, IP", c.Vector.Metric))
	}
	if c.Vector.NList < 1 {
		errs = append(errs, errors.New("vector.nlist must be positive"))
	}

	if err := c.AI().Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Search.NProbe < 1 || c.Search.Limit < 1 {
		errs = append(errs, errors.New("search.nprobe and search.limit must be positive"))
	}
	if c.Search.VectorTimeout <= 0 || c.Search.FetchTimeout <= 0 {
		errs = append(errs, errors.New("search timeouts must be positive"))
	}

	w := c.Index.Weights
	if w.Title < 0 || w.Abstract < 0 || w.Summary < 0 || w.Title+w.Abstract+w.Summary == 0 {
		errs = append(errs, errors.New("index.weights must be non-negative and not all zero"))
	}
	if c.Index.BatchSize < 1 {
		errs = append(errs, errors.New("index.batch_size must be positive"))
	}
	if c.Index.UpsertTimeout <= 0 {
		errs = append(errs, errors.New("index.upsert_timeout must be positive"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// SQLStore returns the relational store settings.
func (c *Config) SQLStore() sqlstore.Config {
	return sqlstore.Config{
		Driver:   c.Database.Driver,
		Path:     c.Database.Path,
		DSN:      c.Database.DSN,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Database: c.Database.Name,
	}
}

// AI returns the embedding service settings.
func (c *Config) AI() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIToken(c.Embedding.Token),
		ai.WithDimension(c.Vector.Dimension),
		ai.WithMaxConcurrency(c.Embedding.Concurrency),
		ai.WithBatchSize(c.Embedding.BatchSize),
		ai.WithCacheSize(c.Embedding.CacheSize),
	)
}

// Weights returns the fusion weights.
func (c *Config) Weights() core.Weights {
	return core.Weights{
		Title:    c.Index.Weights.Title,
		Abstract: c.Index.Weights.Abstract,
		Summary:  c.Index.Weights.Summary,
	}
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", level)
	}
}
