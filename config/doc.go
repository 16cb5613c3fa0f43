// Package config loads the TOML configuration file shared by the CLI and the
// HTTP server.
//
// Every section has defaults, so an empty or missing file yields a working
// local setup: SQLite and Badger under ./data and an OpenAI-compatible
// embedding server on localhost.
//
//	[database]
//	driver = "mysql"
//	host = "db.internal"
//	name = "articles"
//
//	[search]
//	nprobe = 20
//	limit = 10
package config
