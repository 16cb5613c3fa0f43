// Package sqlstore implements storage.DocumentRepository over database/sql.
//
// Two dialects are supported: SQLite through the pure-Go modernc.org/sqlite
// driver (the default, a single file on disk) and MySQL through
// github.com/go-sql-driver/mysql. Schema migrations are embedded per dialect
// and applied on Open.
//
// Articles live in the articles table; derived summary and keyword tags live
// in article_summaries and are left-joined on every read.
package sqlstore
