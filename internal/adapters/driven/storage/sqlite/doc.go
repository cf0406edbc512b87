// Package sqlite provides a SQLite-based implementation of the book and
// run stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Both stores share a single database connection:
//
//   - BookStore: books and their chapters
//   - RunStore: runs and the edges each run produced
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.chaptergraph/data/chaptergraph.db
package sqlite
