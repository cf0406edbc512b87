// Package postgres provides a Postgres implementation of the book and run
// stores on a jackc/pgx connection pool.
//
// The schema mirrors the SQLite adapter, with native text[] columns in
// place of JSON-encoded lists. Edges are written with COPY inside the
// run's transaction.
package postgres
