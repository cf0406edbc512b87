// Package services implements the driving port interfaces.
//
// BookService ingests and stores books, EdgeService runs the retrieval
// pipeline and records runs, GraphService projects a run into nodes and
// edges, and SettingsService owns the persisted retrieval configuration.
// Services depend only on domain, ports and the retrieval package.
package services
