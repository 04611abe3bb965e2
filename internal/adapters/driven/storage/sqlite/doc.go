// Package sqlite provides a SQLite-based implementation of driven.RunJournal.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a numbered .up.sql file.
//
// # Data Location
//
// By default, the database is stored at ~/.payslip-saver/data/journal.db
package sqlite
