//go:build !cgo_sqlite

package store

// Default build: pure Go SQLite, no C toolchain required.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver name
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"

	dsnParams = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
)
