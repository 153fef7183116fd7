//go:build cgo_sqlite

package store

// Built with:
//   CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver name
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"

	dsnParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
)
