package db

import "embed"

// MigrationFS holds the credential_sessions schema migrations so the binary
// carries its own schema; cmd/migrate replays them through golang-migrate's
// iofs source.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
