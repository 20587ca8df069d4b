package constants

import "time"

const (
	AppName            = "distill"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/distill"
	DefaultConfigFile  = "config.yaml"
	DefaultDBFile      = "distill.db"
	Version            = "v0.3.0"

	// Environment variables consulted when building the run configuration
	EnvSource       = "DISTILL_SOURCE"
	EnvDBConnection = "DISTILL_DB_CONNECTION"
	EnvWFDBPath     = "WFDB"

	// Source kinds
	SourceWFDB     = "wfdb"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"

	// PostgresSchema is the schema holding the annotation archive tables
	PostgresSchema = "distill"

	// Export constants
	DefaultExportFile = "distill.xlsx"
	SummarySheetName  = "Summary"

	// DBTimeout bounds connecting to the PostgreSQL archive
	DBTimeout = 30 * time.Second
)
