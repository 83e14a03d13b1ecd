package schema

// Custom string types for type safety.
type (
	// Mode selects which backend adapter an entity cache talks to.
	Mode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for offline storage.
	DatabaseBackend string

	// LoadState represents the initial load outcome of a single entity cache.
	LoadState string
)

// All cache modes supported.
const (
	RemoteMode  Mode = "remote"
	OfflineMode Mode = "offline" // default
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All load states reported by the startup aggregator.
const (
	PendingState LoadState = "pending"
	LoadedState  LoadState = "loaded"
	FailedState  LoadState = "failed"
)

// Well-known record field names.
const (
	IdentityField = "_id"
	CodeField     = "ID"
	NameField     = "name"
	TitleField    = "title"
)

// ValidModes lists all valid cache modes.
var ValidModes = map[Mode]struct{}{
	RemoteMode:  {},
	OfflineMode: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
