package constants

const (
	// CredentialsCollection stores identity records (username + hashed secret).
	CredentialsCollection = "credentials"
	// ProfilesCollection stores game-facing account state.
	ProfilesCollection = "profiles"

	// CreateCredentialsTable is the PostgreSQL schema for credentials.
	// The UNIQUE constraint on username closes the duplicate-check race at
	// the storage layer.
	CreateCredentialsTable = `CREATE TABLE IF NOT EXISTS credentials (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		secret TEXT NOT NULL
	)`

	// CreateProfilesTable is the PostgreSQL schema for profiles.
	CreateProfilesTable = `CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		balance DOUBLE PRECISION NOT NULL DEFAULT 0,
		wins BIGINT NOT NULL DEFAULT 0,
		losses BIGINT NOT NULL DEFAULT 0,
		total_deposited DOUBLE PRECISION NOT NULL DEFAULT 0
	)`
)
