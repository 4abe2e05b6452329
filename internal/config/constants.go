package config

// DefaultDatabasePath is the default path for the main application database.
// The task queue database is created next to it with a "-tasks" suffix.
const DefaultDatabasePath = "./commentbank.db"
