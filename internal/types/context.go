package types

type contextKey string

// DBKey carries the CLI's database handle through the command context.
const DBKey contextKey = "db"
