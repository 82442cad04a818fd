package config

// DefaultBase is the revision diffs are taken against.
const DefaultBase = "HEAD"

// DefaultCount is the page size of "list".
const DefaultCount = 5

const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)
