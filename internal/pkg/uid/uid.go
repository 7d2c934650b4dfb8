// Package uid generates identifiers: snowflake numbers for record versions
// and UUIDv7 strings for correlation and message IDs.
package uid

// NumberID generates unique, roughly time-ordered int64 IDs.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string IDs.
type StringID interface {
	Generate() string
}
