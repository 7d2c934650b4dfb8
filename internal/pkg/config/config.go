// Package config exposes typed access to service configuration.
//
// Values come from a YAML file, with environment variables taking precedence
// (key "a.b_c" maps to env "A_B_C").
package config

import (
	"io"
	"time"
)

// DurationConfig reads integer values scaled to a time unit.
type DurationConfig interface {
	// GetMillisecond returns the integer at key as milliseconds.
	GetMillisecond(key string) time.Duration
	// GetSecond returns the integer at key as seconds.
	GetSecond(key string) time.Duration
	// GetMinute returns the integer at key as minutes.
	GetMinute(key string) time.Duration
}

// Config is the read-only view of the service configuration.
//
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer
	DurationConfig

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64

	// GetBinary decodes a base64 encoded value.
	GetBinary(key string) []byte

	// GetArray splits a "<a>,<b>,..." value, dropping blank elements.
	GetArray(key string) []string
}
