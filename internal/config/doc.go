// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Missing secrets and connection strings are not treated as load errors:
// they are reported through Config.Problems so the server can start in a
// degraded mode and say loudly what is wrong.
package config
