// Package httpapi exposes the engine over HTTP+JSON: document reads
// and writes, search, suggestions, on-demand rebuild and a health
// endpoint. Handlers translate the engine's sentinel errors into
// status codes; anything unexpected is a 500 with a generic body so
// internals never leak to clients.
//
// The package also carries the daemon's YAML configuration with
// defaults, environment overrides and validation.
package httpapi
