// Package domain defines the core business entities for wallapocket.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Article: a saved web page as reported by the server
//   - Credentials and Token: what the client authenticates with
//   - Settings: the typed view of the configuration source
//   - Event and SyncResult: what the core reports to the UI
//   - The error taxonomy (ConfigError, NetworkError, TransportError, AuthError)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
