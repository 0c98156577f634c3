// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Transport: one HTTP request/response cycle
//   - Authenticator: OAuth2 password grant
//   - TokenStore: current bearer token
//   - ConfigStore: key/value configuration source
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TitleResolver: page title scraping for the resave workaround. Without it
//     the URL is used as the title.
//   - Notifier: events for the UI. Defaults to NopNotifier.
//   - Clock: defaults to SystemClock.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
