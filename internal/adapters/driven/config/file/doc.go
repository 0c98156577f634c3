// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based key/value settings storage
//   - Watcher: reloads the ConfigStore when the file changes on disk
package file
