// Package confloader provides configuration loading mechanism.
//
// It loads YAML files and environment variables through koanf and
// unmarshals them into typed config structs. A fsnotify-based watcher
// reloads configuration when the file changes on disk.
//
// Priority (highest to lowest):
//
//  1. Environment variables
//  2. Configuration file
//  3. Default values
package confloader
