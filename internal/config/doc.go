// Package config defines the indexer's YAML configuration.
//
// Loading is split into three steps that build on each other:
//   - Load: read + env-expand + parse
//   - LoadWithDefaults: fill optional fields
//   - LoadAndValidate: reject incomplete or inconsistent configs
//
// ${VAR} references in the file are expanded from the environment, so
// secrets like the database password can stay out of the file itself.
package config
