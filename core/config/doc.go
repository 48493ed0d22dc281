// Package config loads the application configuration from environment
// variables and an optional .env file.
//
// Defaults are declared as struct tags on the partial config types owned by
// the packages they configure (database, storage, logger) and bound into
// Viper by reflection, so a section never drifts from the package that
// consumes it.
//
// Precedence, lowest to highest: struct-tag defaults, .env file, process
// environment. Project-file values and command-line flags are applied by the
// command layer on top of the loaded configuration.
package config
