// Package cli constructs the orgmaint command-line interface, wiring the
// Cobra command hierarchy, the Viper configuration loader and zap logging
// to the repository maintenance commands.
package cli
