// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables and zap logging for the CLI, and
// the CommandContextAccessor that carries the operation and repository of a
// run into contextual log fields.
package utils
