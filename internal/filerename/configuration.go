package filerename

import "strings"

// Configuration stores the rename settings read from the tools.rename section.
type Configuration struct {
	From          string `mapstructure:"from"`
	To            string `mapstructure:"to"`
	Reference     string `mapstructure:"reference"`
	CommitMessage string `mapstructure:"commit_message"`
}

// DefaultConfiguration supplies baseline values for rename configuration.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// Sanitize trims surrounding whitespace and path separators.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.From = normalizeTreePath(configuration.From)
	sanitized.To = normalizeTreePath(configuration.To)
	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	sanitized.CommitMessage = strings.TrimSpace(configuration.CommitMessage)
	return sanitized
}
