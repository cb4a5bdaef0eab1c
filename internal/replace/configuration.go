package replace

import "strings"

// Configuration stores the replace settings read from the tools.replace section.
type Configuration struct {
	Paths         []string `mapstructure:"paths"`
	Search        string   `mapstructure:"search"`
	Replacement   string   `mapstructure:"replacement"`
	Regexp        bool     `mapstructure:"regexp"`
	Reference     string   `mapstructure:"reference"`
	CommitMessage string   `mapstructure:"commit_message"`
}

// DefaultConfiguration supplies baseline values for replace configuration.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// Sanitize trims paths and identifiers. Search and replacement text is kept verbatim.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Paths = sanitizePaths(configuration.Paths)
	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	sanitized.CommitMessage = strings.TrimSpace(configuration.CommitMessage)
	return sanitized
}

func sanitizePaths(candidatePaths []string) []string {
	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		trimmedPath := strings.Trim(strings.TrimSpace(candidatePath), pathSeparatorConstant)
		if len(trimmedPath) == 0 {
			continue
		}
		sanitizedPaths = append(sanitizedPaths, trimmedPath)
	}
	if len(sanitizedPaths) == 0 {
		return nil
	}
	return sanitizedPaths
}
