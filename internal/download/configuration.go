package download

import "strings"

const defaultOutputDirectoryConstant = "./downloads"

// Configuration stores the download settings read from the tools.download section.
type Configuration struct {
	Output    string `mapstructure:"output"`
	Reference string `mapstructure:"reference"`
}

// DefaultConfiguration supplies baseline values for download configuration.
func DefaultConfiguration() Configuration {
	return Configuration{Output: defaultOutputDirectoryConstant}
}

// Sanitize trims configuration values and restores the default output directory when blank.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Output = strings.TrimSpace(configuration.Output)
	if len(sanitized.Output) == 0 {
		sanitized.Output = defaultOutputDirectoryConstant
	}
	sanitized.Reference = strings.TrimSpace(configuration.Reference)
	return sanitized
}
