package maintenance

import "strings"

// Configuration holds the settings shared by every maintenance command.
type Configuration struct {
	GitHub GitHubConfiguration `mapstructure:"github"`
	Report ReportConfiguration `mapstructure:"report"`
}

// GitHubConfiguration selects the API endpoint, credentials and repository targets.
type GitHubConfiguration struct {
	APIBaseURL         string                 `mapstructure:"api_base_url"`
	TokenSource        string                 `mapstructure:"token_source"`
	Organizations      []string               `mapstructure:"organizations"`
	Repositories       RepositoryFilterConfig `mapstructure:"repositories"`
	VerifyReferenceTip bool                   `mapstructure:"verify_reference_tip"`
}

// RepositoryFilterConfig lists owner/name glob patterns.
type RepositoryFilterConfig struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// ReportConfiguration selects how run reports are rendered.
type ReportConfiguration struct {
	Format string `mapstructure:"format"`
}

// DefaultConfiguration supplies baseline values.
func DefaultConfiguration() Configuration {
	return Configuration{Report: ReportConfiguration{Format: string(ReportFormatText)}}
}

// Sanitize trims configured values and removes empty entries.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.GitHub.APIBaseURL = strings.TrimSpace(configuration.GitHub.APIBaseURL)
	sanitized.GitHub.TokenSource = strings.TrimSpace(configuration.GitHub.TokenSource)
	sanitized.GitHub.Organizations = sanitizeValues(configuration.GitHub.Organizations)
	sanitized.GitHub.Repositories.Include = sanitizeValues(configuration.GitHub.Repositories.Include)
	sanitized.GitHub.Repositories.Exclude = sanitizeValues(configuration.GitHub.Repositories.Exclude)
	sanitized.Report.Format = strings.TrimSpace(configuration.Report.Format)
	return sanitized
}

func sanitizeValues(values []string) []string {
	sanitizedValues := make([]string, 0, len(values))
	for _, value := range values {
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) == 0 {
			continue
		}
		sanitizedValues = append(sanitizedValues, trimmedValue)
	}
	if len(sanitizedValues) == 0 {
		return nil
	}
	return sanitizedValues
}
