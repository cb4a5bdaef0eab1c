package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	// OrganizationFlagName exposes the shared organization flag name.
	OrganizationFlagName = "org"
	// OrganizationFlagUsage describes the shared organization flag purpose.
	OrganizationFlagUsage = "Organization whose repositories are processed (repeatable)"
	// RepositoryFlagName exposes the shared repository flag name.
	RepositoryFlagName = "repo"
	// RepositoryFlagUsage describes the shared repository flag purpose.
	RepositoryFlagUsage = "Single repository to process as owner/name (repeatable)"
	// ReferenceFlagName exposes the shared reference flag name.
	ReferenceFlagName = "ref"
	// ReferenceFlagUsage describes the shared reference flag purpose.
	ReferenceFlagUsage = "Reference to operate on (heads/<branch> or tags/<tag>); defaults to each repository's default branch"
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Read and stage changes without writing to the remote"
	// ReportFlagName exposes the shared report format flag name.
	ReportFlagName = "report"
	// ReportFlagUsage describes the shared report format flag purpose.
	ReportFlagUsage = "Run report format; defaults to the configured report.format"
)

const defaultReportChoice = "text"

// ReportFormatChoices lists the accepted --report values.
var ReportFormatChoices = []string{"text", "json", "yaml"}

// TargetFlagValues stores the repository targeting flag values shared by maintenance commands.
type TargetFlagValues struct {
	Organizations []string
	Repositories  []string
	Reference     string
	DryRun        bool
	ReportFormat  string
}

// BindTargetFlags attaches the organization, repository, reference, dry-run and report flags to the command.
func BindTargetFlags(command *cobra.Command) *TargetFlagValues {
	values := &TargetFlagValues{}
	if command == nil {
		return values
	}

	flagSet := command.Flags()
	flagSet.StringSliceVar(&values.Organizations, OrganizationFlagName, nil, OrganizationFlagUsage)
	flagSet.StringSliceVar(&values.Repositories, RepositoryFlagName, nil, RepositoryFlagUsage)
	flagSet.StringVar(&values.Reference, ReferenceFlagName, "", ReferenceFlagUsage)
	AddToggleFlag(flagSet, &values.DryRun, DryRunFlagName, false, DryRunFlagUsage)
	AddChoiceFlag(flagSet, &values.ReportFormat, ReportFlagName, defaultReportChoice, ReportFormatChoices, ReportFlagUsage)

	return values
}

// SelectStrings returns the trimmed flag values when any were supplied, otherwise the configured values.
func SelectStrings(flagValues []string, configuredValues []string) []string {
	selected := trimNonEmpty(flagValues)
	if len(selected) > 0 {
		return selected
	}
	return trimNonEmpty(configuredValues)
}

// SelectString returns the trimmed flag value when present, otherwise the trimmed configured value.
func SelectString(flagValue string, configuredValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}
	return strings.TrimSpace(configuredValue)
}

// SelectBool returns the flag value when the flag changed on command, otherwise the configured value.
func SelectBool(command *cobra.Command, flagName string, flagValue bool, configuredValue bool) bool {
	if command == nil {
		return configuredValue
	}
	if flag := command.Flags().Lookup(flagName); flag != nil && flag.Changed {
		return flagValue
	}
	return configuredValue
}

func trimNonEmpty(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		candidate := strings.TrimSpace(value)
		if len(candidate) == 0 {
			continue
		}
		trimmed = append(trimmed, candidate)
	}
	if len(trimmed) == 0 {
		return nil
	}
	return trimmed
}
