package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix       = "<"
	choicePlaceholderSuffix       = ">"
	choiceSeparatorLiteral        = "|"
	choiceUsageEmptyTemplate      = "`%s`"
	choiceUsageFullTemplate       = "`%s` %s"
	choiceFlagTypeConstant        = "choice"
	invalidChoiceTemplateConstant = "invalid value %q, expected one of %s"
	choiceListSeparatorConstant   = ", "
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// AddChoiceFlag registers a string flag that only accepts one of choices, compared case-insensitively.
// target keeps its current value until the flag is set; displayedDefault is only highlighted in the usage.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, displayedDefault string, choices []string, description string) {
	if flagSet == nil || target == nil {
		return
	}
	flagValue := &choiceFlagValue{target: target, choices: normalizeChoices(choices)}
	flagSet.Var(flagValue, name, FormatChoiceUsage(displayedDefault, choices, description))
}

type choiceFlagValue struct {
	target  *string
	choices []string
}

func (value *choiceFlagValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	for _, choice := range value.choices {
		if choice == normalizedValue {
			*value.target = normalizedValue
			return nil
		}
	}
	return fmt.Errorf(invalidChoiceTemplateConstant, rawValue, strings.Join(value.choices, choiceListSeparatorConstant))
}

func (value *choiceFlagValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

func (value *choiceFlagValue) Type() string {
	return choiceFlagTypeConstant
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if _, exists := seen[normalizedChoice]; exists || len(normalizedChoice) == 0 {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		normalized = append(normalized, normalizedChoice)
	}
	return normalized
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists || len(normalizedChoice) == 0 {
			continue
		}

		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault {
			displayValue = strings.ToUpper(trimmedChoice)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}
