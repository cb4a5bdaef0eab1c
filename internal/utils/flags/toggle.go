package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleFlagTypeConstant                 = "bool"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"n":     false,
}

// AddToggleFlag registers a boolean flag that accepts yes/no style values ("--dry-run", "--dry-run=no").
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.Var(newToggleFlagValue(defaultValue, target), name, formatToggleUsage(usage, defaultValue))
	if flag := flagSet.Lookup(name); flag != nil {
		flag.NoOptDefVal = toggleTrueCanonicalValue
	}
}

// ParseToggle interprets yes/no style literals.
func ParseToggle(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	parsedValue, known := toggleLiterals[normalizedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := ParseToggle(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeConstant
}
