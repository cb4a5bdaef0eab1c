package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "ImplicitTrue", arguments: []string{"--toggle"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitYes", arguments: []string{"--toggle=yes"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitTrueUppercase", arguments: []string{"--toggle=TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitNo", arguments: []string{"--toggle=no"}, expectedValue: false, expectedChanged: true},
		{name: "ExplicitOff", arguments: []string{"--toggle=off"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var toggleValue bool
			AddToggleFlag(command.Flags(), &toggleValue, "toggle", false, "Toggle flag")

			parseError := command.ParseFlags(testCase.arguments)
			require.NoError(t, parseError)

			require.Equal(t, testCase.expectedValue, toggleValue)

			flag := command.Flags().Lookup("toggle")
			require.NotNil(t, flag)
			require.Equal(t, testCase.expectedChanged, flag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "toggle", false, "Toggle flag")

	parseError := command.ParseFlags([]string{"--toggle=maybe"})
	require.Error(t, parseError)
	require.False(t, toggleValue)
}

func TestBindTargetFlagsAndSelection(t *testing.T) {
	command := &cobra.Command{}
	values := BindTargetFlags(command)

	parseError := command.ParseFlags([]string{"--org", "acme", "--org", " beta ", "--ref", "heads/release", "--dry-run"})
	require.NoError(t, parseError)

	require.Equal(t, []string{"acme", "beta"}, SelectStrings(values.Organizations, []string{"configured"}))
	require.Equal(t, []string{"configured"}, SelectStrings(values.Repositories, []string{" configured ", ""}))
	require.Equal(t, "heads/release", SelectString(values.Reference, "heads/main"))
	require.Equal(t, "heads/main", SelectString("  ", " heads/main "))
	require.True(t, SelectBool(command, DryRunFlagName, values.DryRun, false))

	untouchedCommand := &cobra.Command{}
	untouchedValues := BindTargetFlags(untouchedCommand)
	require.NoError(t, untouchedCommand.ParseFlags(nil))
	require.True(t, SelectBool(untouchedCommand, DryRunFlagName, untouchedValues.DryRun, true))
}
