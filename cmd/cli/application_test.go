package cli_test

import (
	"bytes"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/orgmaint/cmd/cli"
)

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	content, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(content)))

	var configuration cli.ApplicationConfiguration
	require.NoError(testInstance, viperInstance.Unmarshal(&configuration, viper.DecodeHook(mapstructure.StringToSliceHookFunc(","))))

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Empty(testInstance, configuration.GitHub.APIBaseURL)
	require.Empty(testInstance, configuration.GitHub.Organizations)
	require.False(testInstance, configuration.GitHub.VerifyReferenceTip)
	require.Equal(testInstance, "./downloads", configuration.Tools.Download.Output)
	require.False(testInstance, configuration.Tools.Replace.Regexp)
	require.Equal(testInstance, "text", configuration.Report.Format)
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	firstContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, firstContent)
	firstContent[0] = '#'

	secondContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, firstContent[0], secondContent[0])
}
