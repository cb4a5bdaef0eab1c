package maintenance_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/orgmaint/internal/maintenance"
)

func sampleReport() maintenance.Report {
	return maintenance.Report{
		Operation: "rename",
		Results: []maintenance.RepositoryResult{
			{Repository: "acme/widgets", Outcome: maintenance.OutcomeSucceeded, Detail: "renamed a.txt to b.txt"},
			{Repository: "acme/gadgets", Outcome: maintenance.OutcomeSkipped},
		},
		Summary: maintenance.Summary{Succeeded: 1, Skipped: 1},
	}
}

func TestParseReportFormat(testInstance *testing.T) {
	testCases := []struct {
		name           string
		value          string
		expectedFormat maintenance.ReportFormat
		expectError    bool
	}{
		{name: "empty_defaults_to_text", value: "", expectedFormat: maintenance.ReportFormatText},
		{name: "json", value: "JSON", expectedFormat: maintenance.ReportFormatJSON},
		{name: "yaml", value: " yaml ", expectedFormat: maintenance.ReportFormatYAML},
		{name: "unsupported", value: "xml", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			format, parseError := maintenance.ParseReportFormat(testCase.value)
			if testCase.expectError {
				require.Error(subTest, parseError)
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedFormat, format)
		})
	}
}

func TestRenderReportText(testInstance *testing.T) {
	var output bytes.Buffer
	require.NoError(testInstance, maintenance.RenderReport(&output, sampleReport(), maintenance.ReportFormatText))
	require.Equal(testInstance,
		"succeeded acme/widgets: renamed a.txt to b.txt\n"+
			"skipped   acme/gadgets\n"+
			"rename: 1 succeeded, 0 unchanged, 1 skipped, 0 planned, 0 failed\n",
		output.String())
}

func TestRenderReportStructuredFormats(testInstance *testing.T) {
	testCases := []struct {
		name      string
		format    maintenance.ReportFormat
		unmarshal func([]byte, any) error
	}{
		{name: "json", format: maintenance.ReportFormatJSON, unmarshal: json.Unmarshal},
		{name: "yaml", format: maintenance.ReportFormatYAML, unmarshal: yaml.Unmarshal},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			var output bytes.Buffer
			require.NoError(subTest, maintenance.RenderReport(&output, sampleReport(), testCase.format))

			var decoded maintenance.Report
			require.NoError(subTest, testCase.unmarshal(output.Bytes(), &decoded))
			require.Equal(subTest, sampleReport(), decoded)
		})
	}
}

func TestRenderReportRejectsUnknownFormat(testInstance *testing.T) {
	require.Error(testInstance, maintenance.RenderReport(&bytes.Buffer{}, sampleReport(), maintenance.ReportFormat("xml")))
}
