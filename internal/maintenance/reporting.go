package maintenance

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	reportResultLineTemplateConstant  = "%-9s %s%s\n"
	reportDetailSeparatorConstant     = ": "
	reportSummaryLineTemplateConstant = "%s: %d succeeded, %d unchanged, %d skipped, %d planned, %d failed\n"
	reportJSONIndentConstant          = "  "
	reportYAMLIndentConstant          = 2
	unsupportedFormatTemplateConstant = "unsupported report format %q (expected text, json, or yaml)"
)

// Reporter emits formatted lines to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	fmt.Fprintf(reporter.writer, format, args...)
}

// ReportFormat selects how a Report is rendered.
type ReportFormat string

// Report formats.
const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
)

// ParseReportFormat validates a configured report format. Empty selects text.
func ParseReportFormat(rawFormat string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(rawFormat))) {
	case "", ReportFormatText:
		return ReportFormatText, nil
	case ReportFormatJSON:
		return ReportFormatJSON, nil
	case ReportFormatYAML:
		return ReportFormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, rawFormat)
	}
}

// RenderReport writes report to writer in format.
func RenderReport(writer io.Writer, report Report, format ReportFormat) error {
	switch format {
	case ReportFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", reportJSONIndentConstant)
		return encoder.Encode(report)
	case ReportFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(reportYAMLIndentConstant)
		if encodeError := encoder.Encode(report); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	case ReportFormatText, "":
		reporter := NewWriterReporter(writer)
		for _, result := range report.Results {
			detail := ""
			if len(result.Detail) > 0 {
				detail = reportDetailSeparatorConstant + result.Detail
			}
			reporter.Printf(reportResultLineTemplateConstant, result.Outcome, result.Repository, detail)
		}
		reporter.Printf(
			reportSummaryLineTemplateConstant,
			report.Operation,
			report.Summary.Succeeded,
			report.Summary.Unchanged,
			report.Summary.Skipped,
			report.Summary.Planned,
			report.Summary.Failed,
		)
		return nil
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}
}
