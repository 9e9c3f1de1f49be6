package service

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/constants"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write writes the scan response in the format named by the request
func (f *OutputFormatterImpl) Write(response *domain.PatternResponse, req domain.PatternRequest, writer io.Writer) error {
	if response == nil {
		return domain.NewOutputError("nothing to write", nil)
	}

	var err error
	switch req.OutputFormat {
	case domain.OutputFormatText, "":
		err = f.writeText(response, req, writer)
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, response)
	case domain.OutputFormatSARIF:
		err = WriteJSON(writer, buildSARIF(response))
	default:
		return domain.NewOutputError(fmt.Sprintf("unsupported output format: %s", req.OutputFormat), nil)
	}
	if err != nil {
		return domain.NewOutputError("failed to write report", err)
	}
	return nil
}

// palette holds the colors used by the text report
type palette struct {
	critical, warning, info, file, dim, bold *color.Color
}

func newPalette(noColor bool) *palette {
	p := &palette{
		critical: color.New(color.FgRed, color.Bold),
		warning:  color.New(color.FgYellow),
		info:     color.New(color.FgCyan),
		file:     color.New(color.FgWhite, color.Underline),
		dim:      color.New(color.FgHiBlack),
		bold:     color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.critical, p.warning, p.info, p.file, p.dim, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

func (p *palette) severity(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityCritical:
		return p.critical
	case domain.SeverityWarning:
		return p.warning
	default:
		return p.info
	}
}

// writeText writes a human readable report grouped by file
func (f *OutputFormatterImpl) writeText(response *domain.PatternResponse, req domain.PatternRequest, writer io.Writer) error {
	p := newPalette(req.NoColor)

	for _, result := range response.Results {
		if len(result.Patterns) == 0 {
			continue
		}
		fmt.Fprintf(writer, "\n%s\n", p.file.Sprint(result.FilePath))
		for _, pattern := range result.Patterns {
			fmt.Fprintf(writer, "  %s  %s  %s  %s\n",
				p.dim.Sprintf("%d:%d", pattern.Location.StartLine, pattern.Location.StartColumn),
				p.severity(pattern.Severity).Sprintf("%-8s", pattern.Severity),
				pattern.Description,
				p.dim.Sprint(pattern.Type))

			if req.ShowSnippets && pattern.CodeSnippet != "" {
				for _, line := range strings.Split(pattern.CodeSnippet, "\n") {
					fmt.Fprintf(writer, "      %s\n", p.dim.Sprint("│ "+line))
				}
			}
			if req.ShowSuggestions && pattern.Suggestion != "" {
				fmt.Fprintf(writer, "      → %s\n", pattern.Suggestion)
			}
		}
	}

	if len(response.Warnings) > 0 {
		fmt.Fprintf(writer, "\nWarnings:\n")
		for _, w := range response.Warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
	}

	if len(response.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
	}

	summary := response.Summary
	fmt.Fprintf(writer, "\n%s\n", p.bold.Sprint("Summary"))
	fmt.Fprintf(writer, "  Files analyzed: %d\n", summary.TotalFiles)
	fmt.Fprintf(writer, "  Patterns found: %d (%s, %s, %s)\n",
		summary.TotalPatterns,
		p.critical.Sprintf("%d critical", summary.BySeverity[domain.SeverityCritical]),
		p.warning.Sprintf("%d warning", summary.BySeverity[domain.SeverityWarning]),
		p.info.Sprintf("%d info", summary.BySeverity[domain.SeverityInfo]))
	fmt.Fprintf(writer, "  Duration: %dms\n", summary.TotalDurationMs)

	if summary.TotalPatterns == 0 {
		fmt.Fprintf(writer, "\nNo patterns found.\n")
	}
	return nil
}

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID                   string             `json:"id"`
	ShortDescription     sarifMessage       `json:"shortDescription"`
	DefaultConfiguration sarifConfiguration `json:"defaultConfiguration"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int           `json:"startLine"`
	StartColumn int           `json:"startColumn,omitempty"`
	EndLine     int           `json:"endLine,omitempty"`
	EndColumn   int           `json:"endColumn,omitempty"`
	Snippet     *sarifMessage `json:"snippet,omitempty"`
}

// sarifLevel maps a severity to a SARIF result level
func sarifLevel(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "error"
	case domain.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// buildSARIF converts a response into a SARIF log with one run. Every
// pattern type is a rule so rule indexes stay stable between runs.
func buildSARIF(response *domain.PatternResponse) sarifLog {
	types := domain.AllPatternTypes()
	ruleIndex := make(map[domain.PatternType]int, len(types))
	rules := make([]sarifRule, 0, len(types))
	for i, patternType := range types {
		ruleIndex[patternType] = i
		rules = append(rules, sarifRule{
			ID:                   string(patternType),
			ShortDescription:     sarifMessage{Text: strings.ReplaceAll(string(patternType), "_", " ")},
			DefaultConfiguration: sarifConfiguration{Level: sarifLevel(patternType.DefaultSeverity())},
		})
	}

	results := make([]sarifResult, 0, response.Summary.TotalPatterns)
	for _, result := range response.Results {
		for _, pattern := range result.Patterns {
			region := sarifRegion{
				StartLine:   pattern.Location.StartLine,
				StartColumn: pattern.Location.StartColumn,
				EndLine:     pattern.Location.EndLine,
				EndColumn:   pattern.Location.EndColumn,
			}
			if pattern.CodeSnippet != "" {
				region.Snippet = &sarifMessage{Text: pattern.CodeSnippet}
			}

			message := pattern.Description
			if pattern.Suggestion != "" {
				message += ". " + pattern.Suggestion
			}

			results = append(results, sarifResult{
				RuleID:    string(pattern.Type),
				RuleIndex: ruleIndex[pattern.Type],
				Level:     sarifLevel(pattern.Severity),
				Message:   sarifMessage{Text: message},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(pattern.Location.File)},
						Region:           region,
					},
				}},
			})
		}
	}

	return sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           constants.ToolName,
				Version:        response.Version,
				InformationURI: constants.SARIFInformationURI,
				Rules:          rules,
			}},
			Results: results,
		}},
	}
}
