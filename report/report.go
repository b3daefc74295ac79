// Package report renders finished scans for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/riadafridishibly/bigdirs/scanner"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// Report is what a scan prints once it is over.
type Report struct {
	Root      string            `json:"root"`
	Threshold int64             `json:"threshold"`
	State     string            `json:"state"`
	Summary   scanner.Summary   `json:"summary"`
	Results   scanner.ResultSet `json:"results"`
	// Truncated counts results left out by TopN.
	Truncated int      `json:"truncated,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// New builds a report from a finished session. topN <= 0 keeps every result.
func New(s *scanner.Session, topN int) *Report {
	r := &Report{
		Root:      s.Root(),
		Threshold: s.Threshold(),
		State:     s.State().String(),
		Summary:   s.Summary(),
		Results:   s.Snapshot(),
	}
	if topN > 0 && len(r.Results) > topN {
		r.Truncated = len(r.Results) - topN
		r.Results = r.Results[:topN]
	}
	for _, err := range s.Errors() {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(r *Report, writer io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the report as a human-readable table.
func PrintTable(r *Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "\nDirectories of at least %s:\t\t\n", humanize.IBytes(uint64(r.Threshold)))

	if len(r.Results) == 0 {
		fmt.Fprintln(w, "  (none)\t\t")
	}
	for i, res := range r.Results {
		pct := 0.0
		if r.Summary.TotalSize > 0 {
			pct = 100.0 * float64(res.Size) / float64(r.Summary.TotalSize)
		}
		fmt.Fprintf(w, "  %d)\t%s\t%s (%.1f%%)\n",
			i+1, res.Path, humanize.IBytes(uint64(res.Size)), pct)
	}
	if r.Truncated > 0 {
		fmt.Fprintf(w, "  ... %d more\t\t\n", r.Truncated)
	}

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Root:\t%s\n", r.Root)
	fmt.Fprintf(w, "State:\t%s\n", r.State)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(r.Summary.TotalSize)), r.Summary.TotalSize)
	fmt.Fprintf(w, "Directories:\t%s\n", humanize.Comma(r.Summary.Dirs))
	fmt.Fprintf(w, "Files:\t%s\n", humanize.Comma(r.Summary.Files))
	fmt.Fprintf(w, "Skipped entries:\t%s\n", humanize.Comma(r.Summary.Errors))
	fmt.Fprintf(w, "\nElapsed:\t%v\n", r.Summary.Elapsed().Round(time.Millisecond))

	return w.Flush()
}

// Print dispatches on the output format name.
func Print(r *Report, format string, writer io.Writer) error {
	switch format {
	case "json":
		return PrintJSON(r, writer)
	case "table":
		return PrintTable(r, writer)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// ProgressLine is the single status line shown while a scan runs.
func ProgressLine(p scanner.Progress) string {
	return fmt.Sprintf("Scanning… %3.0f%% %s dirs, %s, %d found",
		p.Fraction*100, humanize.Comma(p.DirsVisited), humanize.IBytes(uint64(p.Bytes)), p.Results)
}
