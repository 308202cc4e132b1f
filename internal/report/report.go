// Package report renders pull request statistics for the terminal or for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/repokeeper/internal/domain"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats, default first.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// notAvailable is printed in place of statistics that are undefined for an empty series.
const notAvailable = "N/A"

// Render writes the report to w in the requested format.
func Render(w io.Writer, r *domain.Report, format Format) error {
	switch format {
	case FormatText, "":
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(r)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format: %q", format)
	}
}

func renderText(w io.Writer, r *domain.Report) error {
	bold := color.New(color.Bold)
	heading := color.New(color.FgGreen, color.Bold)
	label := color.New(color.FgBlue, color.Bold)

	var b strings.Builder
	fmt.Fprintln(&b, bold.Sprint("PULL REQUEST STATISTICS"))
	fmt.Fprintf(&b, "%s/%s, last %d days (since %s)\n", r.Owner, r.Repo, r.Days, r.Since.Format(time.DateOnly))
	fmt.Fprintf(&b, "%s %d\n", label.Sprint("TOTAL PRs:"), r.TotalPullRequests)
	fmt.Fprintf(&b, "%s %d\n", label.Sprint("TOTAL AUTHORS:"), len(r.Authors))

	for _, m := range r.Metrics {
		fmt.Fprintf(&b, "\n____ %s _____\n", heading.Sprint(m.Metric.Label()))
		fmt.Fprintf(&b, "Total: %s\n", bold.Sprint(formatNumber(m.Sum)))
		fmt.Fprintf(&b, "Min: %s\n", bold.Sprint(formatNumber(m.Min)))
		fmt.Fprintf(&b, "Max: %s\n", bold.Sprint(formatNumber(m.Max)))
		fmt.Fprintf(&b, "Mean: %s\n", bold.Sprint(formatDecimal(m.Mean)))
		fmt.Fprintf(&b, "Std. Dev: %s\n", bold.Sprint(formatDecimal(m.StdDev)))
	}

	fmt.Fprintf(&b, "\n____ %s _____\n", heading.Sprint("AUTHORS"))
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if len(r.Authors) == 0 {
		_, err := fmt.Fprintln(w, "No pull requests in window.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tAUTHOR\tPRs")
	for i, a := range r.Authors {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, a.Login, a.PullRequests)
	}
	return tw.Flush()
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDecimal(v float64) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// document is the machine-readable shape of a report.
// Undefined statistics are encoded as null.
type document struct {
	Repository        string               `json:"repository" yaml:"repository"`
	Days              int                  `json:"days" yaml:"days"`
	Since             time.Time            `json:"since" yaml:"since"`
	TotalPullRequests int                  `json:"total_pull_requests" yaml:"total_pull_requests"`
	Metrics           []metricDocument     `json:"metrics" yaml:"metrics"`
	Authors           []domain.AuthorCount `json:"authors" yaml:"authors"`
}

type metricDocument struct {
	Metric domain.Metric `json:"metric" yaml:"metric"`
	Count  int           `json:"count" yaml:"count"`
	Sum    float64       `json:"sum" yaml:"sum"`
	Min    *float64      `json:"min" yaml:"min"`
	Max    *float64      `json:"max" yaml:"max"`
	Mean   *float64      `json:"mean" yaml:"mean"`
	StdDev *float64      `json:"std_dev" yaml:"std_dev"`
}

func newDocument(r *domain.Report) document {
	doc := document{
		Repository:        r.Owner + "/" + r.Repo,
		Days:              r.Days,
		Since:             r.Since,
		TotalPullRequests: r.TotalPullRequests,
		Metrics:           make([]metricDocument, 0, len(r.Metrics)),
		Authors:           r.Authors,
	}
	if doc.Authors == nil {
		doc.Authors = []domain.AuthorCount{}
	}
	for _, m := range r.Metrics {
		doc.Metrics = append(doc.Metrics, metricDocument{
			Metric: m.Metric,
			Count:  m.Count,
			Sum:    m.Sum,
			Min:    definedOrNil(m.Min),
			Max:    definedOrNil(m.Max),
			Mean:   definedOrNil(m.Mean),
			StdDev: definedOrNil(m.StdDev),
		})
	}
	return doc
}

func definedOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
