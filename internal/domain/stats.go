// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"sort"
	"time"
)

// Metric identifies one of the numeric series collected per pull request.
type Metric string

const (
	MetricCommits      Metric = "commits"
	MetricChangedFiles Metric = "changed_files"
	MetricNetLOC       Metric = "net_loc"
	MetricAdditions    Metric = "additions"
	MetricDeletions    Metric = "deletions"
	MetricComments     Metric = "comments"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{
	MetricCommits,
	MetricChangedFiles,
	MetricNetLOC,
	MetricAdditions,
	MetricDeletions,
	MetricComments,
}

var metricLabels = map[Metric]string{
	MetricCommits:      "COMMITS",
	MetricChangedFiles: "CHANGED FILES",
	MetricNetLOC:       "NET LOC",
	MetricAdditions:    "ADDITIONS",
	MetricDeletions:    "DELETIONS",
	MetricComments:     "COMMENTS",
}

// Label returns the headline used when the metric is printed.
func (m Metric) Label() string {
	if label, ok := metricLabels[m]; ok {
		return label
	}
	return string(m)
}

// MetricSeries is the ordered sequence of values observed for one metric,
// in the order pull requests were processed.
type MetricSeries []float64

// AuthorTally counts pull requests per author.
// Authors are remembered in the order they were first seen so that ranking
// is deterministic for equal counts.
type AuthorTally struct {
	order  []string
	counts map[string]int
}

// NewAuthorTally creates an empty tally.
func NewAuthorTally() *AuthorTally {
	return &AuthorTally{counts: make(map[string]int)}
}

// Add records one pull request for the given author.
func (t *AuthorTally) Add(login string) {
	if _, ok := t.counts[login]; !ok {
		t.order = append(t.order, login)
	}
	t.counts[login]++
}

// Count returns the number of pull requests recorded for the author.
func (t *AuthorTally) Count(login string) int {
	return t.counts[login]
}

// Len returns the number of distinct authors.
func (t *AuthorTally) Len() int {
	return len(t.order)
}

// Ranked returns the authors sorted by pull request count, highest first.
// Ties keep first-seen order.
func (t *AuthorTally) Ranked() []AuthorCount {
	ranked := make([]AuthorCount, 0, len(t.order))
	for _, login := range t.order {
		ranked = append(ranked, AuthorCount{Login: login, PullRequests: t.counts[login]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PullRequests > ranked[j].PullRequests
	})
	return ranked
}

// AuthorCount is a single row of the author ranking.
type AuthorCount struct {
	Login        string `json:"login" yaml:"login"`
	PullRequests int    `json:"pull_requests" yaml:"pull_requests"`
}

// Collection is everything gathered by one statistics run.
type Collection struct {
	Owner  string
	Repo   string
	Days   int
	Since  time.Time
	Series map[Metric]MetricSeries
	// Titles holds the processed pull request titles, aligned with the series.
	Titles  []string
	Authors *AuthorTally
}

// NewCollection prepares empty accumulators for every metric.
func NewCollection(owner, repo string, days int, since time.Time) *Collection {
	series := make(map[Metric]MetricSeries, len(Metrics))
	for _, m := range Metrics {
		series[m] = MetricSeries{}
	}
	return &Collection{
		Owner:   owner,
		Repo:    repo,
		Days:    days,
		Since:   since,
		Series:  series,
		Authors: NewAuthorTally(),
	}
}

// Record appends one pull request to every series and to the author tally.
// Absent additions count as zero.
func (c *Collection) Record(author string, detail PullRequestDetail) {
	additions := float64(detail.AdditionsOrZero())
	deletions := float64(detail.Deletions)

	c.Series[MetricAdditions] = append(c.Series[MetricAdditions], additions)
	c.Series[MetricDeletions] = append(c.Series[MetricDeletions], deletions)
	c.Series[MetricNetLOC] = append(c.Series[MetricNetLOC], additions-deletions)
	c.Series[MetricChangedFiles] = append(c.Series[MetricChangedFiles], float64(detail.ChangedFiles))
	c.Series[MetricCommits] = append(c.Series[MetricCommits], float64(detail.Commits))
	c.Series[MetricComments] = append(c.Series[MetricComments], float64(detail.Comments))
	c.Titles = append(c.Titles, detail.Title)
	c.Authors.Add(author)
}

// Len returns the number of processed pull requests.
func (c *Collection) Len() int {
	return len(c.Titles)
}

// MetricSummary holds the descriptive statistics of one series.
// Min, Max, Mean and StdDev are NaN when the series is empty.
type MetricSummary struct {
	Metric Metric
	Count  int
	Sum    float64
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Report is the final, renderable result of a statistics run.
type Report struct {
	Owner             string
	Repo              string
	Days              int
	Since             time.Time
	TotalPullRequests int
	Metrics           []MetricSummary
	Authors           []AuthorCount
}
