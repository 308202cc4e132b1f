package usecase

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/repokeeper/internal/domain"
)

// SummarizeSeries computes count, sum, min, max, mean and population standard
// deviation of a series. For an empty series the sum is 0 and the remaining
// statistics are NaN.
func SummarizeSeries(metric domain.Metric, series domain.MetricSeries) (domain.MetricSummary, error) {
	summary := domain.MetricSummary{
		Metric: metric,
		Count:  len(series),
		Min:    math.NaN(),
		Max:    math.NaN(),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
	}
	if len(series) == 0 {
		return summary, nil
	}

	data := stats.Float64Data(series)
	var err error
	if summary.Sum, err = stats.Sum(data); err != nil {
		return summary, fmt.Errorf("failed to compute sum of %s: %w", metric, err)
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, fmt.Errorf("failed to compute minimum of %s: %w", metric, err)
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, fmt.Errorf("failed to compute maximum of %s: %w", metric, err)
	}
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, fmt.Errorf("failed to compute mean of %s: %w", metric, err)
	}
	if summary.StdDev, err = stats.StandardDeviationPopulation(data); err != nil {
		return summary, fmt.Errorf("failed to compute standard deviation of %s: %w", metric, err)
	}
	return summary, nil
}

// Summarize turns a collection into a report: one summary per metric in
// display order and the author ranking.
func Summarize(c *domain.Collection) (*domain.Report, error) {
	report := &domain.Report{
		Owner:             c.Owner,
		Repo:              c.Repo,
		Days:              c.Days,
		Since:             c.Since,
		TotalPullRequests: c.Len(),
		Metrics:           make([]domain.MetricSummary, 0, len(domain.Metrics)),
		Authors:           c.Authors.Ranked(),
	}
	for _, metric := range domain.Metrics {
		summary, err := SummarizeSeries(metric, c.Series[metric])
		if err != nil {
			return nil, err
		}
		report.Metrics = append(report.Metrics, summary)
	}
	return report, nil
}
