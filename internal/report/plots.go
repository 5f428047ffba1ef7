package report

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"prtrack/internal/domain"
)

// delayStages are the lifecycle intervals visualized in the latency box
// plot, in display order.
var delayStages = []struct {
	label string
	delay func(domain.Record) *float64
}{
	{
		label: "Creation -> Review Requested",
		delay: func(r domain.Record) *float64 { return hoursBetween(r.CreatedAt, r.ReviewRequestedAt) },
	},
	{
		label: "Review Requested -> Reviewing Internally",
		delay: func(r domain.Record) *float64 { return hoursBetween(r.ReviewRequestedAt, r.ReviewingInternallyAt) },
	},
	{
		label: "Reviewing Internally -> Closed",
		delay: func(r domain.Record) *float64 { return hoursBetween(r.ReviewingInternallyAt, r.ClosedAt) },
	},
}

// SaveDelaysPlot writes the lifecycle-delay box plot for rows matching
// headRepo. Stages with no measurable rows are left out.
func SaveDelaysPlot(records []domain.Record, headRepo, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("PR lifecycle delays for %s", headRepo)
	p.Y.Label.Text = "Delay (hours)"

	var labels []string
	for _, stage := range delayStages {
		var values plotter.Values
		for _, rec := range records {
			if rec.HeadRepo != headRepo {
				continue
			}
			if h := stage.delay(rec); h != nil {
				values = append(values, *h)
			}
		}
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(len(labels)), values)
		if err != nil {
			return fmt.Errorf("box plot %q: %w", stage.label, err)
		}
		p.Add(box)
		labels = append(labels, stage.label)
	}
	if len(labels) == 0 {
		return fmt.Errorf("no measurable delays for %s", headRepo)
	}
	p.NominalX(labels...)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// CountsByMonth returns PR counts per creation month (UTC) for rows
// matching headRepo, months sorted ascending.
func CountsByMonth(records []domain.Record, headRepo string) ([]string, []int) {
	byMonth := make(map[string]int)
	for _, rec := range records {
		if rec.HeadRepo != headRepo || rec.CreatedAt == nil {
			continue
		}
		byMonth[rec.CreatedAt.UTC().Format("2006-01")]++
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	counts := make([]int, len(months))
	for i, month := range months {
		counts[i] = byMonth[month]
	}
	return months, counts
}

// SaveCountsPlot writes the monthly PR-count bar chart, annotated with
// when the data was last scraped.
func SaveCountsPlot(records []domain.Record, headRepo string, asOf time.Time, path string) error {
	months, counts := CountsByMonth(records, headRepo)
	if len(months) == 0 {
		return fmt.Errorf("no PRs for %s", headRepo)
	}

	total := 0
	values := make(plotter.Values, len(counts))
	for i, n := range counts {
		values[i] = float64(n)
		total += n
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s PRs opened per month (n=%d)\nData as of %s UTC",
		headRepo, total, asOf.UTC().Format("2006-01-02 15:04:05"))
	p.X.Label.Text = "Month (YYYY-MM)"
	p.Y.Label.Text = "PR count"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(months...)

	width := vg.Length(len(months)) * vg.Inch * 0.6
	if width < 10*vg.Inch {
		width = 10 * vg.Inch
	}
	if err := p.Save(width, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func hoursBetween(from, to *time.Time) *float64 {
	if from == nil || to == nil {
		return nil
	}
	h := to.Sub(*from).Hours()
	return &h
}
