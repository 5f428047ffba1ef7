// Package report renders the derived record set: README links table,
// latency box plot, and monthly count bar chart.
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"prtrack/internal/domain"
)

const (
	markerStart = "<!-- PR_LINKS_TABLE_START -->"
	markerEnd   = "<!-- PR_LINKS_TABLE_END -->"

	openLegend = "🚧 = still open (not merged yet)"
)

type link struct {
	number int
	open   bool
}

// BuildLinksTable renders the month → PR-links markdown table for rows
// whose head repo matches headRepo. Still-open PRs carry the 🚧 marker,
// with a legend line prepended when any are open. Months and PR numbers
// sort ascending. Returns the empty string when nothing matches.
func BuildLinksTable(records []domain.Record, headRepo, upstreamRepo string) string {
	byMonth := make(map[string][]link)
	for _, rec := range records {
		if rec.HeadRepo != headRepo || rec.CreatedAt == nil {
			continue
		}
		month := rec.CreatedAt.UTC().Format("2006-01")
		byMonth[month] = append(byMonth[month], link{
			number: rec.Number,
			open:   rec.ClosedAt == nil,
		})
	}
	if len(byMonth) == 0 {
		return ""
	}

	months := make([]string, 0, len(byMonth))
	anyOpen := false
	for month, links := range byMonth {
		months = append(months, month)
		sort.Slice(links, func(i, j int) bool { return links[i].number < links[j].number })
		for _, l := range links {
			anyOpen = anyOpen || l.open
		}
	}
	sort.Strings(months)

	var lines []string
	if anyOpen {
		lines = append(lines, openLegend, "")
	}
	lines = append(lines, "| Month | PRs |", "| ----- | ---- |")
	for _, month := range months {
		cells := make([]string, 0, len(byMonth[month]))
		for _, l := range byMonth[month] {
			label := fmt.Sprintf("#%d", l.number)
			if l.open {
				label += " 🚧"
			}
			cells = append(cells, fmt.Sprintf("[%s](https://github.com/%s/pull/%d)", label, upstreamRepo, l.number))
		}
		lines = append(lines, fmt.Sprintf("| %s | %s |", month, strings.Join(cells, " · ")))
	}
	return strings.Join(lines, "\n")
}

// UpdateReadme replaces the section between the table markers with the
// given table, appending the markers to the end of the document when
// they are missing.
func UpdateReadme(path, table string) error {
	raw, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(raw) == 0 {
		lines = nil
	}

	start, end := -1, -1
	for i, line := range lines {
		switch line {
		case markerStart:
			if start < 0 {
				start = i
			}
		case markerEnd:
			if end < 0 {
				end = i
			}
		}
	}
	if start < 0 || end < 0 || end < start {
		lines = append(lines, "", markerStart, markerEnd)
		start = len(lines) - 2
		end = len(lines) - 1
	}

	replacement := append([]string{markerStart}, strings.Split(table, "\n")...)
	replacement = append(replacement, markerEnd)

	updated := make([]string, 0, len(lines)+len(replacement))
	updated = append(updated, lines[:start]...)
	updated = append(updated, replacement...)
	updated = append(updated, lines[end+1:]...)

	out := strings.Join(updated, "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
