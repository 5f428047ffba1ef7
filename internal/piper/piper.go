// Package piper scans a git repository for Piper-originated commits,
// detected by a "PiperOrigin-RevId: <NUMBER>" footer in the commit body.
package piper

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"prtrack/internal/domain"
)

var footerRE = regexp.MustCompile(`(?m)^PiperOrigin-RevId:\s*(\d+)\s*$`)

// Unit and record separators keep git log fields unambiguous; commit
// bodies may contain anything else.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"

	logFormat = "%H" + fieldSep + "%aI" + fieldSep + "%an" + fieldSep + "%B" + recordSep
)

// Commit is one Piper-originated commit.
type Commit struct {
	RevID       string
	SHA         string
	Author      string
	CommittedAt time.Time
}

// ExtractRevID returns the PiperOrigin-RevId number from a commit body,
// or the empty string when the footer is absent.
func ExtractRevID(body string) string {
	m := footerRE.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}

// Scan reads the full history of the repository at repoPath and returns
// its Piper commits, newest first.
func Scan(ctx context.Context, repoPath string) ([]Commit, error) {
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err != nil {
		return nil, fmt.Errorf("%s does not appear to be a git repository: %w", repoPath, err)
	}

	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "log", "--pretty=format:"+logFormat)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log in %s: %w", repoPath, err)
	}
	return ParseLog(out), nil
}

// ParseLog parses raw git log output in the Scan format. Duplicate rev
// ids keep the first commit encountered; malformed records are skipped,
// the git format invariant should hold for the rest.
func ParseLog(raw []byte) []Commit {
	records := strings.Split(string(raw), recordSep)

	seen := make(map[string]struct{})
	var out []Commit
	for _, rec := range records {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		parts := strings.SplitN(rec, fieldSep, 4)
		if len(parts) != 4 {
			continue
		}
		sha, authorDate, authorName, body := parts[0], parts[1], parts[2], parts[3]

		revID := ExtractRevID(body)
		if revID == "" {
			continue
		}
		if _, dup := seen[revID]; dup {
			continue
		}

		committedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(authorDate))
		if err != nil {
			continue
		}

		out = append(out, Commit{
			RevID:       revID,
			SHA:         strings.TrimSpace(sha),
			Author:      authorName,
			CommittedAt: committedAt.UTC(),
		})
		seen[revID] = struct{}{}
	}

	// Newest first; SHA breaks timestamp ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CommittedAt.Equal(out[j].CommittedAt) {
			return out[i].CommittedAt.After(out[j].CommittedAt)
		}
		return out[i].SHA > out[j].SHA
	})
	return out
}

// WriteCSV writes the commits to path with newline-sanitized fields.
func WriteCSV(commits []Commit, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"piper_rev_id", "git_sha", "author", "committed_at"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range commits {
		ts := c.CommittedAt
		row := []string{
			sanitize(c.RevID),
			sanitize(c.SHA),
			sanitize(c.Author),
			domain.FormatTime(&ts),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write commit %s: %w", c.SHA, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func sanitize(field string) string {
	field = strings.ReplaceAll(field, "\r", "")
	field = strings.ReplaceAll(field, "\n", "")
	return strings.TrimSpace(field)
}
