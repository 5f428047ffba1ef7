package piper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRevID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "footer on its own line",
			body: "Add widget frobnication\n\nPiperOrigin-RevId: 123456789\n",
			want: "123456789",
		},
		{
			name: "footer with trailing spaces",
			body: "Sync\n\nPiperOrigin-RevId: 42   \n",
			want: "42",
		},
		{
			name: "no footer",
			body: "Plain commit message\n",
			want: "",
		},
		{
			name: "footer must start the line",
			body: "see PiperOrigin-RevId: 99 inline\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRevID(tt.body))
		})
	}
}

func logRecord(sha, date, author, body string) string {
	return sha + fieldSep + date + fieldSep + author + fieldSep + body + recordSep
}

func TestParseLog(t *testing.T) {
	raw := logRecord("aaa111", "2023-05-01T10:00:00+05:30", "Alice", "First\n\nPiperOrigin-RevId: 100\n") +
		"\n" + logRecord("bbb222", "2023-05-02T10:00:00Z", "Bob", "Second\n\nPiperOrigin-RevId: 200\n") +
		"\n" + logRecord("ccc333", "2023-05-03T10:00:00Z", "Carol", "No footer here\n") +
		"\n" + logRecord("ddd444", "2023-05-04T10:00:00Z", "Dave", "Cherry-pick\n\nPiperOrigin-RevId: 100\n")

	commits := ParseLog([]byte(raw))

	require.Len(t, commits, 2)

	// Newest first.
	assert.Equal(t, "200", commits[0].RevID)
	assert.Equal(t, "bbb222", commits[0].SHA)
	assert.Equal(t, "100", commits[1].RevID)
	// The duplicate rev id keeps the first commit encountered.
	assert.Equal(t, "aaa111", commits[1].SHA)
	// Offsets are normalized to UTC.
	assert.Equal(t, time.Date(2023, 5, 1, 4, 30, 0, 0, time.UTC), commits[1].CommittedAt)
}

func TestParseLog_TimestampTiesBreakOnSHA(t *testing.T) {
	raw := logRecord("aaa", "2023-05-01T10:00:00Z", "Alice", "PiperOrigin-RevId: 1\n") +
		"\n" + logRecord("zzz", "2023-05-01T10:00:00Z", "Bob", "PiperOrigin-RevId: 2\n")

	commits := ParseLog([]byte(raw))

	require.Len(t, commits, 2)
	assert.Equal(t, "zzz", commits[0].SHA)
	assert.Equal(t, "aaa", commits[1].SHA)
}

func TestParseLog_SkipsMalformedRecords(t *testing.T) {
	raw := "garbage without separators" + recordSep +
		"\n" + logRecord("aaa", "not-a-date", "Alice", "PiperOrigin-RevId: 1\n") +
		"\n" + logRecord("bbb", "2023-05-01T10:00:00Z", "Bob", "PiperOrigin-RevId: 2\n")

	commits := ParseLog([]byte(raw))

	require.Len(t, commits, 1)
	assert.Equal(t, "bbb", commits[0].SHA)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "piper_commits.csv")
	commits := []Commit{
		{
			RevID:       "200",
			SHA:         "bbb222",
			Author:      "Bob\nNewline",
			CommittedAt: time.Date(2023, 5, 2, 10, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, WriteCSV(commits, path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "piper_rev_id,git_sha,author,committed_at\n" +
		"200,bbb222,BobNewline,2023-05-02T10:00:00Z\n"
	assert.Equal(t, want, string(got))
}
