package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/record"
	"github.com/ccollicutt/logframe/pkg/schema"
)

var testSchema = schema.MustNew('[', ']', map[schema.TokenType]int{
	schema.TokenDate:   0,
	schema.TokenLevel:  1,
	schema.TokenModule: 2,
	schema.TokenCode:   3,
})

func parse(t *testing.T, name, content string) *record.Log {
	t.Helper()
	log, err := parser.New(testSchema).Parse(context.Background(), strings.NewReader(content), name)
	require.NoError(t, err)
	return log
}

const appLog = `booting
[2024-01-15 10:00:00][INFO][auth][AUTH-001] login ok
[2024-01-15 10:01:00][ERROR][auth][AUTH-500] login failed
  at com.x.Auth.check(Auth.java:10)
  at com.x.Auth.login(Auth.java:4)
[2024-01-15 10:02:00][ERROR][db][DB-7] timeout
  at com.x.Db.query(Db.java:99)
[2024-01-15 10:30:00][LOUD][auth][AUTH-001] odd level
[nope][WARN][http][HTTP-404] not found
`

func TestAnalyze(t *testing.T) {
	s := Analyze(parse(t, "app.log", appLog))

	assert.Equal(t, []string{"app.log"}, s.Sources)
	assert.Equal(t, 5, s.Records)
	assert.Equal(t, 9, s.Lines)
	assert.Equal(t, 1, s.HeadlessLines)
	assert.Equal(t, 2, s.Warnings)

	assert.Equal(t, []LevelCount{
		{Level: record.LevelNone, Count: 1},
		{Level: record.LevelInfo, Count: 1},
		{Level: record.LevelWarning, Count: 1},
		{Level: record.LevelError, Count: 2},
	}, s.Levels)
	assert.Equal(t, 2, s.Count(record.LevelError))
	assert.Equal(t, 0, s.Count(record.LevelFatal))

	assert.Equal(t, []FacetCount{{"auth", 3}, {"db", 1}, {"http", 1}}, s.Modules)
	assert.Equal(t, FacetCount{"AUTH-001", 2}, s.Codes[0])

	require.NotNil(t, s.First)
	require.NotNil(t, s.Last)
	assert.True(t, s.First.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))
	assert.True(t, s.Last.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, 30*time.Minute, s.Span())
	assert.Equal(t, 1, s.Undated)

	assert.Equal(t, 2, s.MultiLine)
	assert.Equal(t, 3, s.LongestRecord)
	assert.Empty(t, s.Gaps)
}

func TestAnalyze_Gaps(t *testing.T) {
	a := New(WithMaxGap(10 * time.Minute))
	s, err := a.Analyze(context.Background(), parse(t, "app.log", appLog))
	require.NoError(t, err)

	require.Len(t, s.Gaps, 1)
	gap := s.Gaps[0]
	assert.Equal(t, 28*time.Minute, gap.Duration)
	assert.Equal(t, "app.log", gap.Source)
	assert.Equal(t, 8, gap.LineNum)

	// Reusing the analyzer starts from a clean state.
	s, err = a.Analyze(context.Background(), parse(t, "app.log", appLog))
	require.NoError(t, err)
	assert.Len(t, s.Gaps, 1)
}

func TestAnalyze_MergesLogsByDate(t *testing.T) {
	a := parse(t, "a.log", "[2024-01-15 10:00:00][INFO][a][A-1] x\n[2024-01-15 10:20:00][INFO][a][A-2] y\n")
	b := parse(t, "b.log", "[2024-01-15 10:05:00][INFO][b][B-1] z\n")

	s, err := New(WithMaxGap(10*time.Minute)).Analyze(context.Background(), a, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.log", "b.log"}, s.Sources)
	assert.Equal(t, 3, s.Records)
	require.Len(t, s.Gaps, 1)
	assert.Equal(t, 15*time.Minute, s.Gaps[0].Duration)
	assert.Equal(t, "a.log", s.Gaps[0].Source)
}

func TestAnalyze_TimeRange(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 1, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 10, 2, 0, 0, time.UTC)

	s, err := New(WithTimeRange(start, end)).Analyze(context.Background(), parse(t, "app.log", appLog))
	require.NoError(t, err)

	// Two in range plus one undated.
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 2, s.Filtered)
	assert.Equal(t, 2, s.Count(record.LevelError))
}

func TestAnalyze_TopN(t *testing.T) {
	s, err := New(WithTopN(1)).Analyze(context.Background(), parse(t, "app.log", appLog))
	require.NoError(t, err)
	assert.Equal(t, []FacetCount{{"auth", 3}}, s.Modules)
	assert.Len(t, s.Codes, 1)
}

func TestAnalyze_Empty(t *testing.T) {
	s := Analyze()
	assert.Zero(t, s.Records)
	assert.Nil(t, s.First)
	assert.Zero(t, s.Span())
}

func TestAnalyze_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Analyze(ctx, parse(t, "app.log", appLog))
	assert.True(t, errors.Is(err, context.Canceled))
}
