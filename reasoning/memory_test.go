package reasoning

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuuki0u0/shuprophet/analysis"
)

// ticker returns a clock that advances by step on every call.
func ticker(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func TestMemoryAppend(t *testing.T) {
	m := NewMemory(ticker(1250 * time.Millisecond))
	first := m.Add("first", "trend_analysis", nil, map[string]any{"a": 1})
	second := m.Add("second", "trend_analysis", map[string]any{"k": 2}, map[string]any{"a": 2})

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, 1.25, first.Elapsed)
	assert.Equal(t, 2.5, second.Elapsed)
	assert.NotNil(t, first.Input)
	assert.Equal(t, 2, m.Len())

	latest := m.Latest()
	assert.Equal(t, map[string]any{"a": 2}, latest["trend_analysis"])

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.TotalSteps)
	assert.Equal(t, 3.75, snap.Elapsed)
	snap.Steps[0].Thought = "changed"
	assert.Equal(t, "first", m.Snapshot().Steps[0].Thought)
}

func TestMemorySummary(t *testing.T) {
	m := NewMemory(nil)
	assert.Equal(t, "No observations yet.", m.Summary())

	m.Add("t", "trend_analysis", nil, &analysis.TrendObservation{
		Header:       analysis.Header{Tool: analysis.Trend},
		Direction:    "increasing",
		Slope:        1,
		RSquared:     1,
		MannKendallZ: 6.1,
		Significant:  true,
	})
	m.Add("t", "changepoint_detection", nil, &analysis.ChangepointObservation{
		Header:       analysis.Header{Tool: analysis.Changepoint},
		Changepoints: []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		Count:        10,
	})

	lines := strings.Split(m.Summary(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[Step 1] trend_analysis → direction=increasing, slope=1, r_squared=1, mann_kendall_z=6.1, mann_kendall_p=0, significant=true", lines[0])
	assert.Equal(t, "[Step 2] changepoint_detection → changepoints=[10,20,30,40,50,60,70,80..., count=10, segment_means=null", lines[1])
}

func TestMemorySummaryTruncatesLine(t *testing.T) {
	type wide struct {
		A string `json:"a"`
		B string `json:"b"`
		C string `json:"c"`
		D string `json:"d"`
		E string `json:"e"`
	}
	long := strings.Repeat("x", 60)
	m := NewMemory(nil)
	m.Add("t", "wide", nil, wide{long, long, long, long, long})

	line := m.Summary()
	prefix := "[Step 1] wide → "
	require.True(t, strings.HasPrefix(line, prefix))
	body := strings.TrimPrefix(line, prefix)
	assert.Len(t, body, 120)
	assert.True(t, strings.HasPrefix(body, "a="+strings.Repeat("x", 35)+"..."))
}

func TestMemorySummaryCutsOnRuneBoundaries(t *testing.T) {
	type wide struct {
		A string `json:"a"`
		B string `json:"b"`
		C string `json:"c"`
		D string `json:"d"`
		E string `json:"e"`
	}
	long := strings.Repeat("é", 60)
	m := NewMemory(nil)
	m.Add("t", "wide", nil, wide{long, long, long, long, long})

	body := strings.TrimPrefix(m.Summary(), "[Step 1] wide → ")
	assert.True(t, utf8.ValidString(body))
	assert.Equal(t, 120, utf8.RuneCountInString(body))
	assert.True(t, strings.HasPrefix(body, "a="+strings.Repeat("é", 35)+"..., b="))
}
