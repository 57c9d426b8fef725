package reasoning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Yuuki0u0/shuprophet/stats"
)

const (
	summaryFieldLen = 40
	summaryLineLen  = 120
)

// Step is one Thought, Action, Observation record.
type Step struct {
	Number      int            `json:"step"`
	Thought     string         `json:"thought"`
	Action      string         `json:"action"`
	Input       map[string]any `json:"action_input"`
	Observation any            `json:"observation"`
	// Elapsed is seconds since the session started, to two decimals.
	Elapsed float64 `json:"timestamp"`
}

// Trajectory is a snapshot of a session's memory.
type Trajectory struct {
	Steps      []Step  `json:"steps"`
	TotalSteps int     `json:"total_steps"`
	Elapsed    float64 `json:"elapsed"`
}

// Memory is the append-only step log of one session. It is not safe for
// concurrent use.
type Memory struct {
	clock func() time.Time
	start time.Time
	steps []Step
}

// NewMemory starts a session clock. A nil clock means time.Now.
func NewMemory(clock func() time.Time) *Memory {
	if clock == nil {
		clock = time.Now
	}
	return &Memory{clock: clock, start: clock()}
}

// Add appends a step and returns it with its number and timestamp set.
func (m *Memory) Add(thought, action string, input map[string]any, observation any) Step {
	if input == nil {
		input = map[string]any{}
	}
	s := Step{
		Number:      len(m.steps) + 1,
		Thought:     thought,
		Action:      action,
		Input:       input,
		Observation: observation,
		Elapsed:     m.elapsed(),
	}
	m.steps = append(m.steps, s)
	return s
}

func (m *Memory) elapsed() float64 {
	return stats.Round(m.clock().Sub(m.start).Seconds(), 2)
}

// Len returns the number of recorded steps.
func (m *Memory) Len() int {
	return len(m.steps)
}

// Latest maps each action to its most recent observation.
func (m *Memory) Latest() map[string]any {
	out := make(map[string]any, len(m.steps))
	for _, s := range m.steps {
		out[s.Action] = s.Observation
	}
	return out
}

// Snapshot copies the steps out of the memory.
func (m *Memory) Snapshot() Trajectory {
	return Trajectory{
		Steps:      append([]Step{}, m.steps...),
		TotalSteps: len(m.steps),
		Elapsed:    m.elapsed(),
	}
}

// Summary renders one line per step as "[Step N] action → k=v, ...".
// Each field is cut to 40 characters and each field list to 120.
func (m *Memory) Summary() string {
	if len(m.steps) == 0 {
		return "No observations yet."
	}
	lines := make([]string, 0, len(m.steps))
	for _, s := range m.steps {
		lines = append(lines, fmt.Sprintf("[Step %d] %s → %s", s.Number, s.Action, compact(s.Observation)))
	}
	return strings.Join(lines, "\n")
}

// compact renders the top-level fields of an observation in encoding
// order, skipping the tool identifier.
func compact(observation any) string {
	fields, err := objectFields(observation)
	if err != nil {
		return truncate(fmt.Sprint(observation), summaryLineLen)
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.key == "tool" {
			continue
		}
		part := f.key + "=" + f.value
		if utf8.RuneCountInString(part) > summaryFieldLen {
			part = truncate(part, summaryFieldLen-3) + "..."
		}
		parts = append(parts, part)
	}
	return truncate(strings.Join(parts, ", "), summaryLineLen)
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type field struct {
	key, value string
}

func objectFields(v any) ([]field, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("observation is not an object")
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: scalar(value)})
	}
	return fields, nil
}

// scalar unquotes JSON strings and leaves everything else as encoded.
func scalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
