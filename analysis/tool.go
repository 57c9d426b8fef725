package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ID identifies a profiling tool. The values are the keys of a Profile.
type ID string

const (
	Trend        ID = "trend_analysis"
	Volatility   ID = "volatility_analysis"
	Anomaly      ID = "anomaly_detection"
	Stationarity ID = "stationarity_test"
	Distribution ID = "distribution_test"
	Changepoint  ID = "changepoint_detection"
	Correlation  ID = "correlation_analysis"
	Spectrum     ID = "fft_analysis"
	Multiscale   ID = "wavelet_decomposition"
	Periodogram  ID = "periodogram"
	Seasonal     ID = "seasonal_decompose"
	Differencing ID = "difference_transform"
)

// Category groups tools by the kind of analysis they perform.
type Category string

const (
	Statistical   Category = "statistical"
	Spectral      Category = "spectral"
	Decomposition Category = "decomposition"
)

// Metadata describes a tool.
type Metadata struct {
	ID          ID       `json:"id"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Triggers    []string `json:"triggers"`
}

// Observation is the result of one tool run. Implementations are plain
// structs that embed Header.
type Observation interface {
	ToolID() ID
}

// Header carries the producing tool's identifier.
type Header struct {
	Tool ID `json:"tool"`
}

func (h Header) ToolID() ID { return h.Tool }

// Tool is one profiling capability over a whole series.
type Tool interface {
	Metadata() Metadata
	Run(values []float64) (Observation, error)
}

var (
	// ErrEmptySeries is returned by every tool for an empty series.
	ErrEmptySeries = errors.New("analysis: empty series")
	// ErrUnknownTool is returned by Registry.Run for an unregistered ID.
	ErrUnknownTool = errors.New("analysis: unknown tool")
)

// ToolError wraps the failure of one tool run, including recovered panics.
type ToolError struct {
	Tool ID
	Err  error
}

// Error names the failed tool.
func (e *ToolError) Error() string {
	return fmt.Sprintf("analysis: %s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Outcome is the explicit result of running one tool: exactly one of
// Observation and Err is set.
type Outcome struct {
	Tool        ID
	Observation Observation
	Err         error
}

// OK reports whether the tool produced an observation.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Observation != nil
}

// Unbounded is a float that may legitimately be infinite, such as the
// coefficient of variation of a zero-mean series. Infinite and NaN values
// are encoded as JSON null.
type Unbounded float64

// MarshalJSON encodes infinite and NaN values as null.
func (u Unbounded) MarshalJSON() ([]byte, error) {
	f := float64(u)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// IsInf reports whether the value is infinite.
func (u Unbounded) IsInf() bool {
	return math.IsInf(float64(u), 0)
}
