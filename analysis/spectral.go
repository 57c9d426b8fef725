package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/Yuuki0u0/shuprophet/stats"
)

// FrequencyComponent is one ranked spectral line.
type FrequencyComponent struct {
	Frequency float64 `json:"frequency"`
	Period    float64 `json:"period"`
	Magnitude float64 `json:"magnitude"`
}

// SpectrumObservation reports the dominant FFT frequencies.
type SpectrumObservation struct {
	Header
	DominantPeriods      []FrequencyComponent `json:"dominant_periods"`
	SpectralEntropy      float64              `json:"spectral_entropy"`
	HasStrongPeriodicity bool                 `json:"has_strong_periodicity"`
}

// SpectrumTool reports the TopK strongest FFT periods and the spectral
// entropy.
type SpectrumTool struct {
	TopK int
}

func (SpectrumTool) Metadata() Metadata {
	return Metadata{
		ID:          Spectrum,
		Category:    Spectral,
		Description: "FFT spectrum analysis to extract dominant frequencies and periodicity. Use for periodic or seasonal data.",
		Triggers:    []string{"frequency", "fft", "periodic", "cycle"},
	}
}

// Run flags strong periodicity when the top magnitude exceeds three times
// the mean magnitude.
func (t SpectrumTool) Run(values []float64) (Observation, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	sp := stats.FFTSpectrum(values)
	obs := &SpectrumObservation{Header: Header{Spectrum}, DominantPeriods: []FrequencyComponent{}}
	if len(sp.Magnitudes) == 0 {
		return obs, nil
	}

	for _, i := range sp.TopK(t.topK()) {
		f := sp.Frequencies[i]
		if f <= 0 {
			continue
		}
		obs.DominantPeriods = append(obs.DominantPeriods, FrequencyComponent{
			Frequency: stats.Round(f, 6),
			Period:    stats.Round(1/f, 2),
			Magnitude: stats.Round4(sp.Magnitudes[i]),
		})
	}
	obs.SpectralEntropy = stats.Round4(sp.Entropy())

	mean := stats.Mean(sp.Magnitudes)
	obs.HasStrongPeriodicity = len(obs.DominantPeriods) > 0 && obs.DominantPeriods[0].Magnitude > 3*mean
	return obs, nil
}

func (t SpectrumTool) topK() int {
	if t.TopK <= 0 {
		return 5
	}
	return t.TopK
}

// ScaleLevel is the detail energy at one Haar level.
type ScaleLevel struct {
	Level        int     `json:"level"`
	DetailEnergy float64 `json:"detail_energy"`
	DetailStd    float64 `json:"detail_std"`
	DetailLen    int     `json:"detail_len"`
	EnergyRatio  float64 `json:"energy_ratio"`
}

// MultiscaleObservation reports the Haar energy distribution.
type MultiscaleObservation struct {
	Header
	Levels        []ScaleLevel `json:"levels"`
	TotalEnergy   float64      `json:"total_energy"`
	DominantScale int          `json:"dominant_scale"`
}

// MultiscaleTool splits detail energy across up to MaxLevel Haar levels.
type MultiscaleTool struct {
	MaxLevel int
}

func (MultiscaleTool) Metadata() Metadata {
	return Metadata{
		ID:          Multiscale,
		Category:    Spectral,
		Description: "Haar wavelet multi-scale decomposition. Use for multi-resolution analysis of complex signals.",
		Triggers:    []string{"wavelet", "multiscale", "resolution"},
	}
}

// Run decomposes up to MaxLevel (default 4) levels. The dominant scale is
// the first level with the largest detail energy, 0 when no level ran.
func (t MultiscaleTool) Run(values []float64) (Observation, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	maxLevel := t.MaxLevel
	if maxLevel <= 0 {
		maxLevel = 4
	}

	haar := stats.HaarDecompose(values, maxLevel)
	obs := &MultiscaleObservation{
		Header:      Header{Multiscale},
		Levels:      []ScaleLevel{},
		TotalEnergy: stats.Round4(haar.TotalEnergy),
	}

	best := -1.0
	for _, lv := range haar.Levels {
		obs.Levels = append(obs.Levels, ScaleLevel{
			Level:        lv.Level,
			DetailEnergy: stats.Round4(lv.Energy),
			DetailStd:    stats.Round4(stats.PopStd(lv.Detail)),
			DetailLen:    len(lv.Detail),
			EnergyRatio:  stats.Round4(lv.Energy / (haar.TotalEnergy + 1e-10)),
		})
		if lv.Energy > best {
			best = lv.Energy
			obs.DominantScale = lv.Level
		}
	}
	return obs, nil
}

// SpectralPeak is one Welch periodogram peak.
type SpectralPeak struct {
	Frequency float64 `json:"frequency"`
	Period    float64 `json:"period"`
	Power     float64 `json:"power"`
}

// PeriodogramObservation reports the strongest Welch density peaks.
type PeriodogramObservation struct {
	Header
	Peaks      []SpectralPeak `json:"peaks"`
	TotalPower float64        `json:"total_power"`
	Nperseg    int            `json:"nperseg"`
}

// PeriodogramTool estimates the power spectrum with Welch's method.
type PeriodogramTool struct{}

func (PeriodogramTool) Metadata() Metadata {
	return Metadata{
		ID:          Periodogram,
		Category:    Spectral,
		Description: "Welch periodogram for robust spectral density estimation. Use to confirm periodicity findings.",
		Triggers:    []string{"periodogram", "spectral_density", "power_spectrum"},
	}
}

// Run uses segments of min(256, n/2) points (the whole series when n <= 8,
// never fewer than 4). Peaks must reach the mean power; the five strongest
// are reported.
func (PeriodogramTool) Run(values []float64) (Observation, error) {
	n := len(values)
	if n == 0 {
		return nil, ErrEmptySeries
	}
	nperseg := n
	if n > 8 {
		nperseg = min(256, n/2)
	}
	nperseg = max(4, nperseg)

	psd := stats.Welch(values, nperseg)
	obs := &PeriodogramObservation{Header: Header{Periodogram}, Peaks: []SpectralPeak{}, Nperseg: psd.SegmentLen}
	if len(psd.Power) < 2 {
		return obs, nil
	}

	freqs, power := psd.Frequencies[1:], psd.Power[1:]
	obs.TotalPower = stats.Round4(floats.Sum(power))

	peaks := stats.FindPeaks(power, stats.Mean(power))
	sort.SliceStable(peaks, func(a, b int) bool { return power[peaks[a]] > power[peaks[b]] })
	for _, i := range peaks[:min(5, len(peaks))] {
		if freqs[i] <= 0 {
			continue
		}
		obs.Peaks = append(obs.Peaks, SpectralPeak{
			Frequency: stats.Round(freqs[i], 6),
			Period:    stats.Round(1/freqs[i], 2),
			Power:     stats.Round4(power[i]),
		})
	}
	return obs, nil
}
