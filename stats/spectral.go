package stats

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Spectrum is the one-sided amplitude spectrum of a mean-centered series
// with the zero-frequency bin removed.
type Spectrum struct {
	Frequencies []float64
	Magnitudes  []float64
}

// FFTSpectrum computes |rfft(x - mean)| at frequencies k/n for k >= 1.
func FFTSpectrum(values []float64) Spectrum {
	n := len(values)
	if n < 2 {
		return Spectrum{}
	}

	centered := append([]float64(nil), values...)
	floats.AddConst(-Mean(values), centered)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	sp := Spectrum{
		Frequencies: make([]float64, 0, len(coeffs)-1),
		Magnitudes:  make([]float64, 0, len(coeffs)-1),
	}
	for k := 1; k < len(coeffs); k++ {
		sp.Frequencies = append(sp.Frequencies, fft.Freq(k))
		sp.Magnitudes = append(sp.Magnitudes, cmplx.Abs(coeffs[k]))
	}
	return sp
}

// TopK returns the indices of the k largest magnitudes, largest first.
func (s Spectrum) TopK(k int) []int {
	return topIndices(s.Magnitudes, k)
}

// Entropy is the Shannon entropy of the normalized power spectrum.
func (s Spectrum) Entropy() float64 {
	psd := make([]float64, len(s.Magnitudes))
	for i, m := range s.Magnitudes {
		psd[i] = m * m
	}
	total := floats.Sum(psd) + 1e-10
	h := 0.0
	for _, p := range psd {
		q := p / total
		h -= q * math.Log(q+1e-10)
	}
	return h
}

func topIndices(values []float64, k int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}

// PSD is a power spectral density estimate.
type PSD struct {
	Frequencies []float64
	Power       []float64
	SegmentLen  int
}

// Welch estimates the power spectral density with Welch's method: periodic
// Hann windows, 50% overlap, per-segment mean removal, one-sided density
// scaling at unit sampling frequency. The zero-frequency bin is kept.
func Welch(values []float64, segmentLen int) PSD {
	n := len(values)
	if segmentLen > n {
		segmentLen = n
	}
	if segmentLen < 2 {
		return PSD{SegmentLen: segmentLen}
	}

	ones := make([]float64, segmentLen+1)
	for i := range ones {
		ones[i] = 1
	}
	win := window.Hann(ones)[:segmentLen]
	scale := 1 / floats.Dot(win, win)

	overlap := segmentLen / 2
	step := segmentLen - overlap
	fft := fourier.NewFFT(segmentLen)
	bins := segmentLen/2 + 1
	power := make([]float64, bins)

	segments := 0
	seg := make([]float64, segmentLen)
	for start := 0; start+segmentLen <= n; start += step {
		copy(seg, values[start:start+segmentLen])
		floats.AddConst(-Mean(seg), seg)
		floats.Mul(seg, win)

		coeffs := fft.Coefficients(nil, seg)
		for k, c := range coeffs {
			a := cmplx.Abs(c)
			power[k] += a * a * scale
		}
		segments++
	}
	if segments == 0 {
		return PSD{SegmentLen: segmentLen}
	}

	floats.Scale(1/float64(segments), power)
	last := bins - 1
	if segmentLen%2 != 0 {
		last = bins
	}
	for k := 1; k < last; k++ {
		power[k] *= 2
	}

	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = fft.Freq(k)
	}
	return PSD{Frequencies: freqs, Power: power, SegmentLen: segmentLen}
}

// FindPeaks returns indices of strict interior local maxima with value >=
// minHeight.
func FindPeaks(values []float64, minHeight float64) []int {
	var peaks []int
	for i := 1; i < len(values)-1; i++ {
		v := values[i]
		if v > values[i-1] && v > values[i+1] && v >= minHeight {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// HaarLevel is one level of a Haar decomposition.
type HaarLevel struct {
	Level  int
	Detail []float64
	Energy float64
}

// Haar is a multi-level Haar decomposition.
type Haar struct {
	Levels      []HaarLevel
	Approx      []float64
	TotalEnergy float64
}

// HaarDecompose applies up to maxLevel Haar steps, stopping once the
// approximation is shorter than 4. Odd lengths drop their last element.
// TotalEnergy is the detail energy of all levels plus the final
// approximation energy.
func HaarDecompose(values []float64, maxLevel int) Haar {
	approx := append([]float64(nil), values...)
	var h Haar

	for lv := 1; lv <= maxLevel; lv++ {
		if len(approx) < 4 {
			break
		}
		half := len(approx) / 2
		next := make([]float64, half)
		detail := make([]float64, half)
		for i := 0; i < half; i++ {
			a, b := approx[2*i], approx[2*i+1]
			next[i] = (a + b) / math.Sqrt2
			detail[i] = (a - b) / math.Sqrt2
		}
		energy := floats.Dot(detail, detail)
		h.Levels = append(h.Levels, HaarLevel{Level: lv, Detail: detail, Energy: energy})
		h.TotalEnergy += energy
		approx = next
	}

	h.Approx = approx
	h.TotalEnergy += floats.Dot(approx, approx)
	return h
}
