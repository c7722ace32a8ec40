package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: too few samples")

// minSamples is the shortest signal with a meaningful spectrum.
const minSamples = 8

func hann(i, n int) float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
}

// Spectrum returns the frequencies and amplitudes of the bins 0 to n/2 of
// samples taken at rate.
func Spectrum(samples []float64, rate float64) (freq, amp []float64, err error) {
	n := len(samples)
	if n < minSamples {
		return nil, nil, ErrTooShort
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	gain := 0.0
	for i, v := range samples {
		w := hann(i, n)
		windowed[i] = (v - mean) * w
		gain += w
	}

	spectrum := fft.FFTReal(windowed)
	freq = make([]float64, n/2+1)
	amp = make([]float64, n/2+1)
	for k := range freq {
		freq[k] = float64(k) * rate / float64(n)
		amp[k] = cmplx.Abs(spectrum[k]) / gain
	}
	return freq, amp, nil
}

// DominantFrequency returns the frequency of the largest spectral peak
// above zero. The peak is located between bins by fitting a parabola to the
// log amplitudes around it. A constant signal has frequency zero.
func DominantFrequency(samples []float64, rate float64) (float64, error) {
	freq, amp, err := Spectrum(samples, rate)
	if err != nil {
		return 0, err
	}

	peak := 0
	for k := 1; k < len(amp); k++ {
		if amp[k] > amp[peak] {
			peak = k
		}
	}
	if peak == 0 || amp[peak] == 0 {
		return 0, nil
	}
	if peak == len(amp)-1 {
		return freq[peak], nil
	}

	a, b, c := math.Log(amp[peak-1]), math.Log(amp[peak]), math.Log(amp[peak+1])
	offset := 0.0
	if d := a - 2*b + c; d < 0 && !math.IsInf(a, 0) && !math.IsInf(c, 0) {
		offset = 0.5 * (a - c) / d
	}
	return (float64(peak) + offset) * rate / float64(len(samples)), nil
}
