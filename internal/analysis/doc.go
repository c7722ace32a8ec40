// Package analysis extracts frequency content from sampled simulation
// results.
//
//   - [Spectrum]: single sided amplitude spectrum of a windowed signal
//   - [DominantFrequency]: strongest non-constant component, refined
//     between frequency bins
//
// Signals are assumed to be sampled at a constant rate. The mean is
// removed and a Hann window applied before the transform, so a pure
// sine of amplitude A shows up with a peak amplitude close to A/2.
package analysis
