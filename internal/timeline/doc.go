// Package timeline concatenates the fingerprints of an ordered list of
// audio files into one indexable sequence.
//
// The Timeline keeps the combined duration, the shared sample rate and
// channel count, and the resulting fingerprint rate, which together map a
// fingerprint index back to a PCM frame in the concatenated audio.
package timeline
