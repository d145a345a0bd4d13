// Package fingerprint holds the chroma fingerprint primitives autocut matches on.
//
// A fingerprint is a fixed-rate sequence of 32-bit codes; two sequences are
// compared by the fraction of differing bits (BitErrorRate). Fingerprints are
// produced by an external tool behind the Fingerprinter interface; Fpcalc is
// the production adapter, pairing chromaprint's fpcalc with ffprobe for the
// sample rate and channel layout the timeline bookkeeping needs.
package fingerprint
