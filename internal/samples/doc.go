// Package samples holds the reference fingerprints of the transition
// soundtracks autocut looks for.
//
// A ReferenceSample indexes its codes by their masked high bits once, at
// construction, so WindowError can restrict the alignment search to offsets
// that share a coarse value with the window. The Loader builds a Library
// from the configured source files, reusing a cached bundle when one with
// the same mask and sample set is available.
package samples
