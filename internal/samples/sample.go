package samples

import (
	"slices"

	"autocut/internal/fingerprint"
)

// DefaultMask keeps the top byte of each code for the coarse index.
const DefaultMask uint32 = 0xFF000000

// MissError is the error reported when no alignment offset is plausible.
const MissError = 1.0

// ReferenceSample is the immutable fingerprint of one transition soundtrack.
type ReferenceSample struct {
	name    string
	codes   []fingerprint.Code
	mask    uint32
	offsets map[uint32][]int
}

// NewReferenceSample copies codes and builds the masked value index.
func NewReferenceSample(name string, codes []fingerprint.Code, mask uint32) *ReferenceSample {
	if mask == 0 {
		mask = DefaultMask
	}
	owned := slices.Clone(codes)
	offsets := make(map[uint32][]int)
	for i, code := range owned {
		masked := code & mask
		offsets[masked] = append(offsets[masked], i)
	}
	return &ReferenceSample{name: name, codes: owned, mask: mask, offsets: offsets}
}

func (s *ReferenceSample) Name() string { return s.name }

func (s *ReferenceSample) Mask() uint32 { return s.mask }

func (s *ReferenceSample) Len() int { return len(s.codes) }

// Codes returns a copy of the sample's fingerprint.
func (s *ReferenceSample) Codes() []fingerprint.Code { return slices.Clone(s.codes) }

// WindowError returns the lowest bit error rate of window against the
// sample over the candidate alignment offsets. With checkHighBits only
// offsets whose masked value also occurs in the window are tried. When no
// offset qualifies the result is MissError.
func (s *ReferenceSample) WindowError(window []fingerprint.Code, checkHighBits bool) float64 {
	if len(window) == 0 || len(s.codes) == 0 {
		return MissError
	}
	best := MissError
	found := false
	try := func(offset int) {
		errRate := fingerprint.BitErrorRate(window, s.codes[offset:])
		if !found || errRate < best {
			best = errRate
			found = true
		}
	}

	if !checkHighBits {
		last := max(len(s.codes)-len(window), 0)
		for offset := 0; offset <= last; offset++ {
			try(offset)
		}
		return best
	}

	for _, offset := range s.candidateOffsets(window) {
		try(offset)
	}
	return best
}

// candidateOffsets returns the sorted, deduplicated offsets registered under
// any masked value present in window.
func (s *ReferenceSample) candidateOffsets(window []fingerprint.Code) []int {
	seen := make(map[uint32]struct{}, len(window))
	var offsets []int
	for _, code := range window {
		masked := code & s.mask
		if _, ok := seen[masked]; ok {
			continue
		}
		seen[masked] = struct{}{}
		offsets = append(offsets, s.offsets[masked]...)
	}
	slices.Sort(offsets)
	return slices.Compact(offsets)
}
