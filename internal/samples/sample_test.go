package samples_test

import (
	"math/rand/v2"
	"testing"

	"autocut/internal/fingerprint"
	"autocut/internal/samples"
)

func randomCodes(seed uint64, n int) []fingerprint.Code {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	codes := make([]fingerprint.Code, n)
	for i := range codes {
		codes[i] = rng.Uint32()
	}
	return codes
}

func TestWindowErrorFindsExactAlignment(t *testing.T) {
	codes := randomCodes(1, 200)
	sample := samples.NewReferenceSample("overture", codes, samples.DefaultMask)
	window := codes[37:57]

	for _, checkHighBits := range []bool{true, false} {
		if got := sample.WindowError(window, checkHighBits); got != 0 {
			t.Fatalf("WindowError(checkHighBits=%v) = %v, want 0", checkHighBits, got)
		}
	}
}

func TestWindowErrorPrunedNeverBeatsExhaustiveSearch(t *testing.T) {
	codes := randomCodes(2, 150)
	sample := samples.NewReferenceSample("intro", codes, samples.DefaultMask)
	for seed := uint64(10); seed < 30; seed++ {
		window := randomCodes(seed, 12)
		exhaustive := 1.0
		for offset := range codes {
			exhaustive = min(exhaustive, fingerprint.BitErrorRate(window, codes[offset:]))
		}
		if pruned := sample.WindowError(window, true); pruned < exhaustive {
			t.Fatalf("seed %d: pruned error %v below exhaustive minimum %v", seed, pruned, exhaustive)
		}
	}
}

func TestWindowErrorMissReturnsSentinel(t *testing.T) {
	codes := []fingerprint.Code{0x01000000, 0x01000001, 0x01000002}
	sample := samples.NewReferenceSample("sting", codes, samples.DefaultMask)
	window := []fingerprint.Code{0xFE000000, 0xFE000000}

	if got := sample.WindowError(window, true); got != samples.MissError {
		t.Fatalf("WindowError = %v, want %v", got, samples.MissError)
	}
	if got := sample.WindowError(nil, false); got != samples.MissError {
		t.Fatalf("empty window = %v, want %v", got, samples.MissError)
	}
}

func TestWindowLongerThanSampleComparesOverlap(t *testing.T) {
	codes := randomCodes(3, 5)
	sample := samples.NewReferenceSample("short", codes, samples.DefaultMask)
	window := append(append([]fingerprint.Code{}, codes...), randomCodes(4, 5)...)

	if got := sample.WindowError(window, false); got != 0 {
		t.Fatalf("WindowError = %v, want 0 over the overlapping prefix", got)
	}
}

func TestReferenceSampleIsImmutable(t *testing.T) {
	codes := []fingerprint.Code{1, 2, 3}
	sample := samples.NewReferenceSample("x", codes, 0)
	codes[0] = 99
	if got := sample.Codes()[0]; got != 1 {
		t.Fatalf("sample shares caller slice: first code = %d", got)
	}
	if sample.Mask() != samples.DefaultMask {
		t.Fatalf("zero mask should default, got %#x", sample.Mask())
	}
}
