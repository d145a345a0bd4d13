package fingerprint

import (
	"math/bits"
	"math/rand/v2"
	"testing"
)

func TestPopCountMatchesMathBits(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		c := rng.Uint32()
		if got, want := PopCount(c), bits.OnesCount32(c); got != want {
			t.Fatalf("PopCount(%#x) = %d, want %d", c, got, want)
		}
	}
}

func TestBitErrorRateKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b []Code
		want float64
	}{
		{"identical", []Code{1, 2, 3}, []Code{1, 2, 3}, 0},
		{"inverted", []Code{0}, []Code{0xFFFFFFFF}, 1},
		{"one byte differs", []Code{0x000000FF}, []Code{0}, 0.25},
		{"uses shorter length", []Code{0, 0}, []Code{0xFFFFFFFF}, 1},
		{"empty", nil, []Code{1}, 1},
		{"both empty", nil, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BitErrorRate(tt.a, tt.b); got != tt.want {
				t.Fatalf("BitErrorRate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBitErrorRateSymmetricAndBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 200 {
		n := 1 + rng.IntN(64)
		a := make([]Code, n)
		b := make([]Code, n)
		for i := range n {
			a[i] = rng.Uint32()
			b[i] = rng.Uint32()
		}
		ab := BitErrorRate(a, b)
		if ab != BitErrorRate(b, a) {
			t.Fatalf("trial %d: metric not symmetric", trial)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("trial %d: metric %v out of bounds", trial, ab)
		}
		if BitErrorRate(a, a) != 0 {
			t.Fatalf("trial %d: self distance not zero", trial)
		}
	}
}
