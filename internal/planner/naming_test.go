package planner

import (
	"errors"
	"reflect"
	"testing"

	"autocut/internal/faults"
)

func TestValidateOutputName(t *testing.T) {
	tests := []struct {
		name    string
		split   bool
		wantErr bool
	}{
		{"episode_*.wav", true, false},
		{"episode.wav", true, true},
		{"episode_*_*.wav", true, true},
		{"episode.wav", false, false},
		{"episode_*.wav", false, true},
		{"  ", false, true},
	}
	for _, tt := range tests {
		err := ValidateOutputName(tt.name, tt.split)
		if tt.wantErr {
			if !errors.Is(err, faults.ErrOutputNaming) {
				t.Fatalf("ValidateOutputName(%q, %v) error = %v, want output naming", tt.name, tt.split, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ValidateOutputName(%q, %v) returned error: %v", tt.name, tt.split, err)
		}
	}
}

func TestValidateOutputForSinglePart(t *testing.T) {
	tests := []struct {
		name    string
		merge   bool
		parts   int
		wantErr bool
	}{
		{"episode.wav", false, 1, false},
		{"episode_*.wav", false, 1, false},
		{"episode.wav", false, 0, false},
		{"episode.wav", false, 2, true},
		{"episode_*.wav", true, 1, true},
		{"", false, 1, true},
	}
	for _, tt := range tests {
		err := ValidateOutputFor(tt.name, tt.merge, tt.parts)
		if got := errors.Is(err, faults.ErrOutputNaming); got != tt.wantErr {
			t.Fatalf("ValidateOutputFor(%q, merge=%v, parts=%d) = %v, wantErr %v", tt.name, tt.merge, tt.parts, err, tt.wantErr)
		}
	}
}

func TestKeptIntervals(t *testing.T) {
	if got := KeptIntervals([]Segment{Cut, Keep, Cut, Keep, Keep}); got != 3 {
		t.Fatalf("KeptIntervals = %d, want 3", got)
	}
}

func TestGroupOutputsSinglePartWithoutWildcard(t *testing.T) {
	got, err := GroupOutputs("ep.wav", []Interval{{Start: 10, End: EndOfStream}}, false)
	if err != nil {
		t.Fatalf("GroupOutputs returned error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "ep_01.wav" {
		t.Fatalf("GroupOutputs = %+v, want one ep_01.wav part", got)
	}
}

func TestPartName(t *testing.T) {
	if got := PartName("ep_*.wav", 1); got != "ep_01.wav" {
		t.Fatalf("PartName = %q, want ep_01.wav", got)
	}
	if got := PartName("ep_*.wav", 12); got != "ep_12.wav" {
		t.Fatalf("PartName = %q, want ep_12.wav", got)
	}
	if got := PartName("ep.m4a", 3); got != "ep_03.m4a" {
		t.Fatalf("PartName = %q, want ep_03.m4a", got)
	}
}

func TestGroupOutputs(t *testing.T) {
	intervals := []Interval{{Start: 100, End: 400}, {Start: 500, End: EndOfStream}}

	split, err := GroupOutputs("ep_*.wav", intervals, false)
	if err != nil {
		t.Fatalf("GroupOutputs split returned error: %v", err)
	}
	wantSplit := []Output{
		{Name: "ep_01.wav", Intervals: []Interval{{Start: 100, End: 400}}},
		{Name: "ep_02.wav", Intervals: []Interval{{Start: 500, End: EndOfStream}}},
	}
	if !reflect.DeepEqual(split, wantSplit) {
		t.Fatalf("GroupOutputs split = %v, want %v", split, wantSplit)
	}

	merged, err := GroupOutputs("ep.wav", intervals, true)
	if err != nil {
		t.Fatalf("GroupOutputs merge returned error: %v", err)
	}
	if len(merged) != 1 || merged[0].Name != "ep.wav" || !reflect.DeepEqual(merged[0].Intervals, intervals) {
		t.Fatalf("GroupOutputs merge = %v", merged)
	}

	if _, err := GroupOutputs("ep.wav", intervals, false); !errors.Is(err, faults.ErrOutputNaming) {
		t.Fatalf("expected output naming error, got %v", err)
	}
}

func TestSuggestOutputName(t *testing.T) {
	if got := SuggestOutputName("/vods/show.mkv", ".wav", true); got != "/vods/show_part*.wav" {
		t.Fatalf("SuggestOutputName split = %q", got)
	}
	if got := SuggestOutputName("/vods/show.wav", "", false); got != "/vods/show_cut.wav" {
		t.Fatalf("SuggestOutputName merge = %q", got)
	}
}
