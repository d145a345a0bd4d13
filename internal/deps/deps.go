// Package deps reports whether the external binaries autocut shells out to
// can be found.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names one external binary.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement plus what the lookup found.
type Status struct {
	Requirement
	Available bool
	// Path is the resolved location when Available.
	Path   string
	Detail string
}

// ToolRequirements lists the binaries used for fingerprinting and media work.
func ToolRequirements(ffmpeg, ffprobe, fpcalc string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Converts, segments, and joins audio"},
		{Name: "FFprobe", Command: ffprobe, Description: "Reads sample rate and channel layout"},
		{Name: "fpcalc", Command: fpcalc, Description: "Computes chromaprint fingerprints"},
	}
}

// Check resolves one requirement on PATH (or as a literal path).
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = resolved
	return status
}

// CheckBinaries runs Check over requirements, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
