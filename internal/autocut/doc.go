// Package autocut wires fingerprinting, scanning, planning, and splicing
// into the runs the CLI exposes.
//
// A Runner owns a work directory per run, loads the reference samples and
// the input timeline (both cache backed), scans for the transition pattern,
// and writes the kept intervals to the requested outputs. When the audio
// does not contain the full pattern and the caller opted in, the run falls
// back to a single unedited merge of the inputs.
package autocut
