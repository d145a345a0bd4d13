// Package scanner turns the per-window similarity between a fingerprint
// timeline and a set of reference samples into transition events.
//
// The scan walks the timeline window by window, alternating between waiting
// for the next expected sample to begin and waiting for the current one to
// end. A state change is only committed after MinRunWindows consecutive
// windows agree, and it is dated to the first window of that run. Each step
// of the transition pattern produces exactly one event; running out of
// windows first is reported as an incomplete sequence.
package scanner
