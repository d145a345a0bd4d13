// Package faults defines the error kinds autocut surfaces to callers.
//
// Each kind is a sentinel usable with errors.Is. Typed errors carry the
// details a caller needs to report the failure and unwrap to their sentinel,
// so CLI and orchestration code can branch on the kind without matching on
// message text. Recoverable reports which kinds a caller may answer with a
// fallback instead of aborting.
package faults
