// Package splicer copies the kept intervals of a sequence of PCM WAV files
// into named outputs.
//
// The inputs are treated as one continuous stream: a running frame offset
// maps each interval onto the files it overlaps, and every piece is clamped
// to the current file before copying. Audio is streamed through a fixed
// size buffer. Each input writes at most one partial file per output name,
// created only when the first frame for that name arrives; partials are
// then joined into the final output.
package splicer
