// Package ffmpeg wraps the ffmpeg invocations autocut depends on: splitting
// a video's audio into bounded WAV segments, converting a file to PCM WAV,
// and concatenating audio parts with the concat demuxer.
package ffmpeg
