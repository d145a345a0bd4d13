package splicer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmFormat is the part of a WAV header that must agree across inputs.
type pcmFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func (f pcmFormat) String() string {
	return fmt.Sprintf("%d Hz / %d ch / %d bit", f.SampleRate, f.Channels, f.BitDepth)
}

// reader streams frames from one WAV file.
type reader struct {
	path    string
	file    *os.File
	decoder *wav.Decoder
	format  pcmFormat
	frames  int64
	pos     int64
}

func openReader(path string) (*reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &reader{path: path, file: file}
	if err := r.reset(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

// reset positions the reader at frame 0.
func (r *reader) reset() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", r.path, err)
	}
	decoder := wav.NewDecoder(r.file)
	if !decoder.IsValidFile() {
		return fmt.Errorf("%s is not a valid WAV file", r.path)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return fmt.Errorf("locate PCM data in %s: %w", r.path, err)
	}
	format := pcmFormat{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	if format.Channels <= 0 || format.BitDepth <= 0 {
		return fmt.Errorf("%s has an unsupported PCM layout (%s)", r.path, format)
	}
	frameBytes := int64(format.Channels * ((format.BitDepth + 7) / 8))
	r.decoder = decoder
	r.format = format
	r.frames = decoder.PCMLen() / frameBytes
	r.pos = 0
	return nil
}

// advance reads n frames (bounded by the file length) through buf and hands
// every chunk to sink. A nil sink discards the audio.
func (r *reader) advance(n int64, buf *audio.IntBuffer, sink func(*audio.IntBuffer) error) error {
	channels := r.format.Channels
	capFrames := int64(len(buf.Data) / channels)
	full := buf.Data
	defer func() { buf.Data = full }()

	for n > 0 && r.pos < r.frames {
		want := min(n, capFrames, r.frames-r.pos)
		buf.Data = full[:want*int64(channels)]
		got, err := r.decoder.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read %s: %w", r.path, err)
		}
		gotFrames := int64(got / channels)
		if gotFrames == 0 {
			return fmt.Errorf("read %s: unexpected end of PCM data at frame %d of %d", r.path, r.pos, r.frames)
		}
		if sink != nil {
			buf.Data = full[:gotFrames*int64(channels)]
			if err := sink(buf); err != nil {
				return err
			}
		}
		r.pos += gotFrames
		n -= gotFrames
	}
	return nil
}

func (r *reader) Close() error {
	return r.file.Close()
}

// writer is a lazily created partial output.
type writer struct {
	path    string
	file    *os.File
	encoder *wav.Encoder
	frames  int64
}

func createWriter(path string, format pcmFormat) (*writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create partial: %w", err)
	}
	encoder := wav.NewEncoder(file, format.SampleRate, format.BitDepth, format.Channels, 1)
	return &writer{path: path, file: file, encoder: encoder}, nil
}

func (w *writer) write(buf *audio.IntBuffer) error {
	if err := w.encoder.Write(buf); err != nil {
		return fmt.Errorf("write partial %s: %w", w.path, err)
	}
	w.frames += int64(len(buf.Data) / buf.Format.NumChannels)
	return nil
}

func (w *writer) Close() error {
	encErr := w.encoder.Close()
	fileErr := w.file.Close()
	if encErr != nil {
		return fmt.Errorf("finalize partial %s: %w", w.path, encErr)
	}
	return fileErr
}
