// Package nativemsg implements the browser native messaging framing: every
// message is a 4-byte little-endian length followed by exactly that many
// payload bytes. The codec does not interpret payloads.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// HeaderSize is the size of the length prefix in bytes.
const HeaderSize = 4

// DefaultMaxFrameSize bounds a single frame. Chrome allows messages of up to
// 64 MiB towards a native host.
const DefaultMaxFrameSize = 64 * 1024 * 1024

// ErrMalformedStream is returned when the stream ends inside a frame or a
// frame header cannot be trusted. Frame boundaries are lost at that point.
var ErrMalformedStream = errors.New("malformed native message stream")

// Encode returns the framed form of payload.
func Encode(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > 0xFFFFFFFF {
		return nil, fmt.Errorf("payload size %d does not fit a frame header", len(payload))
	}
	buf := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(buf[:HeaderSize], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf, nil
}

// Reader reads length-prefixed frames from a stream.
type Reader struct {
	reader  io.Reader
	maxSize int
}

// NewReader creates a Reader with DefaultMaxFrameSize.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader:  r,
		maxSize: DefaultMaxFrameSize,
	}
}

// SetMaxFrameSize updates the largest accepted payload. Values <= 0 restore
// the default.
func (fr *Reader) SetMaxFrameSize(n int) {
	if n <= 0 {
		n = DefaultMaxFrameSize
	}
	fr.maxSize = n
}

// ReadFrame reads one frame and returns its payload.
//
// It returns io.EOF when the stream closes cleanly at a frame boundary and
// an error wrapping ErrMalformedStream when it closes anywhere else.
func (fr *Reader) ReadFrame() ([]byte, error) {
	var header [HeaderSize]byte
	n, err := io.ReadFull(fr.reader, header[:])
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		return nil, fmt.Errorf("%w: stream closed after %d of %d header bytes", ErrMalformedStream, n, HeaderSize)
	case err != nil:
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	length := binary.LittleEndian.Uint32(header[:])
	if uint64(length) > uint64(fr.maxSize) {
		return nil, fmt.Errorf("%w: frame size %d exceeds limit %d", ErrMalformedStream, length, fr.maxSize)
	}

	payload := make([]byte, length)
	if n, err := io.ReadFull(fr.reader, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: stream closed after %d of %d payload bytes", ErrMalformedStream, n, length)
		}
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}
	return payload, nil
}

type flusher interface {
	Flush() error
}

// Writer writes length-prefixed frames to a stream. It is safe for
// concurrent use; each frame is written with a single Write call.
type Writer struct {
	mu      sync.Mutex
	writer  io.Writer
	maxSize int
}

// NewWriter creates a Writer with DefaultMaxFrameSize.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer:  w,
		maxSize: DefaultMaxFrameSize,
	}
}

// SetMaxFrameSize updates the largest payload the writer will emit. Values
// <= 0 restore the default.
func (fw *Writer) SetMaxFrameSize(n int) {
	if n <= 0 {
		n = DefaultMaxFrameSize
	}
	fw.maxSize = n
}

// WriteFrame frames and writes payload, flushing buffered writers.
func (fw *Writer) WriteFrame(payload []byte) error {
	if len(payload) > fw.maxSize {
		return fmt.Errorf("frame size %d exceeds limit %d", len(payload), fw.maxSize)
	}
	frame, err := Encode(payload)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.writer.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if f, ok := fw.writer.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush frame: %w", err)
		}
	}
	return nil
}

// WriteJSON marshals v and writes it as one frame.
func (fw *Writer) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return fw.WriteFrame(data)
}
