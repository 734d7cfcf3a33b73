package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// AudioMIMEType is the container produced by the recorder.
const AudioMIMEType = "audio/webm"

var (
	// ErrDeviceUnavailable wraps failures to acquire the microphone.
	ErrDeviceUnavailable = errors.New("microphone unavailable")

	// ErrNotRecording is returned by Stop when no recording is running.
	ErrNotRecording = errors.New("not recording")

	// ErrAlreadyRecording is returned by Start while a recording is running.
	ErrAlreadyRecording = errors.New("already recording")
)

// Device is an audio input. Acquire starts capture and returns the encoded
// stream. Closing the stream releases the device.
type Device interface {
	Acquire(ctx context.Context) (io.ReadCloser, error)
}

// RecorderState is the lifecycle of one capture.
type RecorderState int

const (
	RecorderIdle RecorderState = iota
	RecorderRecording
	RecorderRecorded
)

// Recorder buffers one audio answer at a time.
type Recorder struct {
	device Device

	mu     sync.Mutex
	state  RecorderState
	stream io.ReadCloser
	chunks [][]byte
	done   chan struct{}
	media  Media
	err    error

	// stopping is set once Stop or Redo closes the stream; read errors
	// after that point end the capture without failing it.
	stopping bool
}

// NewRecorder creates a Recorder on device.
func NewRecorder(device Device) *Recorder {
	return &Recorder{device: device}
}

// State returns the current lifecycle state.
func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start acquires the device and begins buffering chunks. If the device
// cannot be acquired the recorder stays idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == RecorderRecording {
		return ErrAlreadyRecording
	}

	stream, err := r.device.Acquire(ctx)
	if err != nil {
		r.state = RecorderIdle
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	r.state = RecorderRecording
	r.stream = stream
	r.chunks = nil
	r.media = Media{}
	r.err = nil
	r.stopping = false
	r.done = make(chan struct{})
	go r.pump(stream, r.done)
	return nil
}

func (r *Recorder) pump(stream io.Reader, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 32*1024)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.mu.Lock()
			r.chunks = append(r.chunks, chunk)
			r.mu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				r.mu.Lock()
				if !r.stopping {
					r.err = err
				}
				r.mu.Unlock()
			}
			return
		}
	}
}

// Stop releases the device and assembles the buffered chunks into a Media
// payload. The device is released even when assembling fails.
func (r *Recorder) Stop() (Media, error) {
	r.mu.Lock()
	if r.state != RecorderRecording {
		r.mu.Unlock()
		return Media{}, ErrNotRecording
	}
	stream, done := r.stream, r.done
	r.stream = nil
	r.stopping = true
	r.mu.Unlock()

	closeErr := stream.Close()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()

	data := bytes.Join(r.chunks, nil)
	r.chunks = nil
	if r.err != nil || len(data) == 0 {
		r.state = RecorderIdle
		switch {
		case r.err != nil:
			return Media{}, fmt.Errorf("recording failed: %w", r.err)
		case closeErr != nil:
			return Media{}, fmt.Errorf("recording failed: %w", closeErr)
		default:
			return Media{}, errors.New("recording is empty")
		}
	}

	r.media = NewMedia(AudioMIMEType, data)
	r.state = RecorderRecorded
	return r.media, nil
}

// Media returns the last finished recording.
func (r *Recorder) Media() (Media, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.media, r.state == RecorderRecorded
}

// Redo discards the capture so the student can record again.
func (r *Recorder) Redo() {
	r.release()
	r.mu.Lock()
	r.media = Media{}
	r.state = RecorderIdle
	r.mu.Unlock()
}

// Close releases the device if a recording is still running. It is safe
// to call at any time.
func (r *Recorder) Close() error {
	r.Redo()
	return nil
}

func (r *Recorder) release() {
	r.mu.Lock()
	stream, done := r.stream, r.done
	r.stream = nil
	r.chunks = nil
	r.stopping = true
	r.mu.Unlock()

	if stream != nil {
		stream.Close()
		<-done
	}
}
