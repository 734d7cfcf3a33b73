package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegDevice records from the system microphone through the ffmpeg
// binary and streams webm/opus.
type FFmpegDevice struct {
	// Format is the ffmpeg input device format (pulse, avfoundation, dshow).
	Format string
	// Input names the capture source for Format.
	Input string
}

// DefaultFFmpegDevice picks the platform's default capture source.
func DefaultFFmpegDevice() *FFmpegDevice {
	switch runtime.GOOS {
	case "darwin":
		return &FFmpegDevice{Format: "avfoundation", Input: ":0"}
	case "windows":
		return &FFmpegDevice{Format: "dshow", Input: "audio=default"}
	default:
		return &FFmpegDevice{Format: "pulse", Input: "default"}
	}
}

// Acquire starts ffmpeg and returns its stdout. Closing the stream stops
// the process.
func (d *FFmpegDevice) Acquire(ctx context.Context) (io.ReadCloser, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	pr, pw := io.Pipe()
	cmd := ffmpeg.Input(d.Input, ffmpeg.KwArgs{
		"f": d.Format,
	}).
		Output("pipe:1", ffmpeg.KwArgs{
			"f":   "webm",
			"c:a": "libopus",
			"ac":  "1",
		}).
		WithOutput(pw).
		Compile()

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	s := &ffmpegStream{PipeReader: pr, cmd: cmd, exited: make(chan struct{})}
	go func() {
		pw.CloseWithError(waitErr(cmd.Wait(), s.interrupted.Load()))
		close(s.exited)
	}()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.exited:
		}
	}()
	return s, nil
}

type ffmpegStream struct {
	*io.PipeReader
	cmd    *exec.Cmd
	exited chan struct{}
	once   sync.Once

	interrupted atomic.Bool
}

// waitErr drops the exit status ffmpeg reports after our own interrupt.
func waitErr(err error, interrupted bool) error {
	var exitErr *exec.ExitError
	if interrupted && errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// Close interrupts ffmpeg so it flushes the container, then waits for the
// process to exit.
func (s *ffmpegStream) Close() error {
	var err error
	s.once.Do(func() {
		s.interrupted.Store(true)
		if sigErr := s.cmd.Process.Signal(os.Interrupt); sigErr != nil && !errors.Is(sigErr, os.ErrProcessDone) {
			s.cmd.Process.Kill()
		}
		<-s.exited
		err = s.PipeReader.Close()
	})
	return err
}
