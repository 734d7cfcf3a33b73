package capture

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrNotImage is returned when a picked file is not an image.
	ErrNotImage = errors.New("file is not an image")

	// ErrNotAudio is returned when a loaded recording is not audio.
	ErrNotAudio = errors.New("file is not an audio recording")
)

// MaxImageBytes caps picked images and loaded recordings.
const MaxImageBytes = 10 << 20

// ImagePicker holds at most one picked image.
type ImagePicker struct {
	path  string
	media Media
}

// Load reads path, checks that it is an image and keeps it as the answer.
// On error the previous pick is left untouched.
func (p *ImagePicker) Load(path string) (Media, error) {
	path = strings.TrimSpace(path)
	raw, err := readCapped(path)
	if err != nil {
		return Media{}, err
	}
	mt := mimetype.Detect(raw)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Media{}, fmt.Errorf("%s is %s: %w", path, mt.String(), ErrNotImage)
	}

	p.path = path
	p.media = NewMedia(mt.String(), raw)
	return p.media, nil
}

// Replace discards the current pick and loads path.
func (p *ImagePicker) Replace(path string) (Media, error) {
	p.Clear()
	return p.Load(path)
}

// Clear discards the current pick.
func (p *ImagePicker) Clear() {
	p.path = ""
	p.media = Media{}
}

// Media returns the picked image, if any.
func (p *ImagePicker) Media() (Media, bool) {
	return p.media, !p.media.Empty()
}

// Path returns the file the current pick came from.
func (p *ImagePicker) Path() string { return p.path }

// LoadAudio reads a recording made outside the app. WebM is reported by
// content sniffing as video and is stored as AudioMIMEType.
func LoadAudio(path string) (Media, error) {
	path = strings.TrimSpace(path)
	raw, err := readCapped(path)
	if err != nil {
		return Media{}, err
	}
	mt := mimetype.Detect(raw).String()
	switch {
	case strings.HasPrefix(mt, "audio/"):
	case mt == "video/webm":
		mt = AudioMIMEType
	default:
		return Media{}, fmt.Errorf("%s is %s: %w", path, mt, ErrNotAudio)
	}
	return NewMedia(mt, raw), nil
}

func readCapped(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxImageBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, info.Size(), MaxImageBytes)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
