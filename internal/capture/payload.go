// Package capture turns student input into answer payloads: typed text,
// recorded audio, or a picked image.
package capture

import (
	"encoding/base64"
	"fmt"
)

// Kind discriminates Payload variants.
type Kind string

const (
	KindText  Kind = "text"
	KindMedia Kind = "media"
)

// Payload is a captured answer. It is either Text or Media.
type Payload interface {
	Kind() Kind
}

// Text is a typed answer or a selected option.
type Text struct {
	Value string
}

func (Text) Kind() Kind { return KindText }

// Media is a recorded or uploaded answer. Data is base64 encoded.
type Media struct {
	MIMEType string
	Data     string
}

func (Media) Kind() Kind { return KindMedia }

// Bytes decodes Data.
func (m Media) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Data)
}

// Empty reports whether no media was captured.
func (m Media) Empty() bool { return m.Data == "" }

// NewMedia encodes raw bytes into a Media payload.
func NewMedia(mimeType string, raw []byte) Media {
	return Media{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(raw)}
}

// Describe returns the string stored in the assessment log for a payload.
func Describe(p Payload) string {
	switch v := p.(type) {
	case Text:
		return v.Value
	case Media:
		return fmt.Sprintf("[Media Uploaded: %s]", v.MIMEType)
	case nil:
		return ""
	default:
		return fmt.Sprintf("[Unknown answer kind %s]", p.Kind())
	}
}
