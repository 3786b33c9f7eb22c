package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"filmflow/internal/domain"
)

// Settings is the per-type payload of a generation job. The concrete type is
// selected by the job's GenerationType.
type Settings interface {
	Type() domain.GenerationType
	normalize() error
}

// ImageSettings configures storyboard image generation.
type ImageSettings struct {
	Resolution  string   `json:"resolution"`
	AspectRatio string   `json:"aspectRatio"`
	ActorRefs   []string `json:"actorRefs,omitempty"`
}

// VideoSettings configures image-to-video generation.
type VideoSettings struct {
	ImageURL       string `json:"imageUrl,omitempty"`
	CameraMovement string `json:"cameraMovement,omitempty"`
	Duration       int    `json:"duration"`
	AspectRatio    string `json:"aspectRatio"`
}

// AudioSettings configures dialogue voice synthesis.
type AudioSettings struct {
	VoiceID  string `json:"voiceId,omitempty"`
	Language string `json:"language"`
}

// MusicSettings configures soundtrack generation.
type MusicSettings struct {
	Style           string `json:"style,omitempty"`
	DurationSeconds int    `json:"durationSeconds"`
	Instrumental    bool   `json:"instrumental"`
}

var (
	resolutions  = []string{"720p", "2K", "4K"}
	aspectRatios = []string{"16:9", "4:3", "1:1", "9:16"}
)

const (
	defaultResolution  = "2K"
	defaultAspectRatio = "16:9"
	maxActorRefs       = 4
)

func (*ImageSettings) Type() domain.GenerationType { return domain.GenerationImage }
func (*VideoSettings) Type() domain.GenerationType { return domain.GenerationVideo }
func (*AudioSettings) Type() domain.GenerationType { return domain.GenerationAudio }
func (*MusicSettings) Type() domain.GenerationType { return domain.GenerationMusic }

func (s *ImageSettings) normalize() error {
	if s.Resolution == "" {
		s.Resolution = defaultResolution
	}
	if !oneOf(s.Resolution, resolutions) {
		return domain.NewValidationError("settings.resolution", "must be one of "+strings.Join(resolutions, ", "))
	}
	if err := normalizeAspect(&s.AspectRatio); err != nil {
		return err
	}
	if len(s.ActorRefs) > maxActorRefs {
		return domain.NewValidationError("settings.actorRefs", fmt.Sprintf("at most %d references", maxActorRefs))
	}
	for _, ref := range s.ActorRefs {
		if !isHTTPURL(ref) {
			return domain.NewValidationError("settings.actorRefs", "must be http(s) urls")
		}
	}
	return nil
}

func (s *VideoSettings) normalize() error {
	if s.Duration == 0 {
		s.Duration = 5
	}
	if s.Duration < 5 || s.Duration > 10 {
		return domain.NewValidationError("settings.duration", "must be between 5 and 10 seconds")
	}
	if s.ImageURL != "" && !isHTTPURL(s.ImageURL) {
		return domain.NewValidationError("settings.imageUrl", "must be an http(s) url")
	}
	s.CameraMovement = strings.TrimSpace(s.CameraMovement)
	return normalizeAspect(&s.AspectRatio)
}

func (s *AudioSettings) normalize() error {
	s.Language = strings.ToLower(strings.TrimSpace(s.Language))
	if s.Language == "" {
		s.Language = "sk"
	}
	s.VoiceID = strings.TrimSpace(s.VoiceID)
	return nil
}

func (s *MusicSettings) normalize() error {
	if s.DurationSeconds == 0 {
		s.DurationSeconds = 60
	}
	if s.DurationSeconds < 10 || s.DurationSeconds > 240 {
		return domain.NewValidationError("settings.durationSeconds", "must be between 10 and 240")
	}
	s.Style = strings.TrimSpace(s.Style)
	return nil
}

// NewSettings returns zero-valued settings for typ.
func NewSettings(typ domain.GenerationType) (Settings, error) {
	switch typ {
	case domain.GenerationImage:
		return &ImageSettings{}, nil
	case domain.GenerationVideo:
		return &VideoSettings{}, nil
	case domain.GenerationAudio:
		return &AudioSettings{}, nil
	case domain.GenerationMusic:
		return &MusicSettings{}, nil
	}
	return nil, domain.NewValidationError("type", "unknown generation type "+string(typ))
}

// DecodeSettings parses raw into the settings variant for typ, applies
// defaults and validates it. Empty or null raw yields defaults.
func DecodeSettings(typ domain.GenerationType, raw json.RawMessage) (Settings, error) {
	s, err := NewSettings(typ)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(s); err != nil {
			return nil, domain.NewValidationError("settings", "invalid "+strings.ToLower(string(typ))+" settings: "+err.Error())
		}
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeSettings serializes s for storage.
func EncodeSettings(s Settings) (json.RawMessage, error) {
	if s == nil {
		return json.RawMessage(`{}`), nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return b, nil
}

func normalizeAspect(v *string) error {
	if *v == "" {
		*v = defaultAspectRatio
	}
	if !oneOf(*v, aspectRatios) {
		return domain.NewValidationError("settings.aspectRatio", "must be one of "+strings.Join(aspectRatios, ", "))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
