// Package modal calls the serverless compute backend that fronts the image,
// video, voice and music providers.
package modal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"filmflow/internal/domain"
)

var (
	ErrMissingBaseURL = errors.New("modal: base url is required")
	ErrMissingAPIKey  = errors.New("modal: api key is required")
)

const maxResponseBytes = 32 << 20

// Options configures the compute backend client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the compute backend.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type StoryboardRequest struct {
	Prompt      string   `json:"prompt"`
	ActorRefs   []string `json:"actor_refs,omitempty"`
	Resolution  string   `json:"resolution"`
	AspectRatio string   `json:"aspect_ratio"`
	Model       string   `json:"model"`
}

type VideoRequest struct {
	ImageURL       string `json:"image_url,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
	CameraMovement string `json:"camera_movement,omitempty"`
	Duration       int    `json:"duration"`
	AspectRatio    string `json:"aspect_ratio,omitempty"`
	Model          string `json:"model"`
}

type AudioRequest struct {
	Text     string `json:"text"`
	VoiceID  string `json:"voice_id,omitempty"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model"`
}

type MusicRequest struct {
	Prompt          string `json:"prompt"`
	Style           string `json:"style,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	Instrumental    bool   `json:"instrumental"`
	Model           string `json:"model"`
}

// Result is a finished asset. Either URL or Data is set.
type Result struct {
	URL            string
	Data           []byte
	ContentType    string
	Model          string
	CharacterCount int
}

type response struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	Model          string `json:"model"`
	ImageURL       string `json:"image_url"`
	VideoURL       string `json:"video_url"`
	AudioURL       string `json:"audio_url"`
	AudioBase64    string `json:"audio_base64"`
	ContentType    string `json:"content_type"`
	CharacterCount int    `json:"character_count"`
}

// NewClient constructs a client. The base url is mandatory; the api key may
// be empty for local backends.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// HasCredentials reports whether requests carry an api key.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

func (c *Client) GenerateStoryboard(ctx context.Context, req StoryboardRequest) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("modal: prompt is required")
	}
	resp, err := c.call(ctx, "generate_storyboard", req)
	if err != nil {
		return nil, err
	}
	return urlResult(resp, resp.ImageURL, "image")
}

func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) (*Result, error) {
	if strings.TrimSpace(req.ImageURL) == "" && strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("modal: image url or prompt is required")
	}
	resp, err := c.call(ctx, "generate_video", req)
	if err != nil {
		return nil, err
	}
	return urlResult(resp, resp.VideoURL, "video")
}

// GenerateAudio synthesizes speech. The backend may return the audio inline.
func (c *Client) GenerateAudio(ctx context.Context, req AudioRequest) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("modal: text is required")
	}
	resp, err := c.call(ctx, "generate_slovak_audio", req)
	if err != nil {
		return nil, err
	}
	if resp.AudioURL != "" {
		return urlResult(resp, resp.AudioURL, "audio")
	}
	if resp.AudioBase64 == "" {
		return nil, fmt.Errorf("%w: modal: empty audio", domain.ErrProviderFailure)
	}
	data, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: modal: decode audio: %v", domain.ErrProviderFailure, err)
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &Result{Data: data, ContentType: contentType, Model: resp.Model, CharacterCount: resp.CharacterCount}, nil
}

func (c *Client) GenerateMusic(ctx context.Context, req MusicRequest) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("modal: prompt is required")
	}
	resp, err := c.call(ctx, "generate_music", req)
	if err != nil {
		return nil, err
	}
	return urlResult(resp, resp.AudioURL, "music")
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("modal: build request: %w", err)
	}
	c.authorize(httpReq)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("modal: health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("modal: health status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) call(ctx context.Context, function string, payload any) (*response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("modal: encode request: %w", err)
	}
	endpoint := c.baseURL + "/" + function
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("modal: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("modal: %s: %w", function, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("modal: read response: %w", err)
	}
	c.logger.Debug().
		Str("function", function).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("modal: call finished")

	var decoded response
	decodeErr := json.Unmarshal(raw, &decoded)
	if resp.StatusCode >= 300 {
		if decodeErr == nil && decoded.Error != "" {
			return nil, fmt.Errorf("%w: modal: %s", domain.ErrProviderFailure, decoded.Error)
		}
		return nil, fmt.Errorf("%w: modal: status %d: %s", domain.ErrProviderFailure, resp.StatusCode, snippet(raw))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("modal: decode response: %w", decodeErr)
	}
	if !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = "unsuccessful response"
		}
		return nil, fmt.Errorf("%w: modal: %s", domain.ErrProviderFailure, msg)
	}
	return &decoded, nil
}

func (c *Client) authorize(r *http.Request) {
	if c.apiKey != "" {
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func urlResult(resp *response, url, kind string) (*Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: modal: empty %s url", domain.ErrProviderFailure, kind)
	}
	return &Result{URL: url, Model: resp.Model, CharacterCount: resp.CharacterCount}, nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
