package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// GenerationType enumerates the media a generation job produces.
type GenerationType string

const (
	GenerationImage GenerationType = "IMAGE"
	GenerationVideo GenerationType = "VIDEO"
	GenerationAudio GenerationType = "AUDIO"
	GenerationMusic GenerationType = "MUSIC"
)

// GenerationTypes lists every supported type in display order.
var GenerationTypes = []GenerationType{GenerationImage, GenerationVideo, GenerationAudio, GenerationMusic}

// ParseGenerationType normalizes s and reports whether it names a known type.
func ParseGenerationType(s string) (GenerationType, bool) {
	t := GenerationType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range GenerationTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// GenerationStatus enumerates job lifecycle states.
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "PENDING"
	StatusProcessing GenerationStatus = "PROCESSING"
	StatusCompleted  GenerationStatus = "COMPLETED"
	StatusFailed     GenerationStatus = "FAILED"
)

// ParseGenerationStatus normalizes s and reports whether it names a known status.
func ParseGenerationStatus(s string) (GenerationStatus, bool) {
	st := GenerationStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return st, true
	}
	return "", false
}

// Terminal reports whether no further transition is allowed out of s.
func (s GenerationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Generation is one request to turn a prompt into a media artifact via an
// external provider.
type Generation struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	Type         GenerationType   `json:"type"`
	Model        string           `json:"model"`
	Prompt       string           `json:"prompt"`
	Settings     json.RawMessage  `json:"settings,omitempty"`
	Status       GenerationStatus `json:"status"`
	OutputURL    *string          `json:"outputUrl"`
	ErrorMessage *string          `json:"errorMessage"`
	SceneID      *string          `json:"sceneId"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	CompletedAt  *time.Time       `json:"completedAt"`
}

// StatusChange carries the columns written by a status transition.
type StatusChange struct {
	Status       GenerationStatus
	OutputURL    *string
	ErrorMessage *string
	CompletedAt  *time.Time
}
