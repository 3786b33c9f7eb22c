package handlers

import (
	"net/http"
	"strings"

	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/i18n"
)

const storyboardEstimatedTime = "30-60 seconds"

type storyboardRequest struct {
	SceneID        *string  `json:"sceneId"`
	Prompt         string   `json:"prompt"`
	Model          string   `json:"model"`
	Resolution     string   `json:"resolution"`
	AspectRatio    string   `json:"aspectRatio"`
	ActorIDs       []string `json:"actorIds"`
	CameraMovement string   `json:"cameraMovement"`
}

type storyboardResponse struct {
	GenerationID  string                  `json:"generationId"`
	Status        domain.GenerationStatus `json:"status"`
	Prompt        string                  `json:"prompt"`
	Model         string                  `json:"model"`
	EstimatedTime string                  `json:"estimatedTime"`
}

// GenerateStoryboard queues an IMAGE job whose prompt is built from one of
// the caller's scenes. Without a scene the supplied prompt is used as is.
func (a *App) GenerateStoryboard(w http.ResponseWriter, r *http.Request) {
	id, ok := a.currentIdentity(r)
	if !ok {
		a.error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
		return
	}
	var req storyboardRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeDomainError(w, r, err, "GENERATION_FAILED")
		return
	}

	sceneID, err := parseSceneID(req.SceneID)
	if err != nil {
		a.writeDomainError(w, r, err, "GENERATION_FAILED")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if sceneID != nil {
		scene, err := a.Scenes.GetForUser(r.Context(), *sceneID, id.UserID)
		if err != nil {
			a.writeDomainError(w, r, domain.Persistence("scene.get", err), "GENERATION_FAILED")
			return
		}
		prompt = generation.BuildScenePrompt(*scene, scene.Actors, req.CameraMovement)
	}

	var actorRefs []string
	if len(req.ActorIDs) > 0 {
		actorRefs, err = a.Scenes.ActorImageURLs(r.Context(), id.UserID, req.ActorIDs)
		if err != nil {
			a.writeDomainError(w, r, domain.Persistence("actor.images", err), "GENERATION_FAILED")
			return
		}
	}

	settings, err := generation.EncodeSettings(&generation.ImageSettings{
		Resolution:  req.Resolution,
		AspectRatio: req.AspectRatio,
		ActorRefs:   actorRefs,
	})
	if err != nil {
		a.writeDomainError(w, r, err, "GENERATION_FAILED")
		return
	}

	job, err := a.admit(r.Context(), generation.CreateRequest{
		UserID:   id.UserID,
		Plan:     id.Plan,
		Type:     domain.GenerationImage,
		Model:    req.Model,
		Prompt:   prompt,
		Settings: settings,
		SceneID:  sceneID,
	})
	if err != nil {
		a.writeDomainError(w, r, err, "GENERATION_FAILED")
		return
	}
	a.json(w, http.StatusCreated, storyboardResponse{
		GenerationID:  job.ID,
		Status:        job.Status,
		Prompt:        job.Prompt,
		Model:         job.Model,
		EstimatedTime: storyboardEstimatedTime,
	})
}
