package generation

import (
	"strconv"
	"strings"

	"filmflow/internal/domain"
)

// QualitySuffix is appended to every scene prompt.
const QualitySuffix = "high quality, 4K, cinematic film still, professional lighting, Slovak drama"

// BuildScenePrompt renders a provider-agnostic image prompt from a scene.
// Parts appear in a fixed order and empty fields are skipped:
// description, location, time, mood, characters, camera, quality suffix.
// Parts are joined with ". ".
func BuildScenePrompt(scene domain.Scene, actors []domain.Actor, cameraMovement string) string {
	parts := make([]string, 0, 7)

	if v := strings.TrimSpace(scene.Description); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(scene.Location); v != "" {
		parts = append(parts, "Location: "+v)
	}
	if v := strings.TrimSpace(scene.TimeOfDay); v != "" {
		parts = append(parts, "Time: "+v)
	}
	if v := strings.TrimSpace(scene.Mood); v != "" {
		parts = append(parts, "Mood: "+v+", cinematic, dramatic lighting")
	}

	if len(actors) > 0 {
		described := make([]string, 0, len(actors))
		for _, a := range actors {
			if d := describeActor(a); d != "" {
				described = append(described, d)
			}
		}
		if len(described) > 0 {
			parts = append(parts, "Characters: "+strings.Join(described, "; "))
		}
	}

	if v := strings.TrimSpace(cameraMovement); v != "" {
		parts = append(parts, "Camera: "+v)
	}

	parts = append(parts, QualitySuffix)
	return strings.Join(parts, ". ")
}

func describeActor(a domain.Actor) string {
	fields := make([]string, 0, 4)
	if v := strings.TrimSpace(a.Name); v != "" {
		fields = append(fields, v)
	}
	if a.Age > 0 {
		fields = append(fields, strconv.Itoa(a.Age)+" years old")
	}
	if v := strings.TrimSpace(a.Gender); v != "" {
		fields = append(fields, v)
	}
	if v := strings.TrimSpace(a.Description); v != "" {
		fields = append(fields, v)
	}
	return strings.Join(fields, ", ")
}
