package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"filmflow/internal/domain"
)

func TestBuildScenePromptOrder(t *testing.T) {
	scene := domain.Scene{
		Description: "A dramatic scene",
		Location:    "Living room",
		TimeOfDay:   "Evening",
		Mood:        "Tense",
	}

	got := BuildScenePrompt(scene, nil, "")

	want := "A dramatic scene. Location: Living room. Time: Evening. Mood: Tense, cinematic, dramatic lighting. " + QualitySuffix
	assert.Equal(t, want, got)

	last := -1
	for _, part := range []string{"A dramatic scene", "Living room", "Evening", "Tense", QualitySuffix} {
		idx := strings.Index(got, part)
		assert.Greater(t, idx, last, "part %q out of order", part)
		last = idx
	}
	assert.True(t, strings.HasSuffix(got, QualitySuffix))
}

func TestBuildScenePromptSkipsEmptyFields(t *testing.T) {
	tests := []struct {
		name   string
		scene  domain.Scene
		camera string
		want   string
	}{
		{
			name:  "no location",
			scene: domain.Scene{Description: "A dramatic scene", TimeOfDay: "Evening"},
			want:  "A dramatic scene. Time: Evening. " + QualitySuffix,
		},
		{
			name:  "whitespace fields",
			scene: domain.Scene{Description: "  ", Location: "Kitchen", Mood: " "},
			want:  "Location: Kitchen. " + QualitySuffix,
		},
		{
			name: "empty scene",
			want: QualitySuffix,
		},
		{
			name:   "camera only",
			camera: "slow dolly in",
			want:   "Camera: slow dolly in. " + QualitySuffix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildScenePrompt(tt.scene, nil, tt.camera)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, ". . ")
			assert.NotContains(t, got, "..")
		})
	}
}

func TestBuildScenePromptActors(t *testing.T) {
	scene := domain.Scene{Description: "Kitchen argument"}
	actors := []domain.Actor{
		{Name: "Ján", Age: 45, Gender: "muž", Description: "Middle-aged man"},
		{Name: "Eva", Gender: "žena"},
	}

	got := BuildScenePrompt(scene, actors, "handheld")

	assert.Equal(t, "Kitchen argument. Characters: Ján, 45 years old, muž, Middle-aged man; Eva, žena. Camera: handheld. "+QualitySuffix, got)
	assert.Contains(t, got, "Ján, 45")
}

func TestBuildScenePromptIgnoresBlankActors(t *testing.T) {
	got := BuildScenePrompt(domain.Scene{Description: "Empty stage"}, []domain.Actor{{}}, "")
	assert.Equal(t, "Empty stage. "+QualitySuffix, got)
}
