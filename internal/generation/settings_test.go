package generation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmflow/internal/domain"
)

func TestDecodeSettingsDefaults(t *testing.T) {
	tests := []struct {
		typ  domain.GenerationType
		raw  string
		want Settings
	}{
		{domain.GenerationImage, ``, &ImageSettings{Resolution: "2K", AspectRatio: "16:9"}},
		{domain.GenerationImage, `null`, &ImageSettings{Resolution: "2K", AspectRatio: "16:9"}},
		{domain.GenerationVideo, `{}`, &VideoSettings{Duration: 5, AspectRatio: "16:9"}},
		{domain.GenerationAudio, `{"language":" EN "}`, &AudioSettings{Language: "en"}},
		{domain.GenerationMusic, `{"instrumental":true}`, &MusicSettings{DurationSeconds: 60, Instrumental: true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+tt.raw, func(t *testing.T) {
			got, err := DecodeSettings(tt.typ, json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.typ, got.Type())
		})
	}
}

func TestDecodeSettingsRejects(t *testing.T) {
	tests := []struct {
		name string
		typ  domain.GenerationType
		raw  string
	}{
		{"aspect", domain.GenerationImage, `{"aspectRatio":"21:9"}`},
		{"actor ref", domain.GenerationImage, `{"actorRefs":["not a url"]}`},
		{"too many refs", domain.GenerationImage, `{"actorRefs":["https://a/1","https://a/2","https://a/3","https://a/4","https://a/5"]}`},
		{"video too long", domain.GenerationVideo, `{"duration":12}`},
		{"video image", domain.GenerationVideo, `{"imageUrl":"ftp://x"}`},
		{"music too short", domain.GenerationMusic, `{"durationSeconds":5}`},
		{"wrong shape", domain.GenerationAudio, `[1,2]`},
		{"unknown type", "HOLOGRAM", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSettings(tt.typ, json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestEncodeSettingsRoundTripsStoredShape(t *testing.T) {
	raw, err := EncodeSettings(&ImageSettings{Resolution: "4K", AspectRatio: "1:1", ActorRefs: []string{"https://cdn/a.png"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"resolution":"4K","aspectRatio":"1:1","actorRefs":["https://cdn/a.png"]}`, string(raw))

	raw, err = EncodeSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))
}

func TestModelsCatalog(t *testing.T) {
	for _, typ := range domain.GenerationTypes {
		m, ok := DefaultModel(typ)
		require.True(t, ok, "default for %s", typ)
		assert.Equal(t, domain.UserPlanFree, m.MinPlan)
		assert.Positive(t, m.CostCents)
	}

	m, ok := LookupModel("flux/kontext")
	require.True(t, ok)
	assert.Equal(t, domain.UserPlanIndie, m.MinPlan)

	_, ok = LookupModel("missing")
	assert.False(t, ok)
}
