package generation

import (
	"strings"

	"filmflow/internal/domain"
)

// Model describes one provider model a job can be routed to.
type Model struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Type      domain.GenerationType `json:"type"`
	Price     string                `json:"price"`
	Speed     string                `json:"speed"`
	Quality   string                `json:"quality"`
	MinPlan   domain.UserPlan       `json:"minPlan"`
	Default   bool                  `json:"default,omitempty"`
	// CostCents is the compute budget a single run consumes.
	CostCents int64 `json:"costCents"`
}

var models = []Model{
	{ID: "higgsfield/soul", Name: "Higgsfield Soul", Type: domain.GenerationImage, Price: "$0.05", Speed: "fast", Quality: "standard", MinPlan: domain.UserPlanFree, Default: true, CostCents: 5},
	{ID: "bytedance/seedream/v4/text-to-image", Name: "Seedream 4.0", Type: domain.GenerationImage, Price: "$0.058", Speed: "medium", Quality: "high", MinPlan: domain.UserPlanIndie, CostCents: 6},
	{ID: "flux/kontext", Name: "Flux Kontext", Type: domain.GenerationImage, Price: "$0.08", Speed: "medium", Quality: "high", MinPlan: domain.UserPlanIndie, CostCents: 8},

	{ID: "minimax/hailuo-02", Name: "MiniMax Hailuo", Type: domain.GenerationVideo, Price: "$0.20", Speed: "fast", Quality: "standard", MinPlan: domain.UserPlanFree, Default: true, CostCents: 20},
	{ID: "kuaishou/kling-2.6", Name: "Kling 2.6", Type: domain.GenerationVideo, Price: "$0.29", Speed: "medium", Quality: "high", MinPlan: domain.UserPlanIndie, CostCents: 29},
	{ID: "higgsfield/dop-i2v", Name: "Higgsfield DoP", Type: domain.GenerationVideo, Price: "$0.30", Speed: "medium", Quality: "high", MinPlan: domain.UserPlanIndie, CostCents: 30},

	{ID: "elevenlabs/flash-v2.5", Name: "ElevenLabs Flash", Type: domain.GenerationAudio, Price: "0.5 cr/char", Speed: "fast", Quality: "high", MinPlan: domain.UserPlanFree, Default: true, CostCents: 1},
	{ID: "elevenlabs/multilingual-v2", Name: "ElevenLabs Multilingual", Type: domain.GenerationAudio, Price: "1 cr/char", Speed: "medium", Quality: "premium", MinPlan: domain.UserPlanIndie, CostCents: 2},

	{ID: "suno/v4", Name: "Suno V4", Type: domain.GenerationMusic, Price: "10 cr", Speed: "medium", Quality: "high", MinPlan: domain.UserPlanFree, Default: true, CostCents: 4},
}

// Models returns the catalog in display order.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// LookupModel finds a model by id.
func LookupModel(id string) (Model, bool) {
	id = strings.TrimSpace(id)
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// DefaultModel returns the default model for typ.
func DefaultModel(typ domain.GenerationType) (Model, bool) {
	for _, m := range models {
		if m.Type == typ && m.Default {
			return m, true
		}
	}
	return Model{}, false
}

// ServiceFor maps a generation type to the quota service it consumes.
func ServiceFor(typ domain.GenerationType) domain.QuotaService {
	switch typ {
	case domain.GenerationAudio:
		return domain.ServiceElevenLabs
	case domain.GenerationMusic:
		return domain.ServiceSuno
	default:
		return domain.ServiceHiggsfield
	}
}

func resolveModel(typ domain.GenerationType, id string, plan domain.UserPlan) (Model, error) {
	if strings.TrimSpace(id) == "" {
		m, ok := DefaultModel(typ)
		if !ok {
			return Model{}, domain.NewValidationError("model", "no default model for "+string(typ))
		}
		return m, nil
	}
	m, ok := LookupModel(id)
	if !ok {
		return Model{}, domain.NewValidationError("model", "unknown model "+id)
	}
	if m.Type != typ {
		return Model{}, domain.NewValidationError("model", "model "+id+" does not produce "+string(typ))
	}
	if !plan.Includes(m.MinPlan) {
		return Model{}, domain.NewValidationError("model", "model "+id+" requires plan "+string(m.MinPlan))
	}
	return m, nil
}
