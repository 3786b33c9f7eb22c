package generation

import "filmflow/internal/domain"

var transitions = map[domain.GenerationStatus][]domain.GenerationStatus{
	domain.StatusPending:    {domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed},
	domain.StatusProcessing: {domain.StatusCompleted, domain.StatusFailed},
}

// CanTransition reports whether a job may move from one status to another.
// Terminal statuses allow nothing.
func CanTransition(from, to domain.GenerationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
