package domain

import "strings"

// QuotaService names an external service whose consumption is rate limited.
type QuotaService string

const (
	ServiceHiggsfield QuotaService = "higgsfield"
	ServiceElevenLabs QuotaService = "elevenlabs"
	ServiceSuno       QuotaService = "suno"
	ServiceModal      QuotaService = "modal"
)

// ParseQuotaService normalizes s; unknown names are returned unchanged and
// rejected later by the limit table.
func ParseQuotaService(s string) QuotaService {
	return QuotaService(strings.ToLower(strings.TrimSpace(s)))
}

// Cadence is how often a service's counter starts over.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceMonthly Cadence = "monthly"
)

// UsageKey identifies exactly one counter.
type UsageKey struct {
	UserID  string
	Service QuotaService
	Period  string
}

// UsageCounter is the accumulated consumption of one service by one user in
// one period bucket.
type UsageCounter struct {
	UsageKey
	Count int64
}
