// Package quota tracks free-tier consumption of external generation services.
//
// Counters are keyed by user, service and period bucket. The limit table is
// static configuration: it is not mutable at runtime.
package quota

import "filmflow/internal/domain"

// Limit is one row of the static free-tier table.
type Limit struct {
	Service domain.QuotaService
	Max     int64
	Cadence domain.Cadence
	// Unit is the Slovak unit label shown next to counts.
	Unit string
}

var limits = []Limit{
	{Service: domain.ServiceHiggsfield, Max: 5, Cadence: domain.CadenceDaily, Unit: "generácií"},
	{Service: domain.ServiceElevenLabs, Max: 10000, Cadence: domain.CadenceMonthly, Unit: "znakov"},
	{Service: domain.ServiceSuno, Max: 50, Cadence: domain.CadenceDaily, Unit: "kreditov"},
	// $30 of compute, in cents
	{Service: domain.ServiceModal, Max: 3000, Cadence: domain.CadenceMonthly, Unit: "centov"},
}

// Limits returns a copy of the limit table in display order.
func Limits() []Limit {
	out := make([]Limit, len(limits))
	copy(out, limits)
	return out
}

// LimitFor returns the table row for service.
func LimitFor(service domain.QuotaService) (Limit, bool) {
	for _, l := range limits {
		if l.Service == service {
			return l, true
		}
	}
	return Limit{}, false
}

func lookup(service domain.QuotaService) (Limit, error) {
	l, ok := LimitFor(service)
	if !ok {
		return Limit{}, domain.NewValidationError("service", "unknown service "+string(service))
	}
	return l, nil
}
