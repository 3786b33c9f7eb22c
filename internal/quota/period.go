package quota

import (
	"time"

	"filmflow/internal/domain"
)

// ReferenceLocation is the timezone period buckets are computed in.
var ReferenceLocation = time.UTC

// PeriodKey returns the bucket key for service at now: YYYY-MM-DD for daily
// services, YYYY-MM for monthly ones.
func PeriodKey(service domain.QuotaService, now time.Time) (string, error) {
	l, err := lookup(service)
	if err != nil {
		return "", err
	}
	return periodKey(l.Cadence, now), nil
}

// ResetTime returns the first instant of the bucket following now.
func ResetTime(service domain.QuotaService, now time.Time) (time.Time, error) {
	l, err := lookup(service)
	if err != nil {
		return time.Time{}, err
	}
	return resetTime(l.Cadence, now), nil
}

func periodKey(c domain.Cadence, now time.Time) string {
	now = now.In(ReferenceLocation)
	if c == domain.CadenceMonthly {
		return now.Format("2006-01")
	}
	return now.Format("2006-01-02")
}

func resetTime(c domain.Cadence, now time.Time) time.Time {
	now = now.In(ReferenceLocation)
	if c == domain.CadenceMonthly {
		return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, ReferenceLocation)
	}
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, ReferenceLocation)
}
