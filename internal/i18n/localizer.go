package i18n

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"filmflow/internal/domain"
)

// Match maps a locale string or Accept-Language value to a supported locale
// code. Empty or unsupported input yields fallback when it is supported,
// otherwise "sk".
func Match(locale, fallback string) string {
	if tag, ok := match(locale); ok {
		return base(tag)
	}
	if tag, ok := match(fallback); ok {
		return base(tag)
	}
	return base(Slovak)
}

func match(locale string) (language.Tag, bool) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.Und, false
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return language.Und, false
	}
	tag, _, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Und, false
	}
	return tag, true
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}

// Localizer renders messages in one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// For returns a Localizer for locale, defaulting to Slovak.
func For(locale string) *Localizer {
	tag, ok := match(locale)
	if !ok {
		tag = Slovak
	}
	// the matcher may hand back a regional variant; the catalog is keyed by base
	if b := base(tag); b == "en" {
		tag = English
	} else {
		tag = Slovak
	}
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(messages))}
}

// Locale returns the locale code, "sk" or "en".
func (l *Localizer) Locale() string { return base(l.tag) }

// T renders message key with args.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Unit returns the localized unit name of a quota service.
func (l *Localizer) Unit(service domain.QuotaService) string {
	if _, ok := units[string(service)]; !ok {
		return string(service)
	}
	return l.printer.Sprintf("unit." + string(service))
}

// QuotaExceeded explains a denied admission with the limit, the remaining
// amount and when the counter resets.
func (l *Localizer) QuotaExceeded(e *domain.QuotaExceededError) string {
	key := msgQuotaDaily
	if e.Cadence == domain.CadenceMonthly {
		key = msgQuotaMonthly
	}
	// plain digits, the printer would group them by locale
	return l.printer.Sprintf(key, strconv.FormatInt(e.Limit, 10), l.Unit(e.Service), strconv.FormatInt(e.Remaining, 10))
}

// UntilReset renders the time left until resetAt as days, hours and minutes,
// or minutes only. Past instants render as zero minutes.
func (l *Localizer) UntilReset(resetAt, now time.Time) string {
	diff := resetAt.Sub(now)
	if diff < 0 {
		diff = 0
	}
	hours := int(diff / time.Hour)
	minutes := int((diff % time.Hour) / time.Minute)

	switch {
	case hours > 24:
		return l.printer.Sprintf(msgUntilDays, hours/24)
	case hours > 0:
		return l.printer.Sprintf(msgUntilHours, hours, minutes)
	default:
		return l.printer.Sprintf(msgUntilMinutes, minutes)
	}
}

// FormatUntilReset is UntilReset for a locale string.
func FormatUntilReset(locale string, resetAt, now time.Time) string {
	return For(locale).UntilReset(resetAt, now)
}
