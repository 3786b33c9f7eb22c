// Package i18n holds the user facing messages of the API in Slovak and
// English.
package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgUnauthorized      = "error.unauthorized"
	MsgValidation        = "error.validation"
	MsgGenerationFailed  = "error.generation_failed"
	MsgInternal          = "error.internal"
	MsgNotFound          = "error.not_found"
	MsgInvalidTransition = "error.invalid_transition"
	MsgRateLimited       = "error.rate_limited"
	MsgRetryLater        = "error.retry_later"
	MsgProviderFailure   = "error.provider_failure"
	MsgComputeBudget     = "error.compute_budget"

	msgQuotaDaily   = "quota.exceeded.daily"
	msgQuotaMonthly = "quota.exceeded.monthly"
	msgUntilDays    = "until.days"
	msgUntilHours   = "until.hours"
	msgUntilMinutes = "until.minutes"
)

var (
	Slovak  = language.Slovak
	English = language.English

	supported = []language.Tag{Slovak, English}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

type entry struct {
	key string
	sk  string
	en  string
}

var plain = []entry{
	{MsgUnauthorized, "Nie ste prihlásený", "You are not signed in"},
	{MsgValidation, "Neplatné údaje", "Invalid data"},
	{MsgGenerationFailed, "Nepodarilo sa vytvoriť generáciu", "Could not create generation"},
	{MsgInternal, "Interná chyba servera", "Internal server error"},
	{MsgNotFound, "Záznam sa nenašiel", "Not found"},
	{MsgInvalidTransition, "Neplatná zmena stavu generácie", "Invalid generation status change"},
	{MsgRateLimited, "Príliš veľa požiadaviek, skúste to o chvíľu", "Too many requests, try again shortly"},
	{MsgRetryLater, "Služba je dočasne nedostupná, skúste to znova", "Service temporarily unavailable, please try again"},
	{MsgProviderFailure, "Generovanie zlyhalo, skúste to znova", "Generation failed, please try again"},
	{MsgComputeBudget, "Vyčerpali ste mesačný rozpočet na výpočty", "Monthly compute budget exhausted"},
	{msgQuotaDaily,
		"Dosiahli ste denný limit %[1]s %[2]s. Zostáva: %[3]s. Limit sa obnoví o polnoci.",
		"You have reached the daily limit of %[1]s %[2]s. Remaining: %[3]s. The limit resets at midnight."},
	{msgQuotaMonthly,
		"Dosiahli ste mesačný limit %[1]s %[2]s. Zostáva: %[3]s. Limit sa obnoví na začiatku mesiaca.",
		"You have reached the monthly limit of %[1]s %[2]s. Remaining: %[3]s. The limit resets at the start of next month."},
	{msgUntilHours, "%dh %dm", "%dh %dm"},
}

var units = map[string][2]string{
	"higgsfield": {"generácií", "generations"},
	"elevenlabs": {"znakov", "characters"},
	"suno":       {"kreditov", "credits"},
	"modal":      {"centov", "cents"},
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Slovak))
	for _, e := range plain {
		must(b.SetString(Slovak, e.key, e.sk))
		must(b.SetString(English, e.key, e.en))
	}
	for service, names := range units {
		must(b.SetString(Slovak, "unit."+service, names[0]))
		must(b.SetString(English, "unit."+service, names[1]))
	}

	must(b.Set(Slovak, msgUntilDays, plural.Selectf(1, "%d",
		"=1", "%d deň",
		"few", "%d dni",
		"other", "%d dní",
	)))
	must(b.Set(English, msgUntilDays, plural.Selectf(1, "%d",
		"=1", "%d day",
		"other", "%d days",
	)))
	must(b.Set(Slovak, msgUntilMinutes, plural.Selectf(1, "%d",
		"=1", "%d minúta",
		"few", "%d minúty",
		"other", "%d minút",
	)))
	must(b.Set(English, msgUntilMinutes, plural.Selectf(1, "%d",
		"=1", "%d minute",
		"other", "%d minutes",
	)))
	return b
}

func must(err error) {
	if err != nil {
		panic("i18n: " + err.Error())
	}
}
