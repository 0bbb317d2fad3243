package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{language.English, language.Arabic}

// Translator renders catalogue keys in the best supported language.
type Translator struct {
	fallback language.Tag
	matcher  language.Matcher
	cat      *catalog.Builder
}

// New builds a translator whose default language is locale. Unknown locales
// fall back to English.
func New(locale string) *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		_ = b.SetString(language.English, key, msg)
	}
	for key, msg := range arabic {
		_ = b.SetString(language.Arabic, key, msg)
	}

	t := &Translator{
		matcher: language.NewMatcher(supported),
		cat:     b,
	}
	t.fallback = t.Match(locale)
	return t
}

// Match picks the supported language closest to an Accept-Language value.
func (t *Translator) Match(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		if t.fallback != language.Und {
			return t.fallback
		}
		return language.English
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		if t.fallback != language.Und {
			return t.fallback
		}
		return language.English
	}
	return supported[idx]
}

func (t *Translator) Default() language.Tag { return t.fallback }

// Sprintf formats key in tag. A key missing from the catalogue is used as
// the format string itself.
func (t *Translator) Sprintf(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag, message.Catalog(t.cat)).Sprintf(key, args...)
}
