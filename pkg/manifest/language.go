package manifest

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when a requested language cannot be matched.
const DefaultLanguage = "en"

type locale struct {
	code string
	tag  language.Tag
}

// Order matters: the first entry is the matcher's fallback.
var locales = []locale{
	{"en", language.English},
	{"de", language.German},
	{"es", language.Spanish},
	{"es-mx", language.MustParse("es-MX")},
	{"fr", language.French},
	{"it", language.Italian},
	{"ja", language.Japanese},
	{"ko", language.Korean},
	{"pl", language.Polish},
	{"pt-br", language.BrazilianPortuguese},
	{"ru", language.Russian},
	{"zh-chs", language.SimplifiedChinese},
	{"zh-cht", language.TraditionalChinese},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// Languages returns the manifest language codes this build knows about.
func Languages() []string {
	codes := make([]string, len(locales))
	for i, l := range locales {
		codes[i] = l.code
	}
	return codes
}

// ResolveLanguage maps user input ("pt-BR", "zh-CN", "es-mx", "debug") to a
// manifest language code.
func ResolveLanguage(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "debug" {
		return DefaultLanguage
	}
	for _, l := range locales {
		if l.code == value {
			return l.code
		}
	}

	tag, err := language.Parse(value)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	return locales[idx].code
}
