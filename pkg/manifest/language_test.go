package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "en"},
		{"debug", "en"},
		{"en", "en"},
		{"EN", "en"},
		{"es-mx", "es-mx"},
		{"es-MX", "es-mx"},
		{"pt-BR", "pt-br"},
		{"zh-chs", "zh-chs"},
		{"zh-CN", "zh-chs"},
		{"zh-TW", "zh-cht"},
		{"de-DE", "de"},
		{"not a tag!", "en"},
		{"sw", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLanguage(tt.input))
		})
	}
}

func TestLanguagesStartsWithDefault(t *testing.T) {
	langs := Languages()
	assert.Equal(t, DefaultLanguage, langs[0])
	assert.Contains(t, langs, "zh-cht")
	assert.Len(t, langs, 13)
}
