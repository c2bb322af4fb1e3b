package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasGeminiKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{GeminiKeyPlaceholder, false},
		{"AIzaSyRealLookingKey", true},
	}

	for _, tc := range tests {
		cfg := &Config{GeminiAPIKey: tc.key}
		assert.Equal(t, tc.want, cfg.HasGeminiKey(), "key %q", tc.key)
	}
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.True(t, (&Config{Environment: " Production "}).IsProduction())
	assert.False(t, (&Config{Environment: "development"}).IsProduction())
	assert.False(t, (&Config{}).IsProduction())
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t,
		[]string{"https://app.nutrimate.fit", "http://localhost:3000"},
		parseOrigins(" https://app.nutrimate.fit , http://localhost:3000 ,"))
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}
