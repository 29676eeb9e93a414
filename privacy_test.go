package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"typical email", "user@example.com", "u***@example.com"},
		{"short local part", "ab@example.com", "***@example.com"},
		{"single char local part", "a@example.com", "***@example.com"},
		{"empty string", "", ""},
		{"not an email", "garbage", "***"},
		{"multiple at signs", "a@b@c", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskEmail(tt.email))
		})
	}
}

func TestHashEmail(t *testing.T) {
	t.Run("stable for the same input", func(t *testing.T) {
		assert.Equal(t, hashEmail("user@example.com"), hashEmail("user@example.com"))
	})

	t.Run("distinct for distinct inputs", func(t *testing.T) {
		assert.NotEqual(t, hashEmail("user@example.com"), hashEmail("other@example.com"))
	})

	t.Run("short fixed length", func(t *testing.T) {
		assert.Len(t, hashEmail("user@example.com"), 8)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Equal(t, "", hashEmail(""))
	})

	t.Run("never contains the raw address", func(t *testing.T) {
		assert.NotContains(t, hashEmail("user@example.com"), "user")
	})
}
