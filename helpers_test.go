package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOr(t *testing.T) {
	t.Run("set variable wins", func(t *testing.T) {
		t.Setenv("TOPICBOARD_TEST_KEY", "from-env")
		assert.Equal(t, "from-env", envOr("TOPICBOARD_TEST_KEY", "fallback"))
	})

	t.Run("unset variable falls back", func(t *testing.T) {
		assert.Equal(t, "fallback", envOr("TOPICBOARD_TEST_MISSING", "fallback"))
	})

	t.Run("empty but set variable wins over the fallback", func(t *testing.T) {
		t.Setenv("TOPICBOARD_TEST_EMPTY", "")
		assert.Equal(t, "", envOr("TOPICBOARD_TEST_EMPTY", "fallback"))
	})
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 30, 5, 0, time.UTC)
	assert.Equal(t, "2025-06-01 09:30:05", formatTimestamp(ts))
}

func TestSetupTemplates(t *testing.T) {
	tmpls := setupTemplates()
	require.NotNil(t, tmpls)
	assert.NotNil(t, tmpls.Lookup("topics.html"))
}
