package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt(t *testing.T) {
	vars := map[string]any{"BotName": "relay", "Model": "gpt-4.1-mini"}

	t.Run("passthrough without markers", func(t *testing.T) {
		out, err := RenderPrompt("plain prompt", vars)
		require.NoError(t, err)
		assert.Equal(t, "plain prompt", out)
	})

	t.Run("substitutes variables", func(t *testing.T) {
		out, err := RenderPrompt("You are {{.BotName}} running {{.Model}}.", vars)
		require.NoError(t, err)
		assert.Equal(t, "You are relay running gpt-4.1-mini.", out)
	})

	t.Run("helper funcs", func(t *testing.T) {
		out, err := RenderPrompt("{{upper .BotName}}", vars)
		require.NoError(t, err)
		assert.Equal(t, "RELAY", out)
	})

	t.Run("unknown variable errors", func(t *testing.T) {
		_, err := RenderPrompt("{{.Missing}}", vars)
		assert.Error(t, err)
	})

	t.Run("parse error surfaces", func(t *testing.T) {
		_, err := RenderPrompt("{{.Broken", vars)
		assert.Error(t, err)
	})
}
