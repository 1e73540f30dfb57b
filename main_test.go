package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/theme"
)

func TestThemesCMD(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		cmd := themesCMD()
		cmd.SetOut(&out)
		cmd.SetArgs(nil)

		require.NoError(t, cmd.Execute())
		for _, name := range theme.Names() {
			assert.Contains(t, out.String(), name)
		}
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		cmd := themesCMD()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--json"})

		require.NoError(t, cmd.Execute())
		var defs []theme.Definition
		require.NoError(t, json.Unmarshal(out.Bytes(), &defs))
		assert.Len(t, defs, len(theme.Names()))
	})
}

func TestGenerateCMD_MockProvider(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SLIDEDECK_LLM_PROVIDER", "mock")
	t.Setenv("SLIDEDECK_LOG_LEVEL", "error")

	cfgPath := ""
	var out bytes.Buffer
	cmd := generateCMD(&cfgPath)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--topic", "Machine learning in hospitals", "--slides", "4", "--out", "decks/ml.pptx"})

	require.NoError(t, cmd.Execute())

	info, err := os.Stat(filepath.Join(dir, "decks", "ml.pptx"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Contains(t, out.String(), "theme=")
}

func TestGenerateCMD_RequiresInput(t *testing.T) {
	cfgPath := ""
	cmd := generateCMD(&cfgPath)
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestNewService_MissingKeyKeepsServiceUp(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SLIDEDECK_LOG_LEVEL", "error")

	cfg, logger, err := loadConfig("")
	require.NoError(t, err)

	svc, err := newService(cfg, nil, logger)
	require.NoError(t, err)

	var cfgErr *generator.ConfigurationError
	assert.ErrorAs(t, svc.Available(), &cfgErr)
	_, err = svc.Build(context.Background(), generator.Spec{Text: "A topic long enough to pass"})
	assert.ErrorAs(t, err, &cfgErr)
}
