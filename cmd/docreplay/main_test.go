package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cozy/substance-go/codec"
	"github.com/cozy/substance-go/internal/config"
	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/test/builder"
	"github.com/cozy/substance-go/transform"
)

// fixtures writes a seed and a change log appending "!" to the first
// paragraph, in the given format.
func fixtures(t *testing.T, format string) *config.Config {
	t.Helper()
	c, err := codec.New(format)
	require.NoError(t, err)
	dir := t.TempDir()

	doc := builder.Article()
	seed, err := codec.EncodeSnapshot(c, doc.ToJSON())
	require.NoError(t, err)
	seedPath := filepath.Join(dir, "seed."+format)
	require.NoError(t, os.WriteFile(seedPath, seed, 0o600))

	_, err = doc.Transaction(nil, nil, func(tx *transform.Transaction) (transform.State, error) {
		return nil, transform.InsertText(tx, model.Path{"p1", "content"}, 11, "!")
	})
	require.NoError(t, err)
	changes, err := codec.EncodeChanges(c, doc.Done())
	require.NoError(t, err)
	changesPath := filepath.Join(dir, "changes."+format)
	require.NoError(t, os.WriteFile(changesPath, changes, 0o600))

	cfg := config.Default()
	cfg.Format = format
	cfg.SeedPath = seedPath
	cfg.ChangesPath = changesPath
	return cfg
}

func replay(t *testing.T, cfg *config.Config, undo, redo int) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(cfg, zap.NewNop(), undo, redo, &out))
	return out.String()
}

func TestRun(t *testing.T) {
	for _, format := range []string{codec.FormatJSON, codec.FormatCBOR} {
		cfg := fixtures(t, format)

		cfg.Export = "html"
		assert.Equal(t, `<h1>Title</h1><p><strong>Hello</strong> <a href="foo">world</a>!</p><p>Second <em>paragraph</em></p>`+"\n",
			replay(t, cfg, 0, 0), format)

		cfg.Export = "markdown"
		assert.Equal(t, "# Title\n\n**Hello** [world](foo)!\n\nSecond *paragraph*\n", replay(t, cfg, 0, 0), format)

		// undo the change log, then redo it
		assert.Equal(t, "# Title\n\n**Hello** [world](foo)\n\nSecond *paragraph*\n", replay(t, cfg, 1, 0), format)
		assert.Equal(t, "# Title\n\n**Hello** [world](foo)!\n\nSecond *paragraph*\n", replay(t, cfg, 1, 1), format)

		cfg.Export = "json"
		var snap map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(replay(t, cfg, 0, 0)), &snap))
		nodes, _ := snap["nodes"].(map[string]interface{})
		p1, _ := nodes["p1"].(map[string]interface{})
		assert.Equal(t, "Hello world!", p1["content"])

		cfg.Export = "notion"
		var blocks []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(replay(t, cfg, 0, 0)), &blocks))
		assert.Len(t, blocks, 3)
	}
}

func TestRunMarkdownSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\n* one\n* two"), 0o600))
	cfg := config.Default()
	cfg.SeedPath = path
	assert.Equal(t, "<h1>Notes</h1><ul><li>one</li><li>two</li></ul>\n", replay(t, cfg, 0, 0))
}

func TestRunErrors(t *testing.T) {
	cfg := fixtures(t, codec.FormatJSON)

	bad := *cfg
	bad.Container = "missing"
	assert.ErrorIs(t, run(&bad, zap.NewNop(), 0, 0, &bytes.Buffer{}), model.ErrNodeNotFound)

	bad = *cfg
	bad.SeedPath = filepath.Join(t.TempDir(), "missing.json")
	err := run(&bad, zap.NewNop(), 0, 0, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "reading seed"), err.Error())

	// the json seed read as cbor
	bad = *cfg
	bad.Format = codec.FormatCBOR
	assert.Error(t, run(&bad, zap.NewNop(), 0, 0, &bytes.Buffer{}))

	bad = *cfg
	bad.Export = "pdf"
	assert.ErrorContains(t, run(&bad, zap.NewNop(), 0, 0, &bytes.Buffer{}), `unknown export format "pdf"`)
}
