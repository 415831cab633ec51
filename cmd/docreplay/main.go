// docreplay loads a document from a seed, replays a change log on it, and
// exports the result.
//
// Usage:
//
//	docreplay [-config docreplay.yaml] [-undo n] [-redo n]
//
// The seed, the change log and the export format are read from the
// configuration file and the DOC_* environment variables. A seed with the
// .md extension is parsed as markdown.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/cozy/substance-go/codec"
	"github.com/cozy/substance-go/document"
	"github.com/cozy/substance-go/dom"
	"github.com/cozy/substance-go/internal/config"
	"github.com/cozy/substance-go/markdown"
	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/notion"
	"github.com/cozy/substance-go/schema/basic"
	"github.com/cozy/substance-go/schema/list"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	undo := flag.Int("undo", 0, "number of changes to undo after the replay")
	redo := flag.Int("redo", 0, "number of changes to redo after the undos")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *undo, *redo, os.Stdout); err != nil {
		logger.Fatal("Replay failed", zap.Error(err))
	}
}

func newSchema() (*model.Schema, error) {
	return basic.NewSchema(list.AddListNodes(nil)...)
}

func run(cfg *config.Config, logger *zap.Logger, undo, redo int, out io.Writer) error {
	c, err := codec.New(cfg.Format)
	if err != nil {
		return err
	}
	schema, err := newSchema()
	if err != nil {
		return err
	}
	doc := document.New(schema,
		document.WithLogger(logger),
		document.WithHistoryLimit(cfg.HistoryLimit))

	seed, err := readSeed(c, schema, cfg.SeedPath)
	if err != nil {
		return err
	}
	if err := doc.LoadSeed(seed); err != nil {
		return err
	}

	if cfg.ChangesPath != "" {
		data, err := os.ReadFile(cfg.ChangesPath)
		if err != nil {
			return fmt.Errorf("reading change log: %w", err)
		}
		changes, err := codec.DecodeChanges(c, data)
		if err != nil {
			return err
		}
		for i, change := range changes {
			if err := doc.ApplyChange(change); err != nil {
				return fmt.Errorf("replaying change %d: %w", i, err)
			}
		}
		logger.Info("Change log replayed",
			zap.Int("changes", len(changes)),
			zap.Int("version", doc.Version()))
	}

	for i := 0; i < undo; i++ {
		if _, err := doc.Undo(); err != nil {
			return err
		}
	}
	for i := 0; i < redo; i++ {
		if _, err := doc.Redo(); err != nil {
			return err
		}
	}
	return export(doc, cfg, out)
}

// readSeed reads the seed of the document. A markdown file is parsed, other
// files are decoded with the codec.
func readSeed(c codec.Codec, schema *model.Schema, path string) (document.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Snapshot{}, fmt.Errorf("reading seed: %w", err)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".md" || ext == ".markdown" {
		return markdown.ParseMarkdown(goldmark.DefaultParser(), markdown.DefaultNodeMapper, data, schema)
	}
	return codec.DecodeSnapshot(c, data)
}

func export(doc *document.Document, cfg *config.Config, out io.Writer) error {
	var result []byte
	switch cfg.Export {
	case "html":
		str, err := dom.DefaultSerializer().Render(doc.Graph(), cfg.Container)
		if err != nil {
			return err
		}
		result = []byte(str)
	case "markdown":
		str, err := markdown.DefaultSerializer.Serialize(doc.Graph(), cfg.Container)
		if err != nil {
			return err
		}
		result = []byte(str)
	case "notion":
		blocks, err := notion.CreatePageContent(doc.Graph(), cfg.Container)
		if err != nil {
			return err
		}
		if result, err = json.Marshal(blocks); err != nil {
			return err
		}
	case "json":
		var err error
		if result, err = codec.EncodeSnapshot(codec.JSON{}, doc.ToJSON()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", cfg.Export)
	}
	if _, err := out.Write(result); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}
