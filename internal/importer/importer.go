package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

// Writer accepts rendered target documents.
type Writer interface {
	Write(name, text string) error
}

// DirWriter writes each document as a file inside a directory.
type DirWriter struct {
	dir string
}

// NewDirWriter constructs a DirWriter rooted at dir.
func NewDirWriter(dir string) *DirWriter { return &DirWriter{dir: dir} }

// Write stores text as dir/name, creating dir when needed.
//
// Precondition: name must be a plain file name.
// Postcondition: the file holds exactly text, or a non-nil error is returned.
func (w *DirWriter) Write(name, text string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", w.dir, err)
	}
	outPath := filepath.Join(w.dir, name)
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

// DocumentReport is the outcome of converting one Document.
type DocumentReport struct {
	Name  string
	Batch *translate.BatchResult
}

// ItemFailure names one item of one document that could not be converted.
type ItemFailure struct {
	Document string
	ID       string
	Reason   string
}

// RejectedDocument names a document whose rendered text could not be read
// back and was therefore not written.
type RejectedDocument struct {
	Name   string
	Reason string
}

// Summary reports a whole import run.
type Summary struct {
	Documents []DocumentReport
	Written   int
	Seen      int
	Converted int
	Failed    int
	Failures  []ItemFailure
	Rejected  []RejectedDocument
}

// Importer orchestrates conversion from a Source to a Writer.
type Importer struct {
	source  Source
	store   *mapping.Store
	writer  Writer
	logger  *zap.Logger
	workers int
	hook    translate.FieldHook
}

// Option configures an Importer.
type Option func(*Importer)

// WithWorkers sets the number of items translated in parallel.
func WithWorkers(n int) Option {
	return func(imp *Importer) { imp.workers = n }
}

// WithHook installs a field hook on the translator.
func WithHook(h translate.FieldHook) Option {
	return func(imp *Importer) { imp.hook = h }
}

// New constructs an Importer.
//
// Precondition: source, store, writer, and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, store *mapping.Store, writer Writer, logger *zap.Logger, opts ...Option) *Importer {
	imp := &Importer{
		source:  source,
		store:   store,
		writer:  writer,
		logger:  logger,
		workers: 1,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Run loads documents from sourceDir, translates each against one registry
// snapshot, validates the rendered text, and writes it. Documents with no
// items are skipped.
//
// Precondition: sourceDir must satisfy the source's layout requirements.
// Postcondition: one target document per non-empty source document is
// written, or an error is returned. Item failures do not fail the run.
func (imp *Importer) Run(ctx context.Context, sourceDir string) (*Summary, error) {
	overall := time.Now()

	t0 := time.Now()
	docs, err := imp.source.Load(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("loaded source documents",
		zap.Int("documents", len(docs)),
		zap.Duration("elapsed", time.Since(t0).Round(time.Millisecond)),
	)

	var opts []translate.Option
	if imp.hook != nil {
		opts = append(opts, translate.WithHook(imp.hook))
	}
	tr := translate.NewTranslator(imp.source.Schema(), imp.logger, opts...)
	reg := imp.store.Current()

	sum := &Summary{}
	for _, doc := range docs {
		if len(doc.Items) == 0 {
			imp.logger.Warn("no items found", zap.String("document", doc.Name))
			continue
		}
		t1 := time.Now()

		res, err := tr.TranslateBatch(ctx, reg, doc.Items, imp.workers)
		if err != nil {
			return sum, fmt.Errorf("translating %s: %w", doc.Name, err)
		}
		sum.Documents = append(sum.Documents, DocumentReport{Name: doc.Name, Batch: res})
		sum.Seen += res.Seen
		sum.Converted += res.Converted
		sum.Failed += res.Failed
		for _, f := range res.Failures {
			sum.Failures = append(sum.Failures, ItemFailure{Document: doc.Name, ID: f.ID, Reason: f.Reason})
		}

		text := translate.RenderDocument(doc.Header, res.Items)

		// Validate output is loadable before writing.
		if err := validate(text, res.Converted); err != nil {
			imp.logger.Error("document failed validation; not written",
				zap.String("document", doc.Name),
				zap.Error(err),
			)
			sum.Rejected = append(sum.Rejected, RejectedDocument{Name: doc.Name, Reason: err.Error()})
			continue
		}

		if err := imp.writer.Write(doc.Name, text); err != nil {
			return sum, fmt.Errorf("writing document %s: %w", doc.Name, err)
		}
		sum.Written++

		imp.logger.Info("wrote document",
			zap.String("document", doc.Name),
			zap.Int("converted", res.Converted),
			zap.Int("failed", res.Failed),
			zap.Duration("elapsed", time.Since(t1).Round(time.Millisecond)),
		)
	}

	imp.logger.Info("import complete",
		zap.Int("written", sum.Written),
		zap.Int("seen", sum.Seen),
		zap.Int("converted", sum.Converted),
		zap.Int("failed", sum.Failed),
		zap.Int("rejected", len(sum.Rejected)),
		zap.Duration("total", time.Since(overall).Round(time.Millisecond)),
	)
	return sum, nil
}

// validate reads text back and checks that every converted item survived.
func validate(text string, converted int) error {
	parsed, err := translate.ParseItems(text)
	if err != nil {
		return err
	}
	if len(parsed) != converted {
		return fmt.Errorf("%d items rendered, %d read back", converted, len(parsed))
	}
	return nil
}
