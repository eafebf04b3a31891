// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mkessler/ablage/internal/analyzer"
	"github.com/mkessler/ablage/internal/backup"
	"github.com/mkessler/ablage/internal/blob"
	"github.com/mkessler/ablage/internal/dataset"
	"github.com/mkessler/ablage/internal/extract"
	"github.com/mkessler/ablage/internal/models"
	"github.com/mkessler/ablage/internal/reindex"
	"github.com/mkessler/ablage/internal/scan"
	"github.com/mkessler/ablage/internal/vault"
)

// app holds the wired services for one command invocation.
type app struct {
	cfg       *Config
	logger    *slog.Logger
	vault     *vault.FS
	store     *dataset.Store
	blobs     blob.Store
	extractor *extract.Extractor
	analyzer  analyzer.Analyzer
	closers   []func() error
}

// build initializes logging, the vault, the dataset store, and the blob
// store from the configured options.
func build(ctx context.Context, opts ...Option) (*app, error) {
	wrapper := &application{}
	for _, opt := range opts {
		opt(wrapper)
	}
	if wrapper.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := wrapper.config

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("blob_path", cfg.Blobs.Path),
		slog.Bool("analyzer", cfg.Analyzer.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	v, err := vault.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init vault: %w", err)
	}
	if err := v.Connect(); err != nil {
		return nil, fmt.Errorf("connect vault: %w", err)
	}

	store, err := dataset.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init dataset: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, vault: v, store: store}
	a.closers = append(a.closers, store.Close)

	dirStore, err := blob.NewDirStore(cfg.Blobs.Path)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	cached, err := blob.NewCachedStore(dirStore, cfg.Blobs.CacheSize)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init blob cache: %w", err)
	}
	a.blobs = cached

	a.extractor = extract.New(extract.Engines{}, logger)

	if cfg.Analyzer.Enabled {
		gem, err := analyzer.NewGemini(ctx, cfg.Analyzer.APIKey, cfg.Analyzer.Model)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init analyzer: %w", err)
		}
		a.analyzer = gem
		a.closers = append(a.closers, gem.Close)
	}

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}

func (a *app) scanner() *scan.Scanner {
	return scan.New(a.vault, a.store, a.blobs, a.extractor, a.logger, scan.Options{
		Analyzer:      a.analyzer,
		UserRules:     a.cfg.UserRules(),
		AnalyzerDelay: a.cfg.Analyzer.Delay(),
	})
}

// RunScan executes one inbox ingestion pass.
func RunScan(ctx context.Context, opts ...Option) error {
	a, err := build(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.scanner().Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	a.logger.Info("Scan complete",
		slog.Int("moved", report.Moved),
		slog.Int("new_documents", report.NewDocuments),
		slog.Int("new_tax_expenses", report.NewTaxExpenses),
		slog.Int("new_expenses", report.NewExpenses),
		slog.Int("new_salary_entries", report.NewSalaryEntries),
		slog.Int("skipped", report.Skipped))
	return nil
}

// RunWatch watches the inbox and scans after each burst of drops.
func RunWatch(ctx context.Context, opts ...Option) error {
	a, err := build(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	return scan.Watch(ctx, a.scanner(), a.vault, a.logger)
}

// RunReindex rebuilds the document index from the archive tree.
func RunReindex(ctx context.Context, opts ...Option) error {
	a, err := build(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	added, err := reindex.New(a.vault, a.store, a.extractor, a.logger).Rebuild()
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	a.logger.Info("Reindex complete", slog.Int("added", added))
	return nil
}

// RunBackup writes a full backup archive to outputPath.
func RunBackup(ctx context.Context, outputPath string, opts ...Option) error {
	a, err := build(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.store.Export()
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	archive, err := backup.NewArchiver(a.blobs, a.vault, a.logger).Create(ds)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	if err := os.WriteFile(outputPath, archive, 0o644); err != nil {
		return fmt.Errorf("backup: write %s: %w", outputPath, err)
	}
	a.logger.Info("Backup written",
		slog.String("path", outputPath),
		slog.Int("bytes", len(archive)))
	return nil
}

// RunRestore loads a backup archive and reinstalls dataset and attachments.
func RunRestore(ctx context.Context, inputPath string, opts ...Option) error {
	a, err := build(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	lock, err := a.vault.AcquireLock()
	if err != nil {
		return err
	}
	defer lock.Release() //nolint:errcheck

	archive, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("restore: read %s: %w", inputPath, err)
	}
	ds, err := backup.NewRestorer(a.blobs, a.logger).Restore(archive)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if err := a.store.Import(ds); err != nil {
		return fmt.Errorf("restore: import: %w", err)
	}
	a.logger.Info("Restore complete",
		slog.Int("documents", len(ds.Documents)),
		slog.Int("tax_expenses", len(ds.TaxExpenses)),
		slog.Int("salaries", len(ds.Salaries)))
	return nil
}

// RunRecategorize moves an archived document into another category bucket
// and updates its index entry. The file move uses the same two-phase
// relocation as ingestion.
func RunRecategorize(ctx context.Context, id, category, subCategory string, opts ...Option) error {
	a, err := build(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	lock, err := a.vault.AcquireLock()
	if err != nil {
		return err
	}
	defer lock.Release() //nolint:errcheck

	doc, err := a.store.GetDocument(id)
	if err != nil {
		return fmt.Errorf("recategorize: %w", err)
	}
	if doc.FilePath == "" {
		return fmt.Errorf("recategorize: document %s has no archived file", id)
	}

	cat := models.CustomCategory(category)
	segments := []string{vault.ArchiveDir, strconv.Itoa(doc.Year), string(cat)}
	if subCategory != "" {
		segments = append(segments, subCategory)
	}
	dir, err := a.vault.GetOrCreateDir(segments...)
	if err != nil {
		return fmt.Errorf("recategorize: %w", err)
	}
	target := filepath.Join(dir, doc.FileName)

	if target != doc.FilePath {
		if err := a.vault.MoveFile(doc.FilePath, target); err != nil {
			return fmt.Errorf("recategorize: move: %w", err)
		}
	}
	if err := a.store.Recategorize(id, cat, subCategory, target); err != nil {
		return fmt.Errorf("recategorize: %w", err)
	}
	a.logger.Info("Document recategorized",
		slog.String("id", id),
		slog.String("category", string(cat)),
		slog.String("path", target))
	return nil
}

// RunSearch prints full-text hits for the query.
func RunSearch(ctx context.Context, query string, limit int, opts ...Option) error {
	a, err := build(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	hits, err := a.store.Search(query, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	for _, h := range hits {
		fmt.Printf("%s\t%s\t%s\n", h.ID, h.Title, h.Snippet)
	}
	a.logger.Info("Search complete", slog.Int("hits", len(hits)))
	return nil
}
