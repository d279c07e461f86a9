// Package app implements the application layer: it assembles the engine from
// its parts and exposes the operations the transports drive.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/QuarticCat/tinymist/internal/adapters/lsp"
	"github.com/QuarticCat/tinymist/internal/adapters/watcher"
	"github.com/QuarticCat/tinymist/internal/build"
	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
	"github.com/QuarticCat/tinymist/internal/engine/docstore"
	"github.com/QuarticCat/tinymist/internal/engine/memo"
	"github.com/QuarticCat/tinymist/internal/engine/publisher"
	"github.com/QuarticCat/tinymist/internal/engine/query"
	"github.com/QuarticCat/tinymist/internal/engine/scheduler"
	"github.com/QuarticCat/tinymist/internal/engine/snapshot"
)

const serverName = "tinymist"

// App owns the assembled engine. It implements lsp.Session.
type App struct {
	loader   ports.ConfigLoader
	compiler ports.CompileEngine
	logger   ports.Logger
	tracer   ports.Tracer
	client   ports.Client
	watch    ports.Watcher

	docs    *docstore.Store
	builder *snapshot.Builder
	cache   *memo.Cache
	queries *query.Engine
	sched   *scheduler.Scheduler
	pub     *publisher.Publisher

	mu  sync.RWMutex
	cfg *domain.Config
}

var _ lsp.Session = (*App)(nil)

// New assembles the engine from its adapters. The configuration is loaded
// from the current working directory; Initialize re-anchors it once the
// client reports its workspace root.
func New(
	loader ports.ConfigLoader,
	compiler ports.CompileEngine,
	formatter ports.Formatter,
	client ports.Client,
	watch ports.Watcher,
	logger ports.Logger,
	tracer ports.Tracer,
) (*App, error) {
	cfg, err := loader.Load(".")
	if err != nil {
		return nil, err
	}

	a := &App{
		loader:   loader,
		compiler: compiler,
		logger:   logger,
		tracer:   tracer,
		client:   client,
		watch:    watch,
		cfg:      cfg,
	}

	a.docs = docstore.New(logger)
	a.builder = snapshot.New(a.docs).WithIncludeResolver(a.resolveIncludes)
	a.cache = memo.New(cfg.CacheBudget)
	a.queries = query.New(a.cache, compiler, formatter, tracer, cfg.FormatWidth)
	a.sched = scheduler.New(a.docs, a.builder, a.queries, logger, tracer, cfg.Workers)
	a.pub = publisher.New(client, logger, cfg.DiagnosticsDebounce)

	a.docs.OnInvalidate(func(inv docstore.Invalidation) {
		a.sched.Invalidate(inv)
		if inv.Closed {
			a.pub.Clear(inv.URI, inv.Version)
		}
	})

	return a, nil
}

// Config returns the active configuration.
func (a *App) Config() *domain.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// resolveIncludes feeds the snapshot builder's include closure from the
// compiler's per-document analysis.
func (a *App) resolveIncludes(uri domain.InternedString, text string) []string {
	idx, err := a.compiler.AnalyzeDocument(context.Background(), uri, text)
	if err != nil {
		return nil
	}
	return idx.Includes
}

// Initialize re-anchors the configuration at the workspace root reported by
// the client and bumps the config revision so cached snapshots rebuild.
func (a *App) Initialize(rootPath string) error {
	cfg, err := a.loader.Load(rootPath)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	a.builder.BumpConfig()
	a.logger.Info("workspace root: " + cfg.Root)
	return nil
}

// OpenDocument registers a document and kicks off diagnostics for it.
func (a *App) OpenDocument(uri domain.InternedString, languageID, text string, version int32) {
	a.docs.Open(uri, languageID, text, version)
	a.scheduleDiagnostics(uri)
}

// EditDocument applies content changes and kicks off diagnostics. Stale
// edits are rejected without touching the document.
func (a *App) EditDocument(uri domain.InternedString, changes []domain.ContentChange, version int32) error {
	if err := a.docs.Edit(uri, changes, version); err != nil {
		return err
	}
	a.scheduleDiagnostics(uri)
	return nil
}

// CloseDocument removes a document. The invalidation hook cancels in-flight
// tasks and clears published diagnostics.
func (a *App) CloseDocument(uri domain.InternedString) error {
	return a.docs.Close(uri)
}

// FocusDocument marks the document the user is looking at.
func (a *App) FocusDocument(uri domain.InternedString) {
	a.docs.Focus(uri)
}

// Query submits one interactive request and waits for it to settle.
func (a *App) Query(ctx context.Context, req query.Request) (*query.Response, error) {
	task := a.sched.Submit(req, domain.ClassInteractive)
	return task.Wait(ctx)
}

// Shutdown flushes pending diagnostics and stops background work.
func (a *App) Shutdown() {
	a.pub.Flush()
	a.sched.Shutdown()
}

// scheduleDiagnostics runs a background diagnostics pass and publishes the
// results. Superseded or cancelled passes are expected churn, not errors.
func (a *App) scheduleDiagnostics(uri domain.InternedString) {
	task := a.sched.Submit(query.Request{Kind: domain.KindDiagnostics, URI: uri}, domain.ClassBackground)

	go func() {
		resp, err := task.Wait(context.Background())
		if err != nil {
			if !errors.Is(err, domain.ErrSuperseded) && !errors.Is(err, domain.ErrCancelled) {
				a.logger.Error(err)
			}
			return
		}
		for _, set := range resp.Diagnostics {
			a.pub.Enqueue(set)
		}
	}()
}

// Serve runs the language server over stdio until the client disconnects or
// ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	bindable, ok := a.client.(*lsp.Client)
	if !ok {
		return domain.Detail(domain.ErrServeFailed, "reason", "client does not support transport binding")
	}

	a.sched.Start(ctx)
	defer a.sched.Shutdown()

	a.startWatching(ctx)

	srv := lsp.NewServer(a, bindable, a.logger, serverName, build.Version)
	if err := srv.RunStdio(); err != nil {
		return errors.Join(domain.ErrServeFailed, err)
	}
	return nil
}

// startWatching wires file events into aux revision bumps. A failure to
// watch degrades to serving without disk change detection.
func (a *App) startWatching(ctx context.Context) {
	root := a.Config().Root
	if err := a.watch.Start(ctx, root); err != nil {
		a.logger.Warn("file watching disabled: " + err.Error())
		return
	}

	deb := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		a.builder.BumpAux()
		a.logger.Info(fmt.Sprintf("%d on-disk inputs changed", len(paths)))
		if focused, ok := a.docs.Focused(); ok {
			a.scheduleDiagnostics(focused)
		}
	})

	go func() {
		defer func() { _ = a.watch.Stop() }()
		for event := range a.watch.Events() {
			deb.Add(event.Path)
		}
		deb.Flush()
	}()
}

// CompileOnce compiles mainPath and prints diagnostics, without starting the
// server. Documents are loaded from disk, following includes from the main
// document. Returns ErrCompileCommandFailed if any diagnostic is an error.
func (a *App) CompileOnce(ctx context.Context, mainPath string) error {
	a.sched.Start(ctx)
	defer a.sched.Shutdown()

	absPath, err := filepath.Abs(mainPath)
	if err != nil {
		return errors.Join(domain.ErrCompileCommandFailed, err)
	}

	mainURI, err := a.loadFromDisk(absPath)
	if err != nil {
		return err
	}

	task := a.sched.Submit(query.Request{Kind: domain.KindDiagnostics, URI: mainURI}, domain.ClassInteractive)
	resp, err := task.Wait(ctx)
	if err != nil {
		return errors.Join(domain.ErrCompileCommandFailed, err)
	}

	failed := false
	for _, set := range resp.Diagnostics {
		for _, d := range set.Items {
			fmt.Printf("%s:%d:%d: %s\n", uriDisplay(set.URI), d.Range.Start.Line+1, d.Range.Start.Character+1, d.Message)
			if d.Severity == domain.SeverityError {
				failed = true
			}
		}
	}

	if failed {
		return domain.Detail(domain.ErrCompileCommandFailed, "main", mainPath)
	}
	a.logger.Info("compiled " + mainPath)
	return nil
}

// loadFromDisk opens absPath and its include closure into the document store
// and returns the main document's URI.
func (a *App) loadFromDisk(absPath string) (domain.InternedString, error) {
	queue := []string{absPath}
	seen := map[string]bool{}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if seen[path] {
			continue
		}
		seen[path] = true

		data, err := os.ReadFile(path) // #nosec G304 -- compiling user-named files is the point
		if err != nil {
			return domain.InternedString{}, errors.Join(domain.ErrCompileCommandFailed, err)
		}

		uri := domain.NewInternedString("file://" + path)
		text := string(data)
		a.docs.Open(uri, "typst", text, 0)

		for _, include := range a.resolveIncludes(uri, text) {
			queue = append(queue, filepath.Join(filepath.Dir(path), include))
		}
	}

	return domain.NewInternedString("file://" + absPath), nil
}

func uriDisplay(uri domain.InternedString) string {
	const prefix = "file://"
	s := uri.String()
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}
