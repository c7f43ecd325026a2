// Package pipeline runs manifests end to end: load, build contributors,
// seed from the base request, compose, and optionally validate with bleve.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/indexify/internal/bleveindex"
	"github.com/Aman-CERP/indexify/internal/config"
	ierrors "github.com/Aman-CERP/indexify/internal/errors"
	"github.com/Aman-CERP/indexify/internal/registry"
	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/document"
)

// Mode selects what a run produces.
type Mode int

const (
	// ModeCompose merges contributors into the document.
	ModeCompose Mode = iota
	// ModePlan reports what composing would do without producing a request.
	ModePlan
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Registry resolves contributor kinds (default: registry.Default()).
	Registry *registry.Registry

	// Logger receives engine and pipeline events (default: slog.Default()).
	Logger *slog.Logger

	// Validate translates every composed request into a bleve mapping.
	Validate bool

	// Parallelism bounds concurrent manifests in RunAll (default: GOMAXPROCS).
	Parallelism int
}

// Result is the outcome of running one manifest.
type Result struct {
	// Manifest is the loaded manifest.
	Manifest *config.Manifest

	// Document is the composed request. In ModePlan it holds the seed only.
	Document *document.Document

	// Steps describes every contributor in application order.
	Steps []compose.Step

	// Mapping is set when validation ran.
	Mapping *bleveindex.Mapping

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Runner executes manifests. It is safe for concurrent use.
type Runner struct {
	registry    *registry.Registry
	engine      *compose.Engine
	logger      *slog.Logger
	validate    bool
	parallelism int
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{
		registry:    cfg.Registry,
		logger:      cfg.Logger,
		validate:    cfg.Validate,
		parallelism: cfg.Parallelism,
	}
	if r.registry == nil {
		r.registry = registry.Default()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.parallelism <= 0 {
		r.parallelism = runtime.GOMAXPROCS(0)
	}
	r.engine = compose.NewEngine(compose.WithLogger(r.logger))
	return r
}

// Run processes the manifest at path.
func (r *Runner) Run(ctx context.Context, path string, mode Mode) (*Result, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := config.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	contributors, err := r.registry.BuildAll(m.Contributors)
	if err != nil {
		return nil, err
	}

	doc, err := loadBase(m.BasePath())
	if err != nil {
		return nil, err
	}

	res := &Result{Manifest: m, Document: doc}
	switch mode {
	case ModePlan:
		res.Steps, err = r.engine.Plan(doc, contributors)
	default:
		err = r.engine.Compose(doc, contributors)
	}
	if err != nil {
		return nil, composeError(err, path)
	}

	if r.validate && mode == ModeCompose {
		res.Mapping, err = Validate(doc)
		if err != nil {
			if ie, ok := ierrors.As(err); ok {
				ie.WithDetail("path", path)
			}
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	r.logger.Debug("manifest_composed",
		slog.String("path", path),
		slog.String("index", m.Index),
		slog.Int("contributors", len(contributors)),
		slog.Bool("plan", mode == ModePlan),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// RunAll processes manifests concurrently. Results keep the order of paths.
// The first failure cancels the remaining runs.
func (r *Runner) RunAll(ctx context.Context, paths []string, mode Mode) ([]*Result, error) {
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, path := range paths {
		g.Go(func() error {
			res, err := r.Run(gctx, path, mode)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Validate translates doc into a bleve mapping.
func Validate(doc *document.Document) (*bleveindex.Mapping, error) {
	m, err := bleveindex.Translate(doc)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, bleveindex.ErrUnsupported) {
		return nil, ierrors.New(ierrors.ErrCodeUnresolvedReference, err.Error(), err).
			WithSuggestion("Define the referenced component in the request, or drop --validate for engines other than bleve")
	}
	return nil, ierrors.New(ierrors.ErrCodeMappingFailed, err.Error(), err)
}

// loadBase reads the seed request. No path yields an empty document.
func loadBase(path string) (*document.Document, error) {
	doc := document.New()
	if path == "" {
		return doc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ierrors.New(ierrors.ErrCodeFileNotFound, fmt.Sprintf("base request not found: %s", path), err).
				WithDetail("path", path)
		}
		return nil, ierrors.IOError(fmt.Sprintf("failed to read base request %s", path), err).
			WithDetail("path", path)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, ierrors.ValidationError(fmt.Sprintf("invalid base request %s: %v", path, err), err).
			WithDetail("path", path)
	}
	return doc, nil
}

// composeError turns engine failures into coded errors.
func composeError(err error, path string) error {
	var dup *compose.DuplicateContributionError
	if errors.As(err, &dup) {
		return ierrors.New(ierrors.ErrCodeDuplicateContribution, dup.Error(), err).
			WithDetail("path", path).
			WithDetail("namespace", string(dup.Namespace)).
			WithDetail("key", dup.Key).
			WithDetail("position", strconv.Itoa(dup.Position)).
			WithSuggestion(fmt.Sprintf("Give %s/%s a unique name or remove one of its contributors", dup.Namespace, dup.Key))
	}
	if errors.Is(err, compose.ErrNilContributor) {
		return ierrors.InternalError(err.Error(), err)
	}
	return ierrors.New(ierrors.ErrCodeComposeFailed, err.Error(), err).WithDetail("path", path)
}
