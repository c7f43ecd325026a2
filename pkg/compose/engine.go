package compose

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Aman-CERP/indexify/pkg/document"
)

// Step records what one contributor did during a composition run.
type Step struct {
	// Position is the contributor's index after sorting.
	Position    int
	Order       int
	Contributor Contributor
	// Applied is false when CanContribute rejected the contributor.
	Applied   bool
	Fragments []Fragment
}

// Keys returns the "namespace/key" names the step contributed.
func (s Step) Keys() []string {
	keys := make([]string, 0, len(s.Fragments))
	for _, f := range s.Fragments {
		keys = append(keys, string(f.Namespace)+"/"+f.Key)
	}
	return keys
}

// Engine runs composition passes. The zero value is ready to use and logs
// through slog.Default.
type Engine struct {
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-contributor debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) log() *slog.Logger {
	if e == nil || e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// Compose merges the contributions of contributors into doc, in place.
//
// An empty contributor set leaves doc untouched. On a key collision Compose
// returns a *DuplicateContributionError, and on a fragment with an unknown
// namespace or blank key an error wrapping document.ErrUnknownNamespace or
// document.ErrEmptyKey. In both cases doc holds the output of every
// contributor merged before the offending one and nothing from it. Errors
// returned by doc's Insert for any other reason are passed through
// unchanged; fragments of that contributor inserted before the failure stay.
func (e *Engine) Compose(doc Target, contributors []Contributor) error {
	_, err := e.run(doc, contributors)
	return err
}

// Plan composes into a copy of doc and reports, per contributor in run
// order, whether it applied and what it contributed. doc is not modified.
// The returned steps cover every contributor reached before an error.
func (e *Engine) Plan(doc *document.Document, contributors []Contributor) ([]Step, error) {
	return e.run(doc.Clone(), contributors)
}

func (e *Engine) run(doc Target, contributors []Contributor) ([]Step, error) {
	sorted, err := sortContributors(contributors)
	if err != nil {
		return nil, err
	}

	logger := e.log()
	steps := make([]Step, 0, len(sorted))
	for i, c := range sorted {
		step := Step{Position: i, Order: c.Order(), Contributor: c}

		if !c.CanContribute(doc) {
			logger.Debug("contributor_skipped",
				slog.Int("position", i),
				slog.Int("order", step.Order),
				slog.String("contributor", fmt.Sprintf("%T", c)))
			steps = append(steps, step)
			continue
		}

		fragments, err := stage(doc, c, i)
		if err != nil {
			return steps, err
		}
		for _, f := range fragments {
			if err := doc.Insert(f.Namespace, f.Key, f.Definition); err != nil {
				if errors.Is(err, document.ErrKeyExists) {
					return steps, &DuplicateContributionError{Namespace: f.Namespace, Key: f.Key, Position: i, Contributor: c}
				}
				return steps, err
			}
		}

		step.Applied = true
		step.Fragments = fragments
		steps = append(steps, step)
		logger.Debug("contributor_applied",
			slog.Int("position", i),
			slog.Int("order", step.Order),
			slog.String("contributor", fmt.Sprintf("%T", c)),
			slog.Int("fragments", len(fragments)))
	}
	return steps, nil
}

type slot struct {
	ns  document.Namespace
	key string
}

// stage collects a contributor's fragments and checks each one before
// anything is written: the slot must be storable, and it must collide neither
// with the document nor with an earlier fragment of the same contributor.
func stage(doc Reader, c Contributor, position int) ([]Fragment, error) {
	var fragments []Fragment
	seen := make(map[slot]struct{})
	for f := range c.Build() {
		if err := document.CheckSlot(f.Namespace, f.Key); err != nil {
			return nil, fmt.Errorf("contributor #%d: %w", position, err)
		}
		s := slot{f.Namespace, f.Key}
		if _, dup := seen[s]; dup || doc.Contains(f.Namespace, f.Key) {
			return nil, &DuplicateContributionError{Namespace: f.Namespace, Key: f.Key, Position: position, Contributor: c}
		}
		seen[s] = struct{}{}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

// sortContributors returns a stably sorted copy; the caller's slice is not reordered.
func sortContributors(contributors []Contributor) ([]Contributor, error) {
	for i, c := range contributors {
		if c == nil {
			return nil, fmt.Errorf("contributor #%d: %w", i, ErrNilContributor)
		}
	}
	sorted := slices.Clone(contributors)
	slices.SortStableFunc(sorted, func(a, b Contributor) int {
		return cmp.Compare(a.Order(), b.Order())
	})
	return sorted, nil
}

var defaultEngine = NewEngine()

// Compose runs contributors against doc with a default engine.
func Compose(doc Target, contributors []Contributor) error {
	return defaultEngine.Compose(doc, contributors)
}
