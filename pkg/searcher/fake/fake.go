// Package fake provides in-process Searcher doubles for exercising the
// orchestrator without real back-end credentials or network access.
package fake

import (
	"context"
	"sync"
	"time"

	searcherrors "github.com/jordigilh/omnisearch-orchestrator/internal/errors"
	"github.com/jordigilh/omnisearch-orchestrator/pkg/searcher"
)

// FastSearcher always succeeds after a small fixed latency.
type FastSearcher struct {
	mu        sync.Mutex
	name      string
	latency   time.Duration
	callCount int
}

// NewFastSearcher returns a FastSearcher registered under name.
func NewFastSearcher(name string, latency time.Duration) *FastSearcher {
	return &FastSearcher{name: name, latency: latency}
}

func (f *FastSearcher) Name() string        { return f.name }
func (f *FastSearcher) Description() string { return "always-succeeds demo searcher" }

func (f *FastSearcher) Search(ctx context.Context, params searcher.Params) ([]searcher.Result, error) {
	f.mu.Lock()
	f.callCount++
	f.mu.Unlock()

	select {
	case <-time.After(f.latency):
	case <-ctx.Done():
		return nil, searcherrors.Wrap(ctx.Err(), searcherrors.ErrorTypeTimeout, f.name, "context cancelled")
	}

	return []searcher.Result{{
		Title:          "Result for " + params.Query,
		URL:            "https://example.com/" + f.name,
		Snippet:        "a demo result from " + f.name,
		Score:          1.0,
		SourceProvider: f.name,
	}}, nil
}

// CallCount returns the number of completed Search invocations.
func (f *FastSearcher) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// FlakySearcher fails its first N calls with a configurable error kind,
// then succeeds. Useful for exercising retry and fallback paths.
type FlakySearcher struct {
	mu          sync.Mutex
	name        string
	failUntil   int
	errKind     searcherrors.ErrorType
	errMessage  string
	callCount   int
}

// NewFlakySearcher returns a FlakySearcher that fails its first
// failUntil calls with kind/message, then succeeds.
func NewFlakySearcher(name string, failUntil int, kind searcherrors.ErrorType, message string) *FlakySearcher {
	return &FlakySearcher{name: name, failUntil: failUntil, errKind: kind, errMessage: message}
}

func (f *FlakySearcher) Name() string        { return f.name }
func (f *FlakySearcher) Description() string { return "fails its first N calls, then succeeds" }

func (f *FlakySearcher) Search(ctx context.Context, params searcher.Params) ([]searcher.Result, error) {
	f.mu.Lock()
	f.callCount++
	attempt := f.callCount
	f.mu.Unlock()

	if attempt <= f.failUntil {
		return nil, searcherrors.New(f.errKind, f.name, f.errMessage)
	}

	return []searcher.Result{{
		Title:          "Recovered result for " + params.Query,
		URL:            "https://example.com/" + f.name,
		Snippet:        "a demo result from " + f.name + " after recovering",
		Score:          0.8,
		SourceProvider: f.name,
	}}, nil
}

// CallCount returns the number of completed Search invocations.
func (f *FlakySearcher) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// AlwaysFailSearcher fails every call with a fixed error kind.
type AlwaysFailSearcher struct {
	name    string
	errKind searcherrors.ErrorType
	message string
}

// NewAlwaysFailSearcher returns a Searcher that always fails.
func NewAlwaysFailSearcher(name string, kind searcherrors.ErrorType, message string) *AlwaysFailSearcher {
	return &AlwaysFailSearcher{name: name, errKind: kind, message: message}
}

func (a *AlwaysFailSearcher) Name() string        { return a.name }
func (a *AlwaysFailSearcher) Description() string { return "always-fails demo searcher" }

func (a *AlwaysFailSearcher) Search(ctx context.Context, params searcher.Params) ([]searcher.Result, error) {
	return nil, searcherrors.New(a.errKind, a.name, a.message)
}
