// Package dashboard produces the single aggregate model behind the landing
// screen, reconciling a privileged source and a personal fallback with
// independent failure modes.
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/bizpulse/bizdash/internal/api"
	"github.com/bizpulse/bizdash/internal/session"
)

// Source names which provider served the current model.
type Source int

const (
	// SourceNone means both providers failed; the model is empty.
	SourceNone Source = iota
	// SourceAdmin is the privileged cross-module aggregate.
	SourceAdmin
	// SourcePersonal is the always-available per-user aggregate.
	SourcePersonal
)

func (s Source) String() string {
	switch s {
	case SourceAdmin:
		return "admin"
	case SourcePersonal:
		return "personal"
	}
	return "none"
}

// Fetcher is the shape both dashboard providers expose.
type Fetcher interface {
	Dashboard(ctx context.Context) (json.RawMessage, error)
}

// Aggregator applies the merge policy: primary first, fall back to the
// secondary in full on any primary failure, never splice fields across the
// two. Neither source is retried; the fallback is the retry strategy, which
// bounds worst-case latency at two sequential fetches.
type Aggregator struct {
	primary  Fetcher
	fallback Fetcher
	sessions *session.Store
	logger   *slog.Logger

	flight singleflight.Group

	mu     sync.Mutex
	cached *Model
	source Source
	// epoch is the session epoch the cached model was fetched under. A
	// moved epoch means the model belongs to a previous principal.
	epoch uint64
}

func NewAggregator(primary, fallback Fetcher, sessions *session.Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		primary:  primary,
		fallback: fallback,
		sessions: sessions,
		logger:   logger,
	}
}

type fetchResult struct {
	model  Model
	source Source
}

// Load returns the current dashboard model and the source that served it.
// Failures never escape: both sources failing yields an empty model with
// SourceNone, which renders as "no data".
func (a *Aggregator) Load(ctx context.Context) (Model, Source) {
	epoch := a.sessions.Epoch()

	a.mu.Lock()
	if a.cached != nil && a.epoch == epoch {
		m, src := *a.cached, a.source
		a.mu.Unlock()
		return m, src
	}
	// A cached model from a replaced session is stale regardless of how it
	// was obtained; never serve one principal's aggregate to the next.
	a.cached = nil
	a.mu.Unlock()

	// Concurrent cold-cache loads share one fetch. The key carries the
	// epoch so a caller under a fresh session never joins a flight issued
	// under the replaced one.
	v, _, _ := a.flight.Do(strconv.FormatUint(epoch, 10), func() (any, error) {
		model, source := a.fetch(ctx)
		return fetchResult{model: model, source: source}, nil
	})
	res := v.(fetchResult)

	// The session changed while the fetch was in flight (logout or fresh
	// login). Discard the late result rather than apply it to state that
	// belongs to someone else now.
	if a.sessions.Epoch() != epoch {
		a.logger.Info("discarding dashboard fetch issued under a replaced session")
		return Empty(), SourceNone
	}

	a.mu.Lock()
	a.cached = &res.model
	a.source = res.source
	a.epoch = epoch
	a.mu.Unlock()

	return res.model, res.source
}

func (a *Aggregator) fetch(ctx context.Context) (Model, Source) {
	raw, err := a.primary.Dashboard(ctx)
	if err == nil && len(raw) > 0 {
		a.logger.Info("dashboard served by primary source", "source", SourceAdmin.String())
		return Decode(raw), SourceAdmin
	}
	if err != nil {
		// Permission denial and transient transport failure fall back
		// identically; the reason is logged to keep the two observable.
		a.logger.Warn("primary dashboard source failed, falling back",
			"error", err,
			"permission_denied", api.IsUnauthorized(err))
	} else {
		a.logger.Warn("primary dashboard source returned no body, falling back")
	}

	raw, err = a.fallback.Dashboard(ctx)
	if err == nil && len(raw) > 0 {
		a.logger.Info("dashboard served by fallback source", "source", SourcePersonal.String())
		return Decode(raw), SourcePersonal
	}
	if err != nil {
		a.logger.Error("fallback dashboard source failed", "error", err)
	}

	return Empty(), SourceNone
}

// Invalidate implements api.Invalidator. A write that touches either
// dashboard aggregate drops the cached model so the next Load refetches.
func (a *Aggregator) Invalidate(keys []string) {
	for _, key := range keys {
		if key == api.AggregateAdminDashboard || key == api.AggregateMyDashboard {
			a.mu.Lock()
			a.cached = nil
			a.source = SourceNone
			a.mu.Unlock()
			a.logger.Debug("dashboard cache invalidated", "key", key)
			return
		}
	}
}
