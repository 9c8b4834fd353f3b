// internal/query/controller.go
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github-profile-finder/internal/metrics"
	"github-profile-finder/internal/model"
)

// ProfileFetcher looks up a single profile. *github.Client satisfies it.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, identifier string) (*model.Profile, error)
}

// Controller owns the state of one profile query.
//
// Every Submit gets a sequence number; only the response carrying the newest
// number may change the state, so a slow earlier lookup can never overwrite
// a later one.
type Controller struct {
	fetcher ProfileFetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	mu    sync.Mutex
	seq   uint64
	state model.State
}

// NewController creates a Controller in the Idle phase.
// A zero timeout leaves fetches bounded only by the caller's context.
func NewController(fetcher ProfileFetcher, logger *slog.Logger, m *metrics.Metrics, timeout time.Duration) *Controller {
	return &Controller{
		fetcher: fetcher,
		logger:  logger,
		metrics: m,
		timeout: timeout,
	}
}

// State returns a snapshot of the current query state.
func (c *Controller) State() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit records identifier, enters Loading and starts the lookup in the
// background. The returned channel is closed once this lookup has settled,
// whether or not its result was applied.
//
// Cancellation of ctx aborts the lookup; callers tied to a short-lived
// request should pass context.WithoutCancel.
func (c *Controller) Submit(ctx context.Context, identifier string) <-chan struct{} {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Identifier = identifier
	c.state.Submitted = true
	c.state.Loading = true
	c.state.Seq = seq
	c.mu.Unlock()

	c.logger.Debug("Lookup submitted", "identifier", identifier, "seq", seq)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.run(ctx, seq, identifier)
	}()
	return done
}

// Retry re-submits the last identifier. It reports false if nothing has been
// submitted yet.
func (c *Controller) Retry(ctx context.Context) (<-chan struct{}, bool) {
	c.mu.Lock()
	submitted, identifier := c.state.Submitted, c.state.Identifier
	c.mu.Unlock()

	if !submitted {
		return nil, false
	}
	c.logger.Info("Retrying lookup", "identifier", identifier)
	return c.Submit(ctx, identifier), true
}

func (c *Controller) run(ctx context.Context, seq uint64, identifier string) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	profile, err := c.fetcher.FetchProfile(ctx, identifier)
	c.metrics.ObserveLookup(err, time.Since(start))

	if !c.settle(seq, profile, err) {
		c.metrics.ObserveStale()
		c.logger.Debug("Discarding stale lookup response", "identifier", identifier, "seq", seq)
		return
	}

	if err != nil {
		c.logger.Info("Lookup failed", "identifier", identifier, "seq", seq, "error", err)
		return
	}
	if profile == nil {
		c.logger.Info("Lookup returned no profile", "identifier", identifier, "seq", seq)
		return
	}
	c.logger.Info("Lookup succeeded", "identifier", identifier, "seq", seq, "login", profile.Login)
}

// settle applies a result if seq is still the newest lookup.
func (c *Controller) settle(seq uint64, profile *model.Profile, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return false
	}

	c.state.Loading = false
	if err != nil {
		c.state.Err = err
		c.state.Profile = nil
	} else {
		c.state.Err = nil
		c.state.Profile = profile
	}
	return true
}
