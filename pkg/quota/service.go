package quota

import (
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"vaani-hq/meterd/pkg/quota/cost"
	"vaani-hq/meterd/pkg/quota/ledger"
	"vaani-hq/meterd/pkg/quota/plan"
)

// lockStripes is the number of per-user commit mutexes. Power of two.
const lockStripes = 64

// Service is the voice quota engine: admission control, usage recording,
// and stats reporting over one plan resolver and one ledger store.
//
// Construct it explicitly and inject the store; there is no package-level
// instance. Service is safe for concurrent use.
type Service struct {
	plans *plan.Resolver
	store ledger.Store

	rates          cost.Rates
	bonusThreshold float64

	logger  *slog.Logger
	metrics *Metrics

	// now is injectable for window tests.
	now func() time.Time

	// userLocks serializes commits per user (striped by user ID hash).
	userLocks [lockStripes]sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source. Tests use this to cross window
// boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// New creates a quota service.
//
// Example:
//
//	service := quota.New(
//	    plan.NewResolver(plan.Defaults()),
//	    ledgerStore,
//	    cost.DefaultRates(),
//	    bonus.DefaultThreshold,
//	    quota.WithLogger(logger),
//	)
func New(plans *plan.Resolver, store ledger.Store, rates cost.Rates, bonusThreshold float64, opts ...Option) *Service {
	s := &Service{
		plans:          plans,
		store:          store,
		rates:          rates,
		bonusThreshold: bonusThreshold,
		logger:         slog.Default(),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("component", "quota")
	return s
}

// userLock returns the commit mutex for a user.
func (s *Service) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &s.userLocks[h.Sum32()%lockStripes]
}
