package app

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
)

// Registry maps venue identifiers to calculator variants. It is built once
// at startup; Register exists for tests and custom venues.
type Registry struct {
	mu          sync.RWMutex
	calculators map[domain.Venue]Calculator
	categories  domain.VenueCategories
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	clock Clock
}

// WithClock overrides the timestamp source for all calculators.
func WithClock(clock Clock) RegistryOption {
	return func(o *registryOptions) {
		o.clock = clock
	}
}

// NewRegistry builds one calculator per schedule. Duplicate venues are
// rejected.
func NewRegistry(schedules []domain.FeeSchedule, opts ...RegistryOption) (*Registry, error) {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		calculators: make(map[domain.Venue]Calculator, len(schedules)),
		categories:  make(domain.VenueCategories, len(schedules)),
	}
	for _, s := range schedules {
		if _, dup := r.calculators[s.Venue]; dup {
			return nil, apperror.New(apperror.CodeInvalidSchedule,
				apperror.WithContext(fmt.Sprintf("duplicate schedule for venue %s", s.Venue)))
		}
		calc, err := NewCalculator(s, o.clock)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidSchedule,
				apperror.WithContext(string(s.Venue)), apperror.WithCause(err))
		}
		r.register(calc)
	}
	return r, nil
}

// Register adds or replaces the calculator for its venue.
func (r *Registry) Register(c Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(c)
}

func (r *Registry) register(c Calculator) {
	s := c.Schedule()
	r.calculators[c.Venue()] = c
	r.categories[c.Venue()] = s.Category
}

// Get returns the calculator for venue, or UNSUPPORTED_VENUE.
func (r *Registry) Get(venue domain.Venue) (Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calculators[venue]
	if !ok {
		return nil, apperror.UnsupportedVenue(string(venue))
	}
	return c, nil
}

// Estimate dispatches req to its venue's calculator.
func (r *Registry) Estimate(req domain.TradeRequest) (*domain.FeeEstimate, error) {
	c, err := r.Get(req.Venue)
	if err != nil {
		return nil, err
	}
	return c.Estimate(req), nil
}

// Schedule returns a copy of the venue's schedule.
func (r *Registry) Schedule(venue domain.Venue) (domain.FeeSchedule, error) {
	c, err := r.Get(venue)
	if err != nil {
		return domain.FeeSchedule{}, err
	}
	return c.Schedule(), nil
}

// Schedules returns copies of every schedule, ordered by venue.
func (r *Registry) Schedules() []domain.FeeSchedule {
	venues := r.Venues()
	out := make([]domain.FeeSchedule, 0, len(venues))
	for _, v := range venues {
		if s, err := r.Schedule(v); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// Venues returns the registered venues in sorted order.
func (r *Registry) Venues() []domain.Venue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	venues := make([]domain.Venue, 0, len(r.calculators))
	for v := range r.calculators {
		venues = append(venues, v)
	}
	slices.Sort(venues)
	return venues
}

// Categories returns a snapshot of the venue compatibility relation.
func (r *Registry) Categories() domain.VenueCategories {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(domain.VenueCategories, len(r.categories))
	for v, c := range r.categories {
		out[v] = c
	}
	return out
}

// Len returns the number of registered venues.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calculators)
}
