// Package leads runs the funnel workflow: look up the submitted address,
// compute recommendations and persist the lead as the visitor advances.
package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
	"github.com/denisok6893-rgb/renovation-advisor/internal/propertydata"
	"github.com/denisok6893-rgb/renovation-advisor/internal/recommend"
	"github.com/denisok6893-rgb/renovation-advisor/internal/storage"
)

// ErrInvalid marks a submission that cannot be processed.
var ErrInvalid = errors.New("invalid submission")

// ErrNotFound is storage.ErrNotFound, re-exported for callers of this package.
var ErrNotFound = storage.ErrNotFound

type Store interface {
	CreateLead(ctx context.Context, l domain.Lead) error
	UpdateLead(ctx context.Context, l domain.Lead) error
	GetLead(ctx context.Context, id string) (domain.Lead, error)
	ListLeads(ctx context.Context, p storage.ListParams) ([]domain.Lead, int, error)
	DeleteLead(ctx context.Context, id string) (bool, error)
	CountLeads(ctx context.Context) (int, error)
}

type Recommender interface {
	Recommend(record []byte, overrides domain.FormOverrides, requestedCount int) recommend.Result
}

// Submission is one wizard step's worth of input.
type Submission struct {
	Address   string
	Overrides domain.FormOverrides
	Contact   *domain.Contact
	Step      domain.LeadStep // optional; defaults from what was submitted
	Count     int
}

type Service struct {
	store   Store
	lookup  propertydata.Lookuper
	engine  Recommender
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	timeout time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// WithLookupTimeout bounds each property lookup. Zero disables the bound.
func WithLookupTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

// NewService wires the workflow. lookup may be nil, in which case every
// lead is scored from form values and defaults.
func NewService(store Store, lookup propertydata.Lookuper, engine Recommender, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:   store,
		lookup:  lookup,
		engine:  engine,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		timeout: 5 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit starts a new lead from the address step.
func (s *Service) Submit(ctx context.Context, sub Submission) (domain.Lead, error) {
	address := propertydata.NormalizeAddress(sub.Address)
	if address == "" {
		address = propertydata.NormalizeAddress(sub.Overrides.Address)
	}
	if address == "" {
		return domain.Lead{}, fmt.Errorf("%w: address is required", ErrInvalid)
	}

	now := s.now().UTC()
	l := domain.Lead{
		ID:        s.newID(),
		Address:   address,
		Step:      domain.StepAddress,
		Overrides: sub.Overrides,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.Overrides.Address = address
	if sub.Contact != nil {
		l.Contact = *sub.Contact
	}
	step, err := s.nextStep(l.Step, sub)
	if err != nil {
		return domain.Lead{}, err
	}
	l.Step = step

	l.Record, l.RecordFound = s.fetch(ctx, address)
	s.apply(&l, sub.Count)

	if err := s.store.CreateLead(ctx, l); err != nil {
		return domain.Lead{}, fmt.Errorf("save lead: %w", err)
	}
	s.logger.Info("lead created",
		zap.String("lead_id", l.ID),
		zap.Bool("record_found", l.RecordFound),
		zap.Int("recommendations", len(l.Recommendations)))
	return l, nil
}

// Update applies a later wizard step to an existing lead and recomputes
// its recommendations. A changed address triggers a fresh lookup.
func (s *Service) Update(ctx context.Context, id string, sub Submission) (domain.Lead, error) {
	l, err := s.store.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("load lead %s: %w", id, err)
	}

	step, err := s.nextStep(l.Step, sub)
	if err != nil {
		return domain.Lead{}, err
	}
	l.Step = step

	if address := propertydata.NormalizeAddress(sub.Address); address != "" && address != l.Address {
		l.Address = address
		l.Record, l.RecordFound = s.fetch(ctx, address)
	}
	l.Overrides = l.Overrides.Merge(sub.Overrides)
	l.Overrides.Address = l.Address
	if sub.Contact != nil {
		l.Contact = mergeContact(l.Contact, *sub.Contact)
	}
	l.UpdatedAt = s.now().UTC()

	s.apply(&l, sub.Count)

	if err := s.store.UpdateLead(ctx, l); err != nil {
		return domain.Lead{}, fmt.Errorf("save lead %s: %w", id, err)
	}
	s.logger.Info("lead updated", zap.String("lead_id", l.ID), zap.String("step", string(l.Step)))
	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Lead, error) {
	l, err := s.store.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("load lead %s: %w", id, err)
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, p storage.ListParams) ([]domain.Lead, int, error) {
	if p.Step != "" {
		if _, ok := stepRank[p.Step]; !ok {
			return nil, 0, fmt.Errorf("%w: unknown step %q", ErrInvalid, p.Step)
		}
	}
	items, total, err := s.store.ListLeads(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	return items, total, nil
}

// Delete removes a lead. A missing id yields ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.DeleteLead(ctx, id)
	if err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("delete lead %s: %w", id, ErrNotFound)
	}
	s.logger.Info("lead deleted", zap.String("lead_id", id))
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.CountLeads(ctx)
	if err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

// fetch never fails the workflow; a missing or failed lookup scores the
// lead from defaults.
func (s *Service) fetch(ctx context.Context, address string) ([]byte, bool) {
	if s.lookup == nil {
		return nil, false
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.lookup.Lookup(ctx, address)
	switch {
	case errors.Is(err, propertydata.ErrNotFound):
		s.logger.Info("no property record for address", zap.String("address", address))
		return nil, false
	case err != nil:
		s.logger.Warn("property lookup failed, using defaults", zap.String("address", address), zap.Error(err))
		return nil, false
	}
	return raw, true
}

func (s *Service) apply(l *domain.Lead, count int) {
	res := s.engine.Recommend(l.Record, l.Overrides, count)
	l.Attributes = res.Attributes
	l.EstimatedValue = res.EstimatedValue
	l.Recommendations = res.Recommendations
}

var stepRank = map[domain.LeadStep]int{
	domain.StepAddress: 0,
	domain.StepDetails: 1,
	domain.StepContact: 2,
}

// nextStep infers the step from the submission when none is given. Steps
// never move backwards.
func (s *Service) nextStep(current domain.LeadStep, sub Submission) (domain.LeadStep, error) {
	want := sub.Step
	if want == "" {
		switch {
		case sub.Contact != nil:
			want = domain.StepContact
		case hasOverrides(sub.Overrides):
			want = domain.StepDetails
		default:
			want = current
		}
	}
	rank, ok := stepRank[want]
	if !ok {
		return "", fmt.Errorf("%w: unknown step %q", ErrInvalid, want)
	}
	if rank < stepRank[current] {
		return current, nil
	}
	return want, nil
}

func hasOverrides(o domain.FormOverrides) bool {
	return o.SquareFootage != nil || o.Bedrooms != nil || o.Bathrooms != nil || o.EstimatedValue != nil
}

func mergeContact(c, next domain.Contact) domain.Contact {
	if next.Name != "" {
		c.Name = next.Name
	}
	if next.Email != "" {
		c.Email = next.Email
	}
	if next.Phone != "" {
		c.Phone = next.Phone
	}
	return c
}
