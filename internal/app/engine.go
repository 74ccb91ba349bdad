// Package app provides the matching engine that orchestrates customers,
// freelancers, employments, and the per-category ranking heaps.
package app

import (
	"context"
	"fmt"
	"math"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/adapters/repository"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/catalog"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/model"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/scoring"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/pkg/logger"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/pkg/metrics"
)

// Candidate is one ranked entry of a job request listing.
type Candidate struct {
	ID        string
	Composite int
	Price     int
	Rating    float64
}

// MatchResult is the outcome of a successful job request: the ranked
// acceptable candidates and the auto-employed best match.
type MatchResult struct {
	Category   catalog.Category
	CustomerID string
	Candidates []Candidate
	BestID     string
}

// CancelResult reports a freelancer-initiated cancellation, including
// whether it tripped the platform ban threshold.
type CancelResult struct {
	CustomerID string
	Banned     bool
}

// CustomerSummary is a read-only view for customer queries.
type CustomerSummary struct {
	ID               string
	TotalSpent       int
	LoyaltyTier      model.Tier
	BlacklistedCount int
	EmploymentCount  int
}

// Engine owns all platform state: the entity tables, the active-employment
// index, the append-only employment history, the pending-loyalty dirty set,
// and one ranking heap per service category. It is single-threaded: each
// operation runs to completion before the next starts, so no locking is
// required.
type Engine struct {
	customers      *repository.KeyedTable[*model.Customer]
	freelancers    *repository.KeyedTable[*model.Freelancer]
	active         *repository.KeyedTable[*model.Employment]
	pendingLoyalty *repository.KeyedTable[*model.Customer]
	history        []*model.Employment

	heaps map[catalog.Category]*repository.IndexedHeap[*model.Freelancer]

	scorer *scoring.Scorer
	log    logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithScorer replaces the default composite scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New constructs an Engine with one empty ranking heap per category. The
// category catalog is validated once here.
func New(opts ...Option) (*Engine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service catalog: %w", err)
	}

	e := &Engine{
		customers:      repository.NewKeyedTable[*model.Customer](),
		freelancers:    repository.NewKeyedTable[*model.Freelancer](),
		active:         repository.NewKeyedTable[*model.Employment](),
		pendingLoyalty: repository.NewKeyedTable[*model.Customer](),
		heaps:          make(map[catalog.Category]*repository.IndexedHeap[*model.Freelancer]),
		scorer:         scoring.New(),
		log:            logger.Nop(),
	}
	for _, c := range catalog.Categories() {
		e.heaps[c] = repository.NewIndexedHeap[*model.Freelancer]()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RegisterCustomer adds a new customer. Customer and freelancer IDs share
// one namespace.
func (e *Engine) RegisterCustomer(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if e.customers.ContainsKey(id) || e.freelancers.ContainsKey(id) {
		return ErrDuplicateID
	}

	e.customers.Put(id, model.NewCustomer(id))

	metrics.IncrementRegistrations("customer")
	metrics.UpdateCustomersTotal(e.customers.Size())
	e.log.Debug(ctx, "customer registered", logger.String("customer", id))
	return nil
}

// RegisterFreelancer adds a new freelancer and inserts it into its
// category's ranking heap with an initial composite score.
func (e *Engine) RegisterFreelancer(ctx context.Context, id, category string, price int, skills model.Skills) error {
	if id == "" {
		return ErrInvalidID
	}
	if !catalog.Valid(category) {
		return ErrUnknownCategory
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	if !skills.InRange() {
		return ErrInvalidSkill
	}
	if e.freelancers.ContainsKey(id) || e.customers.ContainsKey(id) {
		return ErrDuplicateID
	}

	f := model.NewFreelancer(id, catalog.Category(category), price, skills)
	e.freelancers.Put(id, f)
	e.addToHeap(f)

	metrics.IncrementRegistrations("freelancer")
	metrics.UpdateFreelancersTotal(e.freelancers.Size())
	e.log.Debug(ctx, "freelancer registered",
		logger.String("freelancer", id),
		logger.String("category", category),
		logger.Int("score", f.CompositeScore))
	return nil
}

// Employ directly employs a named freelancer for a customer.
func (e *Engine) Employ(ctx context.Context, customerID, freelancerID string) (catalog.Category, error) {
	c, ok := e.customers.Get(customerID)
	if !ok {
		return "", ErrUnknownCustomer
	}
	f, ok := e.freelancers.Get(freelancerID)
	if !ok {
		return "", ErrUnknownFreelancer
	}
	if f.PlatformBanned {
		return "", ErrFreelancerBanned
	}
	if c.InBlacklist(freelancerID) {
		return "", ErrBlacklisted
	}
	if !f.Available {
		return "", ErrUnavailable
	}

	if !f.Employ(customerID) {
		return "", ErrUnavailable
	}
	e.openEmployment(ctx, c, f)

	return f.Category, nil
}

// RequestJob ranks up to k acceptable freelancers in a category and
// auto-employs the best one. Polling the heap is destructive, so every
// polled element is reinserted afterward with a freshly computed score,
// whether it was accepted or not.
func (e *Engine) RequestJob(ctx context.Context, customerID, category string, k int) (*MatchResult, error) {
	c, ok := e.customers.Get(customerID)
	if !ok {
		return nil, ErrUnknownCustomer
	}
	if k <= 0 {
		return nil, ErrInvalidLimit
	}
	if !catalog.Valid(category) {
		return nil, ErrUnknownCategory
	}

	cat := catalog.Category(category)
	demand, _ := catalog.Demand(cat)
	heap := e.heaps[cat]
	if heap.IsEmpty() {
		return nil, ErrNoMatch
	}

	var polled []*model.Freelancer
	var chosen []Candidate
	var best *model.Freelancer

	for !heap.IsEmpty() && len(chosen) < k {
		f, ok := heap.Poll()
		if !ok {
			break
		}
		polled = append(polled, f)

		// A deferred service change may have drifted the category.
		if f.Category != cat {
			continue
		}
		if !f.Available || f.PlatformBanned || c.InBlacklist(f.ID) {
			continue
		}

		if best == nil {
			best = f
		}
		chosen = append(chosen, Candidate{
			ID:        f.ID,
			Composite: e.scorer.Composite(f, demand),
			Price:     f.Price,
			Rating:    f.AverageRating,
		})
	}

	// Reverse the destructive polling before reporting any outcome.
	for _, f := range polled {
		f.CompositeScore = e.scorer.Composite(f, demand)
		heap.Add(f)
	}
	metrics.UpdateHeapSize(category, heap.Len())

	if len(chosen) == 0 {
		return nil, ErrNoMatch
	}

	if !best.Employ(customerID) {
		return nil, fmt.Errorf("auto-employ of %s failed", best.ID)
	}
	e.openEmployment(ctx, c, best)

	return &MatchResult{
		Category:   cat,
		CustomerID: customerID,
		Candidates: chosen,
		BestID:     best.ID,
	}, nil
}

// CancelByCustomer terminates an active employment from the customer side.
// The freelancer takes no penalty; the customer's cancellation count rises
// and the loyalty tier is marked for recompute at the next tick.
func (e *Engine) CancelByCustomer(ctx context.Context, customerID, freelancerID string) error {
	c, ok := e.customers.Get(customerID)
	if !ok {
		return ErrUnknownCustomer
	}
	f, ok := e.freelancers.Get(freelancerID)
	if !ok {
		return ErrUnknownFreelancer
	}
	if f.EmployerID == "" {
		return ErrNotEmployed
	}
	if f.EmployerID != customerID {
		return ErrWrongEmployer
	}

	key := employmentKey(customerID, freelancerID)
	emp, ok := e.active.Get(key)
	if !ok || !emp.IsActive() {
		return ErrNoActiveEmployment
	}

	emp.CancelByCustomer(f, c)
	e.refreshInHeap(f)

	c.CancellationCount++
	e.pendingLoyalty.Put(customerID, c)

	e.active.Remove(key)
	metrics.IncrementCancellations("customer")
	metrics.UpdateActiveEmployments(e.active.Size())
	e.log.Debug(ctx, "employment cancelled by customer",
		logger.String("customer", customerID),
		logger.String("freelancer", freelancerID))
	return nil
}

// CancelByFreelancer terminates an active employment from the freelancer
// side, applying the zero-rating and skill penalties, and reports a
// platform ban when the monthly cancellation threshold is crossed.
func (e *Engine) CancelByFreelancer(ctx context.Context, freelancerID string) (*CancelResult, error) {
	f, ok := e.freelancers.Get(freelancerID)
	if !ok {
		return nil, ErrUnknownFreelancer
	}
	customerID := f.EmployerID
	if customerID == "" {
		return nil, ErrNotEmployed
	}
	c, ok := e.customers.Get(customerID)
	if !ok {
		return nil, ErrUnknownCustomer
	}

	key := employmentKey(customerID, freelancerID)
	emp, ok := e.active.Get(key)
	if !ok || !emp.IsActive() {
		return nil, ErrNoActiveEmployment
	}

	emp.CancelByFreelancer(f, c)
	e.refreshInHeap(f)
	e.active.Remove(key)
	metrics.IncrementCancellations("freelancer")
	metrics.UpdateActiveEmployments(e.active.Size())

	res := &CancelResult{CustomerID: customerID}
	if f.MonthlyCancelledJobs >= model.BanThreshold && !f.PlatformBanned {
		f.PlatformBanned = true
		res.Banned = true
		metrics.IncrementPlatformBans()
		e.log.Info(ctx, "freelancer platform banned",
			logger.String("freelancer", freelancerID),
			logger.Int("monthly_cancellations", f.MonthlyCancelledJobs))
	}
	return res, nil
}

// CompleteAndRate finishes the freelancer's active job: the customer pays
// the tier-discounted price, the rating folds into the freelancer's
// average, and the freelancer is re-ranked. All validation happens before
// any state changes.
func (e *Engine) CompleteAndRate(ctx context.Context, freelancerID string, rating int) (string, error) {
	f, ok := e.freelancers.Get(freelancerID)
	if !ok {
		return "", ErrUnknownFreelancer
	}
	customerID := f.EmployerID
	if customerID == "" {
		return "", ErrNotEmployed
	}
	c, ok := e.customers.Get(customerID)
	if !ok {
		return "", ErrUnknownCustomer
	}
	if rating < 0 || rating > 5 {
		return "", ErrInvalidRating
	}

	key := employmentKey(customerID, freelancerID)
	emp, ok := e.active.Get(key)
	if !ok || !emp.IsActive() {
		return "", ErrNoActiveEmployment
	}

	// Payment uses the tier as of now; the tier itself only refreshes at
	// the monthly tick.
	payment := int(math.Floor(float64(f.Price) * (1 - c.LoyaltyTier.Discount())))
	c.Pay(payment)
	e.pendingLoyalty.Put(customerID, c)

	demand, _ := catalog.Demand(f.Category)
	emp.Complete(f, c, rating, demand)
	e.active.Remove(key)
	e.refreshInHeap(f)

	metrics.IncrementCompletions()
	metrics.UpdateActiveEmployments(e.active.Size())
	e.log.Debug(ctx, "job completed",
		logger.String("freelancer", freelancerID),
		logger.String("customer", customerID),
		logger.Int("rating", rating),
		logger.Int("payment", payment))
	return customerID, nil
}

// ChangeService queues a category/price change; it takes effect only at
// the next monthly tick so an in-progress employment keeps its terms.
func (e *Engine) ChangeService(ctx context.Context, freelancerID, newCategory string, newPrice int) (catalog.Category, error) {
	f, ok := e.freelancers.Get(freelancerID)
	if !ok {
		return "", ErrUnknownFreelancer
	}
	if !catalog.Valid(newCategory) {
		return "", ErrUnknownCategory
	}
	if newPrice <= 0 {
		return "", ErrInvalidPrice
	}

	old := f.Category
	f.QueueServiceChange(catalog.Category(newCategory), newPrice)
	e.log.Debug(ctx, "service change queued",
		logger.String("freelancer", freelancerID),
		logger.String("from", string(old)),
		logger.String("to", newCategory))
	return old, nil
}

// Blacklist adds a freelancer to the customer's blacklist. Adding an
// already-present entry is an error, not a no-op.
func (e *Engine) Blacklist(ctx context.Context, customerID, freelancerID string) error {
	c, ok := e.customers.Get(customerID)
	if !ok {
		return ErrUnknownCustomer
	}
	if !e.freelancers.ContainsKey(freelancerID) {
		return ErrUnknownFreelancer
	}
	if c.InBlacklist(freelancerID) {
		return ErrAlreadyBlacklisted
	}
	c.AddToBlacklist(freelancerID)
	return nil
}

// Unblacklist removes a freelancer from the customer's blacklist. Removing
// an absent entry is an error, not a no-op.
func (e *Engine) Unblacklist(ctx context.Context, customerID, freelancerID string) error {
	c, ok := e.customers.Get(customerID)
	if !ok {
		return ErrUnknownCustomer
	}
	if !e.freelancers.ContainsKey(freelancerID) {
		return ErrUnknownFreelancer
	}
	if !c.InBlacklist(freelancerID) {
		return ErrNotBlacklisted
	}
	c.RemoveFromBlacklist(freelancerID)
	return nil
}

// UpdateSkill overwrites the freelancer's skill vector and re-ranks it.
func (e *Engine) UpdateSkill(ctx context.Context, freelancerID string, skills model.Skills) (catalog.Category, error) {
	f, ok := e.freelancers.Get(freelancerID)
	if !ok {
		return "", ErrUnknownFreelancer
	}
	if !skills.InRange() {
		return "", ErrInvalidSkill
	}

	f.Skills = skills
	e.refreshInHeap(f)
	return f.Category, nil
}

// SimulateMonth runs the monthly maintenance pass: every freelancer's
// status update (burnout hysteresis, bans, counter reset, queued service
// changes) with the matching heap move or re-rank, then the deferred
// loyalty recompute for dirty customers.
func (e *Engine) SimulateMonth(ctx context.Context) {
	for _, f := range e.freelancers.Values() {
		old := f.Category
		banned := f.PlatformBanned

		f.UpdateMonthlyStatus()

		if f.PlatformBanned && !banned {
			metrics.IncrementPlatformBans()
		}
		if f.Category != old {
			e.moveBetweenHeaps(f, old)
		} else {
			e.refreshInHeap(f)
		}
	}

	for _, c := range e.pendingLoyalty.Values() {
		c.UpdateLoyaltyTier()
	}
	e.pendingLoyalty.Clear()

	metrics.IncrementMonthsSimulated()
	e.log.Info(ctx, "month simulated",
		logger.Int("freelancers", e.freelancers.Size()),
		logger.Int("customers", e.customers.Size()))
}

// QueryFreelancer returns a copy of the freelancer's current state.
func (e *Engine) QueryFreelancer(ctx context.Context, id string) (model.Freelancer, error) {
	f, ok := e.freelancers.Get(id)
	if !ok {
		return model.Freelancer{}, ErrUnknownFreelancer
	}
	return *f, nil
}

// QueryCustomer returns a summary of the customer's current state.
func (e *Engine) QueryCustomer(ctx context.Context, id string) (CustomerSummary, error) {
	c, ok := e.customers.Get(id)
	if !ok {
		return CustomerSummary{}, ErrUnknownCustomer
	}
	return CustomerSummary{
		ID:               c.ID,
		TotalSpent:       c.TotalSpent,
		LoyaltyTier:      c.LoyaltyTier,
		BlacklistedCount: c.BlacklistSize(),
		EmploymentCount:  c.EmploymentCount,
	}, nil
}

// History returns the append-only employment audit trail.
func (e *Engine) History() []*model.Employment {
	out := make([]*model.Employment, len(e.history))
	copy(out, e.history)
	return out
}

// openEmployment records a newly started engagement on both sides.
func (e *Engine) openEmployment(ctx context.Context, c *model.Customer, f *model.Freelancer) {
	c.StartEmployment(f.ID)

	emp := model.NewEmployment(c.ID, f.ID)
	e.history = append(e.history, emp)
	e.active.Put(employmentKey(c.ID, f.ID), emp)

	metrics.IncrementEmployments()
	metrics.UpdateActiveEmployments(e.active.Size())
	e.log.Debug(ctx, "employment opened",
		logger.String("customer", c.ID),
		logger.String("freelancer", f.ID),
		logger.String("audit_id", emp.AuditID))
}

// addToHeap scores f against its own category and inserts it.
func (e *Engine) addToHeap(f *model.Freelancer) {
	heap, ok := e.heaps[f.Category]
	if !ok {
		return
	}
	demand, _ := catalog.Demand(f.Category)
	f.CompositeScore = e.scorer.Composite(f, demand)
	heap.Add(f)
	metrics.UpdateHeapSize(string(f.Category), heap.Len())
}

// refreshInHeap re-ranks f in its category heap after a scoring-relevant
// change: remove, rescore, reinsert.
func (e *Engine) refreshInHeap(f *model.Freelancer) {
	heap, ok := e.heaps[f.Category]
	if !ok {
		return
	}
	heap.Remove(f)
	demand, _ := catalog.Demand(f.Category)
	f.CompositeScore = e.scorer.Composite(f, demand)
	heap.Add(f)
}

// moveBetweenHeaps relocates f after an applied service change.
func (e *Engine) moveBetweenHeaps(f *model.Freelancer, old catalog.Category) {
	if heap, ok := e.heaps[old]; ok {
		heap.Remove(f)
		metrics.UpdateHeapSize(string(old), heap.Len())
	}
	e.addToHeap(f)
}

// employmentKey builds the active-employment key for the ordered pair.
func employmentKey(customerID, freelancerID string) string {
	return customerID + "#" + freelancerID
}
