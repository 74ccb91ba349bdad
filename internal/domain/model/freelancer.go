// Package model contains the platform entities and their lifecycle rules.
package model

import (
	"sort"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/catalog"
)

// Rating and lifecycle thresholds.
const (
	initialRating = 5.0 // every freelancer starts with one implicit 5-star rating

	skillGainThreshold = 4 // minimum rating that triggers skill gains
	cancelSkillPenalty = 3 // per-slot degradation on freelancer cancellation

	burnoutOnThreshold  = 5 // monthly completions that switch burnout on
	burnoutOffThreshold = 2 // monthly completions at or below which burnout clears
	// BanThreshold is the monthly cancellation count that triggers a permanent
	// platform ban.
	BanThreshold = 5
)

// Skills is a freelancer's 5-slot skill vector [T, C, R, E, A].
type Skills [catalog.SkillCount]int

// InRange reports whether every slot is within [0, 100].
func (s Skills) InRange() bool {
	for _, v := range s {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// Freelancer is a registered service provider. Cross-references are kept as
// IDs; the engine resolves them against its tables.
type Freelancer struct {
	ID       string
	Category catalog.Category
	Price    int

	Skills Skills

	Available      bool
	Burnout        bool
	PlatformBanned bool

	AverageRating float64
	RatingCount   int

	// CompositeScore is a derived ranking cache, refreshed by the engine
	// before every heap insertion.
	CompositeScore int

	CompletedJobs        int
	CancelledJobs        int
	MonthlyCompletedJobs int
	MonthlyCancelledJobs int

	queuedCategory  catalog.Category
	queuedPrice     int
	hasQueuedChange bool

	// EmployerID is the customer currently employing this freelancer,
	// empty when available.
	EmployerID string
}

// NewFreelancer creates a freelancer seeded with a single 5-star rating.
func NewFreelancer(id string, category catalog.Category, price int, skills Skills) *Freelancer {
	return &Freelancer{
		ID:            id,
		Category:      category,
		Price:         price,
		Skills:        skills,
		Available:     true,
		AverageRating: initialRating,
		RatingCount:   1,
	}
}

// Key implements the repository element identity capability.
func (f *Freelancer) Key() string { return f.ID }

// Less orders freelancers for ranking: higher composite score first, ties
// broken by ID ascending so equal scores iterate reproducibly.
func (f *Freelancer) Less(other *Freelancer) bool {
	if f.CompositeScore != other.CompositeScore {
		return f.CompositeScore > other.CompositeScore
	}
	return f.ID < other.ID
}

// Employ marks the freelancer as taken by customerID. It fails without
// effect when the freelancer is unavailable or platform banned.
func (f *Freelancer) Employ(customerID string) bool {
	if !f.Available || f.PlatformBanned {
		return false
	}
	f.Available = false
	f.EmployerID = customerID
	return true
}

// Free releases the freelancer back to the available pool.
func (f *Freelancer) Free() {
	f.Available = true
	f.EmployerID = ""
}

// CompleteJob records a finished engagement: folds the rating into the
// running average, bumps completion counters, applies skill gains for
// ratings of 4 and above, and frees the freelancer.
func (f *Freelancer) CompleteJob(rating int, demand catalog.Profile) {
	f.recordRating(float64(rating))

	f.CompletedJobs++
	f.MonthlyCompletedJobs++

	if rating >= skillGainThreshold {
		f.applySkillGains(demand)
	}

	f.Free()
}

// CancelJob records a freelancer-initiated cancellation: counts as a zero
// rating, bumps cancellation counters, degrades every skill, and frees the
// freelancer.
func (f *Freelancer) CancelJob() {
	f.recordRating(0)

	f.CancelledJobs++
	f.MonthlyCancelledJobs++

	for i := range f.Skills {
		f.Skills[i] = max(0, f.Skills[i]-cancelSkillPenalty)
	}

	f.Free()
}

// recordRating folds one more rating into the running average using the
// incremental mean formula.
func (f *Freelancer) recordRating(rating float64) {
	n := float64(f.RatingCount)
	f.AverageRating = (f.AverageRating*n + rating) / (n + 1)
	f.RatingCount++
}

// applySkillGains rewards the slots the service demanded most: +2 to the
// top-demand slot, +1 to the next two, capped at 100. Equal demand values
// rank by the lower slot index, keeping the pass deterministic.
func (f *Freelancer) applySkillGains(demand catalog.Profile) {
	slots := []int{0, 1, 2, 3, 4}
	sort.SliceStable(slots, func(i, j int) bool {
		return demand[slots[i]] > demand[slots[j]]
	})

	f.gainSkill(slots[0], 2)
	f.gainSkill(slots[1], 1)
	f.gainSkill(slots[2], 1)
}

func (f *Freelancer) gainSkill(slot, amount int) {
	f.Skills[slot] = min(100, f.Skills[slot]+amount)
}

// QueueServiceChange records a category/price change to be applied at the
// next monthly tick. A second call overwrites the first.
func (f *Freelancer) QueueServiceChange(category catalog.Category, price int) {
	f.queuedCategory = category
	f.queuedPrice = price
	f.hasQueuedChange = true
}

// HasQueuedChange reports whether a deferred service change is pending.
func (f *Freelancer) HasQueuedChange() bool { return f.hasQueuedChange }

// QueuedChange returns the pending category and price; only meaningful when
// HasQueuedChange reports true.
func (f *Freelancer) QueuedChange() (catalog.Category, int) {
	return f.queuedCategory, f.queuedPrice
}

// UpdateMonthlyStatus runs the per-freelancer part of the monthly tick:
// burnout hysteresis, the one-directional platform ban, monthly counter
// reset, and application of any queued service change.
func (f *Freelancer) UpdateMonthlyStatus() {
	if !f.Burnout && f.MonthlyCompletedJobs >= burnoutOnThreshold {
		f.Burnout = true
	} else if f.Burnout && f.MonthlyCompletedJobs <= burnoutOffThreshold {
		f.Burnout = false
	}

	if f.MonthlyCancelledJobs >= BanThreshold {
		f.PlatformBanned = true
	}

	f.MonthlyCompletedJobs = 0
	f.MonthlyCancelledJobs = 0

	if f.hasQueuedChange {
		f.Category = f.queuedCategory
		f.Price = f.queuedPrice
		f.hasQueuedChange = false
		f.queuedCategory = ""
		f.queuedPrice = 0
	}
}
