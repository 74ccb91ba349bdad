// Package scoring computes the composite ranking score that orders
// freelancers within a service category.
package scoring

import (
	"math"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/catalog"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/model"
)

// Default scoring weights. The composite is
// scale * (skill*wS + rating*wR + reliability*wL - burnoutPenalty),
// floored to an integer.
const (
	defaultSkillWeight       = 0.55
	defaultRatingWeight      = 0.25
	defaultReliabilityWeight = 0.20
	defaultBurnoutPenalty    = 0.45

	maxRating  = 5.0
	scoreScale = 10000
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the three component weights. Non-positive values
// leave the corresponding default in place.
func WithWeights(skill, rating, reliability float64) Option {
	return func(s *Scorer) {
		if skill > 0 {
			s.skillWeight = skill
		}
		if rating > 0 {
			s.ratingWeight = rating
		}
		if reliability > 0 {
			s.reliabilityWeight = reliability
		}
	}
}

// WithBurnoutPenalty overrides the burnout deduction.
func WithBurnoutPenalty(penalty float64) Option {
	return func(s *Scorer) {
		if penalty > 0 {
			s.burnoutPenalty = penalty
		}
	}
}

// Scorer computes composite scores from a freelancer's current state and a
// category demand profile.
type Scorer struct {
	skillWeight       float64
	ratingWeight      float64
	reliabilityWeight float64
	burnoutPenalty    float64
}

// New creates a Scorer with the default weights, adjusted by options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		skillWeight:       defaultSkillWeight,
		ratingWeight:      defaultRatingWeight,
		reliabilityWeight: defaultReliabilityWeight,
		burnoutPenalty:    defaultBurnoutPenalty,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SkillAlignment returns dot(skills, demand) / (100 * sum(demand)), a
// normalized fit in [0, 1]. Zero-demand profiles score zero.
func SkillAlignment(skills model.Skills, demand catalog.Profile) float64 {
	sum := demand.Sum()
	if sum == 0 {
		return 0
	}

	dot := 0
	for i := range skills {
		dot += skills[i] * demand[i]
	}
	return float64(dot) / (100 * float64(sum))
}

// Composite computes the integer ranking score for f against demand. The
// result is used purely for ordering and may be negative for burned-out
// freelancers with a poor fit.
func (s *Scorer) Composite(f *model.Freelancer, demand catalog.Profile) int {
	skillScore := SkillAlignment(f.Skills, demand)
	ratingScore := f.AverageRating / maxRating

	reliabilityScore := 1.0
	if total := f.CompletedJobs + f.CancelledJobs; total > 0 {
		reliabilityScore = 1.0 - float64(f.CancelledJobs)/float64(total)
	}

	penalty := 0.0
	if f.Burnout {
		penalty = s.burnoutPenalty
	}

	composite := s.skillWeight*skillScore +
		s.ratingWeight*ratingScore +
		s.reliabilityWeight*reliabilityScore -
		penalty

	return int(math.Floor(scoreScale * composite))
}
