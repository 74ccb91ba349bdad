package app

import "errors"

// Sentinel kinds for engine operation failures. Every operation validates
// its arguments against these before mutating any state.
var (
	ErrInvalidID          = errors.New("invalid id")
	ErrDuplicateID        = errors.New("id already registered")
	ErrUnknownCategory    = errors.New("unknown service category")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrInvalidSkill       = errors.New("skill out of range")
	ErrInvalidRating      = errors.New("rating out of range")
	ErrInvalidLimit       = errors.New("candidate limit must be positive")
	ErrUnknownCustomer    = errors.New("customer not found")
	ErrUnknownFreelancer  = errors.New("freelancer not found")
	ErrFreelancerBanned   = errors.New("freelancer is platform banned")
	ErrBlacklisted        = errors.New("freelancer is blacklisted by customer")
	ErrUnavailable        = errors.New("freelancer is not available")
	ErrNotEmployed        = errors.New("freelancer has no employer")
	ErrWrongEmployer      = errors.New("freelancer is employed by another customer")
	ErrNoActiveEmployment = errors.New("no active employment")
	ErrAlreadyBlacklisted = errors.New("freelancer already blacklisted")
	ErrNotBlacklisted     = errors.New("freelancer not blacklisted")

	// ErrNoMatch signals an empty candidate set for a job request; it is a
	// normal outcome, not a command failure.
	ErrNoMatch = errors.New("no freelancers available")
)
