package model

import (
	"github.com/google/uuid"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/catalog"
)

// State is the employment lifecycle state. Every transition out of Active
// is terminal and one-shot; calls against a non-Active employment are
// silent no-ops.
type State int

// Employment states.
const (
	Active State = iota
	Completed
	CancelledByCustomer
	CancelledByFreelancer
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	case CancelledByCustomer:
		return "cancelled_by_customer"
	case CancelledByFreelancer:
		return "cancelled_by_freelancer"
	default:
		return "unknown"
	}
}

// Employment joins one customer and one freelancer. It holds IDs rather
// than entity references; the engine resolves both sides when driving a
// transition. Records are retained after termination for audit.
type Employment struct {
	AuditID      string
	CustomerID   string
	FreelancerID string
	State        State
}

// NewEmployment opens an active employment between the two parties.
func NewEmployment(customerID, freelancerID string) *Employment {
	return &Employment{
		AuditID:      uuid.NewString(),
		CustomerID:   customerID,
		FreelancerID: freelancerID,
		State:        Active,
	}
}

// IsActive reports whether the employment is still in progress.
func (e *Employment) IsActive() bool { return e.State == Active }

// Complete finishes the job with a rating and the service demand profile.
// Returns false without effect when the employment is not active.
func (e *Employment) Complete(f *Freelancer, c *Customer, rating int, demand catalog.Profile) bool {
	if e.State != Active {
		return false
	}
	e.State = Completed

	f.CompleteJob(rating, demand)
	c.FinishEmployment(f.ID)
	return true
}

// CancelByCustomer terminates the employment from the customer side. The
// freelancer is freed without any rating or skill penalty.
func (e *Employment) CancelByCustomer(f *Freelancer, c *Customer) bool {
	if e.State != Active {
		return false
	}
	e.State = CancelledByCustomer

	f.Free()
	c.FinishEmployment(f.ID)
	return true
}

// CancelByFreelancer terminates the employment from the freelancer side,
// carrying the zero-rating and skill penalties.
func (e *Employment) CancelByFreelancer(f *Freelancer, c *Customer) bool {
	if e.State != Active {
		return false
	}
	e.State = CancelledByFreelancer

	f.CancelJob()
	c.FinishEmployment(f.ID)
	return true
}
