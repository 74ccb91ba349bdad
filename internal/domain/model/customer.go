package model

// Tier is a customer loyalty level, ordered from BRONZE up to PLATINUM.
type Tier string

// The four loyalty tiers.
const (
	Bronze   Tier = "BRONZE"
	Silver   Tier = "SILVER"
	Gold     Tier = "GOLD"
	Platinum Tier = "PLATINUM"
)

// Loyalty thresholds on effective spend and the per-cancellation deduction.
const (
	silverThreshold   = 500
	goldThreshold     = 2000
	platinumThreshold = 5000

	cancellationDeduction = 250
)

// Discount returns the payment discount fraction for the tier.
func (t Tier) Discount() float64 {
	switch t {
	case Silver:
		return 0.05
	case Gold:
		return 0.10
	case Platinum:
		return 0.15
	default:
		return 0
	}
}

// Customer is a registered service buyer. The loyalty tier is deliberately
// stale between monthly ticks: payments only mark the customer dirty, and
// UpdateLoyaltyTier runs when the engine processes the tick.
type Customer struct {
	ID                string
	TotalSpent        int
	LoyaltyTier       Tier
	EmploymentCount   int
	CancellationCount int

	blacklist map[string]struct{}
	active    map[string]struct{}
}

// NewCustomer creates a customer starting at the BRONZE tier.
func NewCustomer(id string) *Customer {
	return &Customer{
		ID:          id,
		LoyaltyTier: Bronze,
		blacklist:   make(map[string]struct{}),
		active:      make(map[string]struct{}),
	}
}

// InBlacklist reports whether freelancerID is blacklisted by this customer.
func (c *Customer) InBlacklist(freelancerID string) bool {
	_, ok := c.blacklist[freelancerID]
	return ok
}

// AddToBlacklist blacklists a freelancer.
func (c *Customer) AddToBlacklist(freelancerID string) {
	c.blacklist[freelancerID] = struct{}{}
}

// RemoveFromBlacklist removes a freelancer from the blacklist.
func (c *Customer) RemoveFromBlacklist(freelancerID string) {
	delete(c.blacklist, freelancerID)
}

// BlacklistSize returns the number of blacklisted freelancers.
func (c *Customer) BlacklistSize() int { return len(c.blacklist) }

// StartEmployment records a new engagement with freelancerID.
func (c *Customer) StartEmployment(freelancerID string) {
	c.active[freelancerID] = struct{}{}
	c.EmploymentCount++
}

// FinishEmployment removes freelancerID from the active set.
func (c *Customer) FinishEmployment(freelancerID string) {
	delete(c.active, freelancerID)
}

// ActiveCount returns the number of freelancers currently employed.
func (c *Customer) ActiveCount() int { return len(c.active) }

// Pay adds an already-discounted amount to the customer's total spend.
func (c *Customer) Pay(amount int) {
	c.TotalSpent += amount
}

// EffectiveSpent deducts 250 per customer-initiated cancellation from the
// total spend, floored at zero.
func (c *Customer) EffectiveSpent() int {
	return max(0, c.TotalSpent-c.CancellationCount*cancellationDeduction)
}

// UpdateLoyaltyTier recomputes the tier from effective spend.
func (c *Customer) UpdateLoyaltyTier() {
	spent := c.EffectiveSpent()
	switch {
	case spent < silverThreshold:
		c.LoyaltyTier = Bronze
	case spent < goldThreshold:
		c.LoyaltyTier = Silver
	case spent < platinumThreshold:
		c.LoyaltyTier = Gold
	default:
		c.LoyaltyTier = Platinum
	}
}
