// Package catalog defines the fixed set of service categories and the
// per-category skill demand profiles used for matching.
package catalog

import "fmt"

// SkillCount is the dimensionality of every skill and demand vector.
const SkillCount = 5

// Skill slot indices, fixed-ordered across the whole system.
const (
	SlotTechnical = iota
	SlotCommunication
	SlotCreativity
	SlotEfficiency
	SlotAttention
)

// Profile is a 5-dimensional skill-importance vector [T, C, R, E, A].
type Profile [SkillCount]int

// Sum returns the total demand across all slots.
func (p Profile) Sum() int {
	total := 0
	for _, v := range p {
		total += v
	}
	return total
}

// Category identifies one service type offered on the platform.
type Category string

// The fixed service categories.
const (
	Paint         Category = "paint"
	WebDev        Category = "web_dev"
	GraphicDesign Category = "graphic_design"
	DataEntry     Category = "data_entry"
	Tutoring      Category = "tutoring"
	Cleaning      Category = "cleaning"
	Writing       Category = "writing"
	Photography   Category = "photography"
	Plumbing      Category = "plumbing"
	Electrical    Category = "electrical"
)

// demandByCategory maps every category to its demand profile. This is the
// single source of truth for both scoring and completion skill gains.
var demandByCategory = map[Category]Profile{
	Paint:         {70, 60, 50, 85, 90},
	WebDev:        {95, 75, 85, 80, 90},
	GraphicDesign: {75, 85, 95, 70, 85},
	DataEntry:     {50, 50, 30, 95, 95},
	Tutoring:      {80, 95, 70, 90, 75},
	Cleaning:      {40, 60, 40, 90, 85},
	Writing:       {70, 85, 90, 80, 95},
	Photography:   {85, 80, 90, 75, 90},
	Plumbing:      {85, 65, 60, 90, 85},
	Electrical:    {90, 65, 70, 95, 95},
}

// ordered keeps a stable iteration order for Categories().
var ordered = []Category{
	Paint, WebDev, GraphicDesign, DataEntry, Tutoring,
	Cleaning, Writing, Photography, Plumbing, Electrical,
}

// Valid reports whether s names a known service category.
func Valid(s string) bool {
	_, ok := demandByCategory[Category(s)]
	return ok
}

// Demand returns the demand profile for a category. The boolean is false
// for unknown categories.
func Demand(c Category) (Profile, bool) {
	p, ok := demandByCategory[c]
	return p, ok
}

// Categories returns all categories in a stable order.
func Categories() []Category {
	out := make([]Category, len(ordered))
	copy(out, ordered)
	return out
}

// Validate checks the demand table once at startup: every listed category
// must carry a profile with each slot in [0,100] and a nonzero sum.
func Validate() error {
	if len(ordered) != len(demandByCategory) {
		return fmt.Errorf("catalog: %d ordered categories but %d profiles", len(ordered), len(demandByCategory))
	}
	for _, c := range ordered {
		p, ok := demandByCategory[c]
		if !ok {
			return fmt.Errorf("catalog: category %q has no demand profile", c)
		}
		for i, v := range p {
			if v < 0 || v > 100 {
				return fmt.Errorf("catalog: category %q slot %d demand %d out of range", c, i, v)
			}
		}
		if p.Sum() == 0 {
			return fmt.Errorf("catalog: category %q has zero total demand", c)
		}
	}
	return nil
}
