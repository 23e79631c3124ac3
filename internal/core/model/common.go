package model

// Category groups record types for aggregation and display.
type Category int

const (
	CategoryLoading Category = iota
	CategoryScripting
	CategoryRendering

	categoryCount
)

// CategoryInfo is the display metadata of a category.
type CategoryInfo struct {
	Name  string
	Title string
	Color string // ANSI color sequence
}

var categoryInfo = [categoryCount]CategoryInfo{
	CategoryLoading:   {Name: "loading", Title: "Loading", Color: "\033[34m"},
	CategoryScripting: {Name: "scripting", Title: "Scripting", Color: "\033[33m"},
	CategoryRendering: {Name: "rendering", Title: "Rendering", Color: "\033[35m"},
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{CategoryLoading, CategoryScripting, CategoryRendering}
}

func (c Category) Info() CategoryInfo {
	if c < 0 || c >= categoryCount {
		return CategoryInfo{Name: "unknown", Title: "Unknown"}
	}
	return categoryInfo[c]
}

func (c Category) String() string {
	return c.Info().Name
}

func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ParseCategory resolves a category by name.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories() {
		if c.Info().Name == name {
			return c, true
		}
	}
	return 0, false
}

// CategoryStats holds seconds per category.
type CategoryStats [categoryCount]float64

// Sum returns the total over all categories.
func (s *CategoryStats) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Add adds other into s.
func (s *CategoryStats) Add(other *CategoryStats) {
	for i, v := range other {
		s[i] += v
	}
}

// Map converts the stats into a name keyed map.
func (s *CategoryStats) Map() map[string]float64 {
	m := make(map[string]float64, len(s))
	for _, c := range Categories() {
		m[c.String()] = s[c]
	}
	return m
}
