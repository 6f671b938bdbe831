package fraud

// Store exposes flagged sites and their supporting lists.
type Store interface {
	List() []Site
	FindByID(id string) (Site, bool)
	Categories() []Option
	RiskLevels() []Option
	Tips() []string
}

// MemoryStore implements Store with immutable in-memory slices.
type MemoryStore struct {
	sites      []Site
	categories []Category
	tips       []string
}

// NewMemoryStore returns a MemoryStore over the given sites, the category
// order used by selectors and the safety tips.
func NewMemoryStore(sites []Site, categories []Category, tips []string) *MemoryStore {
	return &MemoryStore{
		sites:      append([]Site(nil), sites...),
		categories: append([]Category(nil), categories...),
		tips:       append([]string(nil), tips...),
	}
}

// List returns a copy of the sites in their original order.
func (s *MemoryStore) List() []Site {
	return append([]Site(nil), s.sites...)
}

// FindByID looks up a site by identifier.
func (s *MemoryStore) FindByID(id string) (Site, bool) {
	for _, site := range s.sites {
		if site.ID == id {
			return site, true
		}
	}
	return Site{}, false
}

// Categories returns the selector options with "all" first.
func (s *MemoryStore) Categories() []Option {
	options := make([]Option, 0, len(s.categories)+1)
	options = append(options, Option{Value: AllCategories, Label: "All Categories"})
	for _, c := range s.categories {
		options = append(options, Option{Value: string(c), Label: c.Label()})
	}
	return options
}

// RiskLevels returns the risk grades from least to most dangerous.
func (s *MemoryStore) RiskLevels() []Option {
	levels := []RiskLevel{RiskLow, RiskMedium, RiskHigh}
	options := make([]Option, 0, len(levels))
	for _, l := range levels {
		options = append(options, Option{Value: string(l), Label: l.Label()})
	}
	return options
}

// Tips returns the safety advice shown under the listing.
func (s *MemoryStore) Tips() []string {
	return append([]string(nil), s.tips...)
}
