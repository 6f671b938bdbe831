package portfolio

// Position is a tradable holding shown on the portfolio tab.
type Position struct {
	Symbol        string   `json:"symbol" yaml:"symbol"`
	Name          string   `json:"name" yaml:"name"`
	Price         float64  `json:"price" yaml:"price"`
	Change        float64  `json:"change" yaml:"change"`
	ChangePercent float64  `json:"changePercent" yaml:"changePercent"`
	Quantity      *int     `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Value         *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// SearchFields returns the fields matched by free-text search.
func (p Position) SearchFields() []string {
	return []string{p.Symbol, p.Name}
}

// Gaining reports whether the position moved up (or held flat) today.
func (p Position) Gaining() bool {
	return p.Change >= 0
}
