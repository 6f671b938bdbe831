package chart

// Point is a single sample on the portfolio value chart.
type Point struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// TimeRange is a selectable chart window.
type TimeRange struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// DefaultRange is selected when the caller does not pick one.
const DefaultRange = "1y"

// Trend is the overall direction of a series.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Headline is the summary figure printed above the chart.
type Headline struct {
	Value         float64 `json:"value" yaml:"value"`
	ChangePercent float64 `json:"changePercent" yaml:"changePercent"`
}

// Series is the static portfolio value history with its range selector.
type Series struct {
	Points   []Point     `json:"points" yaml:"points"`
	Ranges   []TimeRange `json:"ranges" yaml:"ranges"`
	Headline Headline    `json:"headline" yaml:"headline"`
}

// Trend reports up when the last point is above the first one.
func (s Series) Trend() Trend {
	if len(s.Points) < 2 {
		return TrendUp
	}
	if s.Points[len(s.Points)-1].Value > s.Points[0].Value {
		return TrendUp
	}
	return TrendDown
}

// ValidRange reports whether value names one of the series ranges.
func (s Series) ValidRange(value string) bool {
	for _, r := range s.Ranges {
		if r.Value == value {
			return true
		}
	}
	return false
}
