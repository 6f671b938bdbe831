package fraud

// Category classifies a flagged site by the kind of scheme it runs.
type Category string

const (
	CategoryCrypto     Category = "crypto"
	CategoryStock      Category = "stock"
	CategoryNFT        Category = "nft"
	CategoryForex      Category = "forex"
	CategoryInvestment Category = "investment"
)

// AllCategories is the selector value that disables category filtering.
const AllCategories = "all"

var categoryLabels = map[Category]string{
	CategoryCrypto:     "Cryptocurrency",
	CategoryStock:      "Stock Trading",
	CategoryNFT:        "NFTs",
	CategoryForex:      "Forex",
	CategoryInvestment: "Investment",
}

// Label returns the display name of the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// RiskLevel grades how dangerous a flagged site is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskLabels = map[RiskLevel]string{
	RiskLow:    "Low Risk",
	RiskMedium: "Medium Risk",
	RiskHigh:   "High Risk",
}

// Label returns the display name of the risk level.
func (r RiskLevel) Label() string {
	return riskLabels[r]
}

// Valid reports whether r is one of the known risk levels.
func (r RiskLevel) Valid() bool {
	_, ok := riskLabels[r]
	return ok
}

// Site is a known fraudulent investment website.
type Site struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	URL         string    `json:"url" yaml:"url"`
	Category    Category  `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	RiskLevel   RiskLevel `json:"riskLevel" yaml:"riskLevel"`
	DateAdded   string    `json:"dateAdded" yaml:"dateAdded"`
}

// SearchFields returns the fields matched by free-text search.
func (s Site) SearchFields() []string {
	return []string{s.Name, s.URL}
}

// CategoryKey returns the category token compared against a selector.
func (s Site) CategoryKey() string {
	return string(s.Category)
}

// Option is a selectable category entry, including the "all" pseudo category.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
