// Package dataset loads the sample data shown by the dashboard.
package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chart"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/fraud"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/portfolio"
)

//go:embed sample.yaml
var sampleYAML []byte

var (
	ErrDuplicateSymbol  = errors.New("duplicate position symbol")
	ErrDuplicateSiteID  = errors.New("duplicate fraud site id")
	ErrUnknownCategory  = errors.New("unknown fraud category")
	ErrUnknownRiskLevel = errors.New("unknown risk level")
	ErrEmptyResponses   = errors.New("response pool is empty")
)

// Dataset is every piece of static content the dashboard renders.
type Dataset struct {
	Greeting  string               `yaml:"greeting"`
	Responses []string             `yaml:"responses"`
	Positions []portfolio.Position `yaml:"positions"`
	Chart     chart.Series         `yaml:"chart"`
	Fraud     Fraud                `yaml:"fraud"`
}

// Fraud groups the fraud alert listing with its selector and tips.
type Fraud struct {
	Categories []fraud.Category `yaml:"categories"`
	Sites      []fraud.Site     `yaml:"sites"`
	Tips       []string         `yaml:"tips"`
}

// Default returns the embedded sample dataset.
func Default() (*Dataset, error) {
	return Parse(sampleYAML)
}

// Load reads a dataset from path, or the embedded sample when path is empty.
func Load(path string) (*Dataset, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	ds, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates a YAML dataset document.
func Parse(raw []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.Chart.Headline.Value == 0 {
		// fall back to the sum of holdings when no headline is configured
		ds.Chart.Headline.Value = portfolio.NewMemoryStore(ds.Positions).TotalValue()
	}
	return &ds, nil
}

// Validate checks the identity and enum constraints of the records.
func (d *Dataset) Validate() error {
	if len(d.Responses) == 0 {
		return ErrEmptyResponses
	}

	symbols := make(map[string]struct{}, len(d.Positions))
	for _, p := range d.Positions {
		key := strings.ToUpper(p.Symbol)
		if _, ok := symbols[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateSymbol, p.Symbol)
		}
		symbols[key] = struct{}{}
	}

	for _, c := range d.Fraud.Categories {
		if !c.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, c)
		}
	}

	ids := make(map[string]struct{}, len(d.Fraud.Sites))
	for _, s := range d.Fraud.Sites {
		if _, ok := ids[s.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateSiteID, s.ID)
		}
		ids[s.ID] = struct{}{}
		if !s.Category.Valid() {
			return fmt.Errorf("%w: %s (site %s)", ErrUnknownCategory, s.Category, s.ID)
		}
		if !s.RiskLevel.Valid() {
			return fmt.Errorf("%w: %s (site %s)", ErrUnknownRiskLevel, s.RiskLevel, s.ID)
		}
	}
	return nil
}

// PortfolioStore builds the position store for this dataset.
func (d *Dataset) PortfolioStore() *portfolio.MemoryStore {
	return portfolio.NewMemoryStore(d.Positions)
}

// FraudStore builds the flagged-site store for this dataset.
func (d *Dataset) FraudStore() *fraud.MemoryStore {
	return fraud.NewMemoryStore(d.Fraud.Sites, d.Fraud.Categories, d.Fraud.Tips)
}
