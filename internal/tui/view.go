package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zhouzirui/portfolio-desk/backend/internal/filter"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chart"
	chatmodel "github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/fraud"
)

const (
	emptyPositions = "No stocks matching your search criteria."
	emptySites     = "No fraudulent sites matching your search criteria."
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.active {
	case TabAssistant:
		b.WriteString(m.renderAssistant())
	case TabFraud:
		b.WriteString(m.renderFraud())
	default:
		b.WriteString(m.renderPortfolio())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(tabTitles))
	for i, title := range tabTitles {
		if Tab(i) == m.active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, tabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderPortfolio() string {
	var b strings.Builder
	series := m.deps.Chart

	b.WriteString(titleStyle.Render("Portfolio Value"))
	b.WriteString("\n")
	headline := fmt.Sprintf("$%s  %+.1f%%", formatMoney(series.Headline.Value), series.Headline.ChangePercent)
	b.WriteString(changeStyle(series.Headline.ChangePercent >= 0).Render(headline))
	b.WriteString("\n")
	b.WriteString(changeStyle(series.Trend() == chart.TrendUp).Render(sparkline(series.Points)))
	b.WriteString("\n")
	b.WriteString(m.renderRanges())
	b.WriteString("\n\n")

	b.WriteString(m.portfolioSearch.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("up/down to select a stock"))
	b.WriteString("\n\n")

	positions := m.visiblePositions()
	if len(positions) == 0 {
		b.WriteString(dimStyle.Render(emptyPositions))
		b.WriteString("\n")
		return b.String()
	}
	for _, p := range positions {
		line := fmt.Sprintf("%-6s %-24s %10.2f", p.Symbol, p.Name, p.Price)
		change := fmt.Sprintf("%+8.2f (%+.2f%%)", p.Change, p.ChangePercent)
		if p.Symbol == m.selected {
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("  ")
		b.WriteString(changeStyle(p.Gaining()).Render(change))
		if p.Quantity != nil && p.Value != nil {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %d shares  $%s", *p.Quantity, formatMoney(*p.Value))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderRanges() string {
	parts := make([]string, 0, len(m.deps.Chart.Ranges))
	for i, r := range m.deps.Chart.Ranges {
		if i == m.rangeIdx {
			parts = append(parts, activeTabStyle.Padding(0, 1).Render(r.Label))
		} else {
			parts = append(parts, dimStyle.Render(r.Label))
		}
	}
	return strings.Join(parts, " ") + dimStyle.Render("  (ctrl+r)")
}

func (m *Model) renderAssistant() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Investment Assistant"))
	b.WriteString("\n\n")

	for _, msg := range m.messages {
		if msg.Sender == chatmodel.SenderUser {
			b.WriteString(userStyle.Render("You: " + msg.Content))
		} else {
			b.WriteString(botStyle.Render(msg.Content))
		}
		b.WriteString("\n")
	}
	if m.pending {
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(" typing..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.chatInput.View())
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderFraud() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Fraudulent Investment Websites"))
	b.WriteString("\n\n")

	b.WriteString(m.fraudSearch.View())
	b.WriteString("\n")
	category := m.selectedCategory()
	b.WriteString(dimStyle.Render(fmt.Sprintf("Category: %s (ctrl+f)", category.Label)))
	b.WriteString("\n\n")

	sites := filter.Filter(m.deps.Sites.List(), m.fraudSearch.Value(), category.Value)
	if len(sites) == 0 {
		b.WriteString(dimStyle.Render(emptySites))
		b.WriteString("\n")
	}
	for _, s := range sites {
		risk, ok := riskStyles[string(s.RiskLevel)]
		if !ok {
			risk = dimStyle
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s\n", s.Name, dimStyle.Render(s.URL), risk.Render(s.RiskLevel.Label())))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s · added %s", s.Category.Label(), s.DateAdded)))
		b.WriteString("\n  ")
		b.WriteString(s.Description)
		b.WriteString("\n")
	}

	tips := m.deps.Sites.Tips()
	if len(tips) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Safety Tips"))
		b.WriteString("\n")
		for _, tip := range tips {
			b.WriteString("• " + tip + "\n")
		}
	}
	return b.String()
}

func (m *Model) selectedCategory() fraud.Option {
	if m.categoryIdx < len(m.categories) {
		return m.categories[m.categoryIdx]
	}
	return fraud.Option{Value: fraud.AllCategories, Label: "All Categories"}
}

func (m *Model) renderStatus() string {
	text := m.status + " · tab to switch · esc to quit"
	if m.width > 0 {
		return statusStyle.Width(m.width).Render(text)
	}
	return statusStyle.Render(text)
}

func changeStyle(up bool) lipgloss.Style {
	if up {
		return gainStyle
	}
	return lossStyle
}

func sparkline(points []chart.Point) string {
	if len(points) == 0 {
		return ""
	}
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points {
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}
	out := make([]rune, 0, len(points))
	for _, p := range points {
		idx := 0
		if hi > lo {
			idx = int((p.Value - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out = append(out, sparkBlocks[idx])
	}
	return string(out)
}

// formatMoney renders a value with thousands separators and two decimals.
func formatMoney(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%.2f", v)
}
