package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/portfolio-desk/backend/internal/model/portfolio"
)

const advisorRules = `You are the investment assistant of a portfolio dashboard.
- Keep answers to two or three sentences.
- Ground suggestions in the holdings listed below.
- Suggest diversification, hedging or income ideas; never promise returns.
- Remind the user that suggestions are informational, not financial advice, when they ask what to buy or sell.`

// BuildAdvisorPrompt renders the system prompt with the current holdings.
func BuildAdvisorPrompt(holdings portfolio.Store) string {
	var b strings.Builder
	b.WriteString(advisorRules)

	if holdings == nil {
		return b.String()
	}
	positions := holdings.List()
	if len(positions) == 0 {
		return b.String()
	}

	b.WriteString("\n\nHoldings:")
	for _, p := range positions {
		fmt.Fprintf(&b, "\n- %s (%s): price %.2f, day change %+.2f%%", p.Symbol, p.Name, p.Price, p.ChangePercent)
		if p.Quantity != nil {
			fmt.Fprintf(&b, ", %d shares", *p.Quantity)
		}
		if p.Value != nil {
			fmt.Fprintf(&b, ", value $%.2f", *p.Value)
		}
	}
	fmt.Fprintf(&b, "\nTotal value: $%.2f", holdings.TotalValue())
	return b.String()
}
