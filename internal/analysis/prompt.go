package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
)

// BuildPrompt renders the analyst prompt from one scan result. The
// prompt carries the full per-sector data plus a short summary so the
// model does not have to recompute the ranking.
func BuildPrompt(result *contracts.ScanResult) (string, error) {
	if len(result.Sectors) == 0 {
		return "", fmt.Errorf("scan result has no sectors to analyze")
	}

	data, err := json.MarshalIndent(result.Sectors, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode sector data: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are an advanced market analyst with 20+ years of experience in technical analysis, ")
	b.WriteString("sector rotation, and market cycles.\n\n")
	b.WriteString("Analyze the following sector rotation data and provide a comprehensive market assessment:\n\n")
	b.WriteString("SECTOR DATA:\n")
	b.Write(data)
	b.WriteString("\n\nSUMMARY METRICS:\n")

	if result.AvgMomentum != nil {
		fmt.Fprintf(&b, "- Average Market Momentum: %.2f\n", *result.AvgMomentum)
	} else {
		b.WriteString("- Average Market Momentum: unavailable\n")
	}
	fmt.Fprintf(&b, "- Market Sentiment: %s\n", result.Sentiment)
	fmt.Fprintf(&b, "- Strongest Sectors: %s\n", topSectors(result, false))
	fmt.Fprintf(&b, "- Weakest Sectors: %s\n", topSectors(result, true))

	b.WriteString(`
YOUR ANALYSIS SHOULD INCLUDE:

1. **Market Phase Assessment**: Are we in a bull market, bear market, or transitional phase?

2. **Risk Environment**: Is this a Risk-On or Risk-Off environment? What does the sector rotation tell us?

3. **Sector Rotation Pattern**: What does the current rotation pattern indicate about market expectations?

4. **Cyclical vs Defensive**: Analyze the performance of cyclical sectors versus defensive sectors.

5. **Key Insights**: What are 3-5 actionable insights for traders and investors?

6. **Market Outlook**: Short-term (1-2 weeks) and medium-term (1-3 months) outlook.

7. **Risk Factors**: What are the main risks to watch?

Please be specific, data-driven, and provide your professional opinion based on the sector metrics provided.`)

	return b.String(), nil
}

// topSectors lists up to three names from either end of the ranking
func topSectors(result *contracts.ScanResult, weakest bool) string {
	if len(result.Ranking) == 0 {
		return "unavailable"
	}

	ranking := result.Ranking
	var picked []string
	for i := 0; i < len(ranking) && i < 3; i++ {
		idx := i
		if weakest {
			idx = len(ranking) - 1 - i
		}
		ticker := ranking[idx].Ticker
		if snap := result.Snapshot(ticker); snap != nil && snap.Name != "" {
			picked = append(picked, snap.Name)
		} else {
			picked = append(picked, ticker)
		}
	}
	return strings.Join(picked, ", ")
}
