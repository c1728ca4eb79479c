package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"greencode-backend/internal/analyses/engine"
)

const (
	// FileName is the suggested download name for a rendered report.
	FileName = "GreenCode_Report.txt"
	// ContentType is the MIME type of a rendered report.
	ContentType = "text/plain; charset=utf-8"
)

// RenderText renders a plain-text sustainability report. Metrics, detections,
// suggestions and tips appear in the order the result carries them.
func RenderText(res engine.Result, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("GreenCode — Sustainability Analysis Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.UTC().Format(time.RFC1123))
	fmt.Fprintf(&b, "Language: %s | Lines: %d\n\n", res.Language, res.Lines)

	section(&b, "METRICS")
	fmt.Fprintf(&b, "Complexity:         %s\n", res.Complexity)
	fmt.Fprintf(&b, "Energy Score:       %d units\n", res.EnergyScore)
	fmt.Fprintf(&b, "Energy Cost:        %s kWh\n", formatNumber(res.EnergyCostKwh))
	fmt.Fprintf(&b, "CO₂ Emitted:        %s g per execution\n", formatNumber(res.CO2Grams))
	fmt.Fprintf(&b, "Dollar Cost:        $%s\n", formatNumber(res.DollarCost))
	fmt.Fprintf(&b, "Sustainability:     %d/100\n", res.SustainabilityScore)
	fmt.Fprintf(&b, "Rating:             %s\n\n", res.Rating)

	section(&b, "DETECTIONS")
	if len(res.Detections) == 0 {
		b.WriteString("None\n\n")
	} else {
		names := make([]string, len(res.Detections))
		for i, k := range res.Detections {
			names[i] = string(k)
		}
		b.WriteString(strings.Join(names, ", ") + "\n\n")
	}

	section(&b, "SUGGESTIONS & OPTIMIZED CODE")
	if len(res.Suggestions) == 0 {
		b.WriteString("None\n")
	}
	for i, s := range res.Suggestions {
		fmt.Fprintf(&b, "\n%d. %s [%s]\n", i+1, s.Title, strings.ToUpper(string(s.Severity)))
		fmt.Fprintf(&b, "   %s\n", s.Detail)
		fmt.Fprintf(&b, "   Savings: %s\n", s.Saving)
		if s.OptimizedCode != nil {
			fmt.Fprintf(&b, "\n   BEFORE:\n%s\n\n   AFTER:\n%s\n", s.OptimizedCode.Before, s.OptimizedCode.After)
		}
	}
	b.WriteString("\n")

	section(&b, fmt.Sprintf("LANGUAGE TIPS (%s)", res.Language))
	for i, tip := range res.LanguageTips {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, tip.Category, tip.Text)
	}
	return b.String()
}

// ApplyAllFixes concatenates every suggestion's optimized snippet, each under
// a "Fix for" header, separated by blank lines. Suggestions without a snippet
// are skipped.
func ApplyAllFixes(suggestions []engine.Suggestion) string {
	blocks := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		if s.OptimizedCode == nil || s.OptimizedCode.After == "" {
			continue
		}
		blocks = append(blocks, "// Fix for: "+s.Title+"\n"+s.OptimizedCode.After)
	}
	return strings.Join(blocks, "\n\n")
}

func section(b *strings.Builder, title string) {
	line := "── " + title + " "
	if pad := 48 - len([]rune(line)); pad > 0 {
		line += strings.Repeat("─", pad)
	}
	b.WriteString(line + "\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
