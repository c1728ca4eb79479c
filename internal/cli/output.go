package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"greencode-backend/internal/analyses/engine"
	"greencode-backend/internal/analyses/report"
)

var outputFormats = []string{"human", "json", "yaml", "text"}

func validOutput(format string) bool {
	for _, f := range outputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// DisplayResult writes res to w in the requested format.
func DisplayResult(w io.Writer, res engine.Result, generatedAt time.Time, format string) error {
	switch format {
	case "json":
		return displayJSON(w, res)
	case "yaml":
		return displayYAML(w, res)
	case "text":
		_, err := io.WriteString(w, report.RenderText(res, generatedAt))
		return err
	case "human":
		fallthrough
	default:
		displayHuman(w, res)
	}
	return nil
}

func displayJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, res engine.Result) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "GreenCode Analysis")
	fmt.Fprintf(w, "   Language: %s | Lines: %d | Complexity: %s\n\n", res.Language, res.Lines, res.Complexity)

	ratingColor(res.Rating).Fprintf(w, "RATING: %s (sustainability %d/100)\n", strings.ToUpper(string(res.Rating)), res.SustainabilityScore)
	fmt.Fprintf(w, "   Energy score:  %d units\n", res.EnergyScore)
	fmt.Fprintf(w, "   Energy cost:   %g kWh\n", res.EnergyCostKwh)
	fmt.Fprintf(w, "   CO2 emitted:   %g g per execution\n", res.CO2Grams)
	fmt.Fprintf(w, "   Dollar cost:   $%g\n\n", res.DollarCost)

	if len(res.Suggestions) == 0 {
		green.Fprintln(w, "No energy-wasteful patterns found")
	} else {
		yellow.Fprintln(w, "ISSUES FOUND:")
		for i, s := range res.Suggestions {
			fmt.Fprintf(w, "   %d. %s %s\n", i+1, severityIcon(s.Severity), s.Title)
			fmt.Fprintf(w, "      %s\n", s.Detail)
			fmt.Fprintf(w, "      Saving: %s\n", color.GreenString(s.Saving))
			if s.OptimizedCode != nil && s.OptimizedCode.After != "" {
				fmt.Fprintf(w, "      Try:\n%s\n", indent(s.OptimizedCode.After, "         "))
			}
			fmt.Fprintln(w)
		}
		green.Fprintf(w, "POTENTIAL SAVING: %d%% (optimized energy %d units)\n", res.PotentialSaving, res.OptimizedEnergy)
	}

	if len(res.LanguageTips) > 0 {
		fmt.Fprintln(w)
		cyan.Fprintf(w, "TIPS FOR %s:\n", strings.ToUpper(res.Language))
		writeTips(w, res.LanguageTips)
	}
	fmt.Fprintln(w)
}

func writeTips(w io.Writer, tips []engine.Tip) {
	for i, tip := range tips {
		fmt.Fprintf(w, "   %d. [%s] %s\n", i+1, tip.Category, tip.Text)
	}
}

func ratingColor(r engine.Rating) *color.Color {
	switch r {
	case engine.RatingGreenEfficient:
		return color.New(color.FgGreen, color.Bold)
	case engine.RatingModerate:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func severityIcon(s engine.Severity) string {
	switch s {
	case engine.SeverityHigh:
		return color.RedString("[HIGH]")
	case engine.SeverityMedium:
		return color.YellowString("[MEDIUM]")
	default:
		return color.CyanString("[LOW]")
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}
