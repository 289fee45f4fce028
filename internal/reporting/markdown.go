package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the run report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Feature Pipeline Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run date: %s\n\n", r.RunDate))

	// Population summary
	sb.WriteString("## Population\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Entities Emitted | %d |\n", r.EntitiesEmitted))
	sb.WriteString(fmt.Sprintf("| Entities Dropped | %d |\n", r.EntitiesDropped))
	sb.WriteString(fmt.Sprintf("| Records Skipped | %d |\n", r.RecordsSkipped))
	sb.WriteString(fmt.Sprintf("| Numeric Columns | %d |\n", r.NumericColumns))
	sb.WriteString(fmt.Sprintf("| Categorical Columns | %d |\n", r.CategoricalColumns))
	sb.WriteString("\n")

	// Label balance
	sb.WriteString("## Label Balance\n\n")
	sb.WriteString("| Label | Count |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Churned | %d |\n", r.ChurnedCount))
	sb.WriteString(fmt.Sprintf("| Active | %d |\n", r.ActiveCount))
	sb.WriteString(fmt.Sprintf("| Account Closed (secondary) | %d |\n", r.AccountClosedCount))
	sb.WriteString(fmt.Sprintf("\nChurn rate: %.2f%%\n\n", r.ChurnRate()*100))

	// Exclusions
	sb.WriteString("## Exclusions\n\n")
	if len(r.DropsByReason) > 0 {
		sb.WriteString("| Reason | Count |\n")
		sb.WriteString("|--------|-------|\n")
		for _, reason := range reasonOrder(r) {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", reason, r.DropsByReason[reason]))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No entities or records excluded.\n\n")
	}

	if len(r.Diagnostics) > 0 {
		sb.WriteString("### Diagnostics\n\n")
		for _, e := range r.Diagnostics {
			sb.WriteString(fmt.Sprintf("- %s\n", e.String()))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
