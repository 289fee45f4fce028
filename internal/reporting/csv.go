package reporting

import (
	"fmt"
	"strings"

	"churn-feature-lab/internal/config"
	"churn-feature-lab/internal/diagnostics"
	"churn-feature-lab/internal/domain"
)

// RenderFeatureCSV renders the feature table as a CSV string. Column
// order comes from the config and is stable across runs. Null feature
// values render as empty cells — an empty cell and 0.000000 are
// different signals and must stay distinguishable in the export.
func RenderFeatureCSV(features []*domain.FeatureRecord, cfg *config.Config) string {
	numericCols := cfg.NumericColumns()
	categoricalCols := cfg.CategoricalColumns()

	var sb strings.Builder

	// Header
	sb.WriteString("entity_id,reference_date,churn_label,account_closed")
	for _, col := range numericCols {
		sb.WriteString(",")
		sb.WriteString(col)
	}
	for _, col := range categoricalCols {
		sb.WriteString(",")
		sb.WriteString(col)
	}
	sb.WriteString("\n")

	// Rows
	for _, f := range features {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s",
			f.EntityID,
			f.ReferenceDate.Format("2006-01-02"),
			boolCell(f.ChurnLabel),
			boolCell(f.AccountClosed),
		))
		for _, col := range numericCols {
			sb.WriteString(",")
			if v, ok := f.NumericValue(col); ok {
				sb.WriteString(fmt.Sprintf("%.6f", v))
			}
		}
		for _, col := range categoricalCols {
			sb.WriteString(",")
			sb.WriteString(f.Categorical[col])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderDiagnosticsCSV renders diagnostics entries as a CSV string,
// in the entries' (already deterministic) order.
func RenderDiagnosticsCSV(entries []diagnostics.Entry) string {
	var sb strings.Builder
	sb.WriteString("entity_id,record_id,stream,field,reason,detail\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s\n",
			e.EntityID, e.RecordID, e.Stream, e.Field, e.Reason, csvEscape(e.Detail)))
	}
	return sb.String()
}

func boolCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// csvEscape quotes a detail string containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
