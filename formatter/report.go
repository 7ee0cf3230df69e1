// Package formatter renders validation reports for terminal display.
package formatter

import (
	"strings"

	"github.com/fatih/color"

	tt "github.com/dexopt/apiremap/internal/types"
)

var (
	headerStyle    = color.New(color.FgCyan, color.Bold)
	releaseStyle   = color.New(color.FgYellow)
	arrowStyle     = color.New(color.FgHiBlue, color.Bold)
	frameworkStyle = color.New(color.FgGreen)
	countStyle     = color.New(color.FgWhite)
	summaryStyle   = color.New(color.FgCyan, color.Bold)
	emptyStyle     = color.New(color.FgRed, color.Bold)
)

// GenerateFormattedReport renders the report as one aligned line per
// retained pair followed by a summary line. Pairs arrive sorted from
// the engine, so output order is stable.
func GenerateFormattedReport(report tt.Report) string {
	var builder strings.Builder

	if report.Retained == 0 {
		builder.WriteString(emptyStyle.Sprint("no retargetable classes\n"))
		builder.WriteString(summaryLine(report))
		return builder.String()
	}

	builder.WriteString(headerStyle.Sprintf("retargetable classes (%d)\n", report.Retained))

	width := 0
	for _, pair := range report.Pairs {
		if len(pair.Release) > width {
			width = len(pair.Release)
		}
	}

	for _, pair := range report.Pairs {
		builder.WriteString("  ")
		builder.WriteString(releaseStyle.Sprint(pair.Release))
		builder.WriteString(strings.Repeat(" ", width-len(pair.Release)+1))
		builder.WriteString(arrowStyle.Sprint("-> "))
		builder.WriteString(frameworkStyle.Sprint(pair.Framework))
		builder.WriteString(countStyle.Sprintf("  (%d methods, %d fields)\n", pair.Methods, pair.Fields))
	}

	builder.WriteString(summaryLine(report))
	return builder.String()
}

func summaryLine(report tt.Report) string {
	pruned := report.Seeded - report.Retained
	return summaryStyle.Sprintf("%d of %d seeded classes retained after %d rounds (%d pruned)\n",
		report.Retained, report.Seeded, report.Rounds, pruned)
}
