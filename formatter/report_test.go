package formatter

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	tt "github.com/dexopt/apiremap/internal/types"
)

func TestGenerateFormattedReport(t *testing.T) {
	color.NoColor = true

	report := tt.Report{
		Pairs: []tt.Pair{
			{Release: "La/b/c;", Framework: "Landroid/media/MediaRouter;"},
			{Release: "Landroidx/media/MediaDescription;", Framework: "Landroid/media/MediaDescription;", Methods: 1, Fields: 1},
		},
		Seeded:   5,
		Retained: 2,
		Rounds:   3,
	}

	out := GenerateFormattedReport(report)

	assert.Contains(t, out, "retargetable classes (2)")
	assert.Contains(t, out, "La/b/c;")
	assert.Contains(t, out, "-> Landroid/media/MediaRouter;  (0 methods, 0 fields)")
	assert.Contains(t, out, "-> Landroid/media/MediaDescription;  (1 methods, 1 fields)")
	assert.Contains(t, out, "2 of 5 seeded classes retained after 3 rounds (3 pruned)")

	// release column is padded to one width, so both arrows line up
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[1], "->"), strings.Index(lines[2], "->"))
}

func TestGenerateFormattedReportEmpty(t *testing.T) {
	color.NoColor = true

	report := tt.Report{Seeded: 4, Rounds: 2}
	out := GenerateFormattedReport(report)

	assert.Contains(t, out, "no retargetable classes")
	assert.Contains(t, out, "0 of 4 seeded classes retained after 2 rounds (4 pruned)")
}
