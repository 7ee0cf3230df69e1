package internal

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexopt/apiremap/internal/catalog"
	"github.com/dexopt/apiremap/internal/descriptor"
	"github.com/dexopt/apiremap/internal/program"
	tt "github.com/dexopt/apiremap/internal/types"
)

const mediaCatalog = `
Landroid/media/MediaDescription; 1 1
M Landroid/media/MediaDescription;.getTitle:()Ljava/lang/CharSequence;
F Landroid/media/MediaDescription;.extras:Landroid/media/MediaMetadata;
Landroid/media/MediaMetadata; 1 0
M Landroid/media/MediaMetadata;.size:()I
Landroid/media/MediaController; 1 0
M Landroid/media/MediaController;.getId:()I
Landroid/media/MediaBrowser; 1 0
M Landroid/media/MediaBrowser;.connect:()V
Landroid/media/MediaRouter; 0 0
Landroid/view/Menu; 0 0
Landroid/widget/Menu; 0 0
Landroid/test/ViewMatcher; 0 0
Landroid/os/Parcel; 0 0
`

func mustProto(t *testing.T, s string) descriptor.Proto {
	t.Helper()
	proto, err := descriptor.ParseProto(s)
	require.NoError(t, err)
	return proto
}

func mustCatalog(t *testing.T, text string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return cat
}

// mediaProgram covers every seed outcome: valid pairs, a member
// failure, a hierarchy dependent, an ambiguous simple name, a skipped
// package, an external class, a foreign package and an obfuscated
// class carrying a deobfuscated name.
func mediaProgram(t *testing.T) *program.Program {
	t.Helper()

	prog := program.New()
	classes := []*program.Class{
		{
			Type:   "Landroidx/media/MediaDescription;",
			Access: program.AccPublic,
			Super:  "Ljava/lang/Object;",
			DirectMethods: []program.Method{
				{Name: "ensureExtras", Proto: mustProto(t, "(Z)Landroidx/media/MediaMetadata;"), Access: program.AccPrivate},
			},
			VirtualMethods: []program.Method{
				{Name: "getTitle", Proto: mustProto(t, "()Ljava/lang/CharSequence;"), Access: program.AccPublic},
			},
			InstanceFields: []program.Field{
				{Name: "extras", Type: "Landroidx/media/MediaMetadata;", Access: program.AccPublic},
			},
		},
		{
			Type:   "Landroidx/media/MediaMetadata;",
			Access: program.AccPublic,
			Super:  "Ljava/lang/Object;",
			VirtualMethods: []program.Method{
				{Name: "size", Proto: mustProto(t, "()I"), Access: program.AccPublic},
			},
		},
		{
			Type:   "Landroidx/media/MediaController;",
			Access: program.AccPublic,
			Super:  "Ljava/lang/Object;",
			VirtualMethods: []program.Method{
				{Name: "dispatch", Proto: mustProto(t, "()V"), Access: program.AccPublic},
			},
		},
		{
			Type:   "Landroidx/media/MediaBrowser;",
			Access: program.AccPublic,
			Super:  "Landroidx/media/MediaController;",
			VirtualMethods: []program.Method{
				{Name: "connect", Proto: mustProto(t, "()V"), Access: program.AccPublic},
			},
		},
		{
			Type:   "Landroidx/appcompat/Menu;",
			Access: program.AccPublic,
			Super:  "Ljava/lang/Object;",
		},
		{
			Type:   "Landroidx/test/espresso/ViewMatcher;",
			Access: program.AccPublic,
			Super:  "Ljava/lang/Object;",
		},
		{
			Type:     "Landroidx/os/Parcel;",
			Access:   program.AccPublic,
			Super:    "Ljava/lang/Object;",
			External: true,
		},
		{
			Type:   "Lcom/example/app/MainActivity;",
			Access: program.AccPublic,
			Super:  "Ljava/lang/Object;",
		},
		{
			Type:         "La/b/c;",
			Deobfuscated: "Landroidx/media/MediaRouter;",
			Access:       program.AccPublic,
			Super:        "Ljava/lang/Object;",
		},
	}
	for _, cls := range classes {
		require.NoError(t, prog.Add(cls))
	}
	return prog
}

func mediaEngine(t *testing.T) *Engine {
	t.Helper()

	eng := NewEngine(mediaProgram(t), Options{
		SkipPackages: []string{"androidx/test"},
	})
	require.NoError(t, eng.LoadMapping(mustCatalog(t, mediaCatalog)))
	return eng
}

func TestLoadMapping(t *testing.T) {
	eng := mediaEngine(t)
	report := eng.Report()

	// Seeded: MediaDescription, MediaMetadata, MediaController,
	// MediaBrowser and the obfuscated MediaRouter. Menu is ambiguous in
	// the catalog, ViewMatcher sits in a skipped package, Parcel is
	// external and MainActivity does not carry the release prefix.
	assert.Equal(t, 5, report.Seeded)

	// Round one prunes MediaController (no dispatch counterpart),
	// round two prunes MediaBrowser (superclass no longer mapped),
	// round three removes nothing.
	assert.Equal(t, 3, report.Rounds)
	assert.Equal(t, []int{1, 1}, eng.Removals())

	expected := []tt.Pair{
		{Release: "La/b/c;", Framework: "Landroid/media/MediaRouter;"},
		{Release: "Landroidx/media/MediaDescription;", Framework: "Landroid/media/MediaDescription;", Methods: 1, Fields: 1},
		{Release: "Landroidx/media/MediaMetadata;", Framework: "Landroid/media/MediaMetadata;", Methods: 1},
	}
	require.Equal(t, expected, report.Pairs, spew.Sdump(report))
	assert.Equal(t, 3, report.Retained)
}

func TestValidationIsIdempotent(t *testing.T) {
	eng := mediaEngine(t)
	before := eng.Report().Pairs

	// An empty exclusion re-runs the validator over the converged
	// mapping; one pass, no removals, same pairs.
	require.NoError(t, eng.Exclude(nil))

	assert.Equal(t, before, eng.Report().Pairs)
	assert.Equal(t, 1, eng.Rounds())
	assert.Empty(t, eng.Removals())
}

func TestValidationRoundBound(t *testing.T) {
	eng := mediaEngine(t)
	report := eng.Report()

	assert.LessOrEqual(t, report.Rounds, report.Seeded+1)
	for _, removed := range eng.Removals() {
		assert.Positive(t, removed)
	}
}

func TestExcludePrunesDependents(t *testing.T) {
	eng := mediaEngine(t)

	// MediaDescription's extras field only resolves while
	// MediaMetadata is mapped; excluding MediaMetadata must take
	// MediaDescription down on the follow-up validation.
	require.NoError(t, eng.Exclude([]string{"Landroidx/media/MediaMetadata;"}))

	report := eng.Report()
	assert.Equal(t, 1, report.Retained)
	assert.Equal(t, "La/b/c;", report.Pairs[0].Release)
	assert.Equal(t, 2, eng.Rounds())
	assert.Equal(t, []int{1}, eng.Removals())
}

func TestDoubleClaimIsFatal(t *testing.T) {
	prog := program.New()
	require.NoError(t, prog.Add(&program.Class{
		Type:   "Landroidx/core/widget/Toolbar;",
		Access: program.AccPublic,
		Super:  "Ljava/lang/Object;",
	}))
	require.NoError(t, prog.Add(&program.Class{
		Type:   "Landroidx/appcompat/widget/Toolbar;",
		Access: program.AccPublic,
		Super:  "Ljava/lang/Object;",
	}))

	eng := NewEngine(prog, Options{})
	err := eng.LoadMapping(mustCatalog(t, "Landroid/widget/Toolbar; 0 0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Toolbar")
}

func TestUnloadedMappedClassIsFatal(t *testing.T) {
	cat := mustCatalog(t, mediaCatalog)
	eng := NewEngine(program.New(), Options{})
	eng.mapping = map[string]*catalog.API{
		"Landroidx/media/MediaRouter;": cat.Get("Landroid/media/MediaRouter;").Clone(),
	}

	err := eng.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not loaded")
}

func TestSimpleNameIndex(t *testing.T) {
	index, err := buildSimpleNameIndex(mustCatalog(t, mediaCatalog))
	require.NoError(t, err)

	assert.Equal(t, "Landroid/media/MediaRouter;", index["MediaRouter"])
	assert.Equal(t, "Landroid/test/ViewMatcher;", index["ViewMatcher"])

	// carried by both Landroid/view/Menu; and Landroid/widget/Menu;
	_, ok := index["Menu"]
	assert.False(t, ok)
}

func TestViewIsACopy(t *testing.T) {
	eng := mediaEngine(t)

	view := eng.View()
	delete(view, "Landroidx/media/MediaDescription;")

	fresh := eng.View()
	assert.Contains(t, fresh, "Landroidx/media/MediaDescription;")
}

func TestFrameworkFor(t *testing.T) {
	eng := mediaEngine(t)

	api := eng.FrameworkFor("Landroidx/media/MediaMetadata;")
	require.NotNil(t, api)
	assert.Equal(t, "Landroid/media/MediaMetadata;", api.Class)
	assert.Equal(t, 1, api.NumMethods())

	// pruned in round one, so no counterpart is reported
	assert.Nil(t, eng.FrameworkFor("Landroidx/media/MediaController;"))
	assert.Nil(t, eng.FrameworkFor("Lcom/example/app/MainActivity;"))
}
