package remap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dexopt/apiremap/internal/catalog"
	"github.com/dexopt/apiremap/internal/program"
	tt "github.com/dexopt/apiremap/internal/types"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) LoadMapping(cat *catalog.Catalog) error {
	args := m.Called(cat)
	return args.Error(0)
}

func (m *mockEngine) Exclude(types []string) error {
	args := m.Called(types)
	return args.Error(0)
}

func (m *mockEngine) Report() tt.Report {
	args := m.Called()
	return args.Get(0).(tt.Report)
}

func (m *mockEngine) Removals() []int {
	args := m.Called()
	return args.Get(0).([]int)
}

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framework.api")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	apiFile := writeCatalogFile(t, `
Landroid/app/Activity; 1 0
M Landroid/app/Activity;.onCreate:(Landroid/os/Bundle;)V
`)

	loaded := tt.Report{Seeded: 3, Retained: 2, Rounds: 2}
	pruned := tt.Report{Seeded: 3, Retained: 1, Rounds: 1}

	eng := new(mockEngine)
	eng.On("LoadMapping", mock.AnythingOfType("*catalog.Catalog")).Return(nil)
	eng.On("Removals").Return([]int{1})
	eng.On("Report").Return(loaded).Once()
	eng.On("Exclude", []string{"Landroidx/app/Fragment;"}).Return(nil)
	eng.On("Report").Return(pruned).Once()

	config := Config{
		APIFile: apiFile,
		Exclude: []string{"Landroidx/app/Fragment;"},
	}
	report, err := Run(context.Background(), zap.NewNop(), eng, config)
	require.NoError(t, err)
	assert.Equal(t, pruned, report)
	eng.AssertExpectations(t)
}

func TestRunWithoutExclusions(t *testing.T) {
	apiFile := writeCatalogFile(t, "Landroid/view/View; 0 0\n")

	loaded := tt.Report{Seeded: 1, Retained: 1, Rounds: 1}

	eng := new(mockEngine)
	eng.On("LoadMapping", mock.AnythingOfType("*catalog.Catalog")).Return(nil)
	eng.On("Removals").Return([]int{})
	eng.On("Report").Return(loaded).Once()

	report, err := Run(context.Background(), zap.NewNop(), eng, Config{APIFile: apiFile})
	require.NoError(t, err)
	assert.Equal(t, loaded, report)
	eng.AssertNotCalled(t, "Exclude", mock.Anything)
}

func TestRunErrors(t *testing.T) {
	t.Run("no api file configured", func(t *testing.T) {
		_, err := Run(context.Background(), nil, new(mockEngine), Config{})
		assert.ErrorContains(t, err, "no API catalog file configured")
	})

	t.Run("missing catalog file", func(t *testing.T) {
		config := Config{APIFile: filepath.Join(t.TempDir(), "absent.api")}
		_, err := Run(context.Background(), nil, new(mockEngine), config)
		assert.ErrorContains(t, err, "failed to open catalog file")
	})

	t.Run("mapping failure", func(t *testing.T) {
		apiFile := writeCatalogFile(t, "Landroid/view/View; 0 0\n")
		eng := new(mockEngine)
		eng.On("LoadMapping", mock.Anything).Return(assert.AnError)

		_, err := Run(context.Background(), nil, eng, Config{APIFile: apiFile})
		assert.ErrorContains(t, err, "failed to build mapping")
	})

	t.Run("cancelled context", func(t *testing.T) {
		apiFile := writeCatalogFile(t, "Landroid/view/View; 0 0\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, nil, new(mockEngine), Config{APIFile: apiFile})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRunEndToEnd(t *testing.T) {
	apiFile := writeCatalogFile(t, "Landroid/app/Activity; 0 0\n")

	prog := program.New()
	require.NoError(t, prog.Add(&program.Class{
		Type:   "Landroidx/app/Activity;",
		Access: program.AccPublic,
		Super:  "Ljava/lang/Object;",
	}))

	eng := New(prog, Config{})
	report, err := Run(context.Background(), zap.NewNop(), eng, Config{APIFile: apiFile})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Seeded)
	assert.Equal(t, 1, report.Retained)
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, "Landroidx/app/Activity;", report.Pairs[0].Release)
	assert.Equal(t, "Landroid/app/Activity;", report.Pairs[0].Framework)
}

func TestParseConfig(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "remap.yaml")
		content := `
name: media-remap
api-file: framework.api
release-prefix: Landroidx/media
skip-packages:
  - androidx/test
exclude:
  - Landroidx/media/MediaBrowser;
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		config, err := ParseConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "media-remap", config.Name)
		assert.Equal(t, "framework.api", config.APIFile)
		assert.Equal(t, "Landroidx/media", config.ReleasePrefix)
		assert.Equal(t, []string{"androidx/test"}, config.SkipPackages)
		assert.Equal(t, []string{"Landroidx/media/MediaBrowser;"}, config.Exclude)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := ParseConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("default file missing is tolerated", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		defer os.Chdir(wd)

		config, err := ParseConfig("")
		require.NoError(t, err)
		assert.Equal(t, Config{}, config)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "remap.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api-file: [unclosed"), 0o644))

		_, err := ParseConfig(path)
		assert.ErrorContains(t, err, "error parsing configuration file")
	})
}
