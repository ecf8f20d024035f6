package selection

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/damiannass88/WindowsFileMover/internal/filelock"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.ScanResult {
	return &models.ScanResult{
		EndTime:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		SourceRoot: "/videos",
		Records: []*models.FileRecord{
			models.NewFileRecord("big.mkv", "/videos/big.mkv", 2048),
			models.NewFileRecord("small.mp4", "/videos/sub/small.mp4", 10),
		},
	}
}

func TestNewPlan(t *testing.T) {
	result := sampleResult()
	plan := NewPlan(result, models.NewExtensionSet("mp4", "mkv"), false)

	assert.Equal(t, PlanVersion, plan.Version)
	assert.Equal(t, "/videos", plan.SourceRoot)
	assert.Equal(t, []string{".mkv", ".mp4"}, plan.Extensions)
	assert.Empty(t, plan.Selected())

	all := NewPlan(result, nil, true)
	assert.Len(t, all.Selected(), 2)
	assert.False(t, result.Records[0].Selected, "scan records are not modified")
}

func TestSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	plan := NewPlan(sampleResult(), nil, false)
	plan.Files[1].Selected = true
	plan.Files[1].MoveWithParentFolder = true

	require.NoError(t, Save(fs, "/plans/plan.yaml", plan))

	loaded, err := Load(fs, "/plans/plan.yaml")
	require.NoError(t, err)

	assert.Equal(t, plan.SourceRoot, loaded.SourceRoot)
	assert.True(t, plan.CreatedAt.Equal(loaded.CreatedAt))
	require.Len(t, loaded.Files, 2)
	selected := loaded.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, "/videos/sub/small.mp4", selected[0].FullPath)
	assert.True(t, selected[0].MoveWithParentFolder)
}

func TestSave_WaitsForPlanLock(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	plan := NewPlan(sampleResult(), nil, true)

	holder, err := filelock.Acquire(path + ".lock")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- Save(fs, path, plan) }()

	select {
	case err := <-done:
		t.Fatalf("Save finished while another writer held the plan: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, holder.Unlock())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Save did not finish after the lock was released")
	}

	loaded, err := Load(fs, path)
	require.NoError(t, err)
	assert.Len(t, loaded.Selected(), 2)
}

func TestLoad_HandEditedPlan(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
source_root: /videos
files:
  - path: /videos/a.mp4
    selected: true
  - path: /videos/b.mp4
    size_bytes: -5
`
	require.NoError(t, afero.WriteFile(fs, "/plan.yaml", []byte(content), 0644))

	plan, err := Load(fs, "/plan.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", plan.Files[0].Name)
	assert.Equal(t, int64(0), plan.Files[1].SizeBytes)
	assert.Len(t, plan.Selected(), 1)
}

func TestLoad_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/future.yaml", []byte("version: 99\nfiles: []\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/nopath.yaml", []byte("files:\n  - name: a.mp4\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/garbage.yaml", []byte("files: [unclosed"), 0644))

	_, err := Load(fs, "/future.yaml")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Load(fs, "/nopath.yaml")
	assert.Error(t, err)

	_, err = Load(fs, "/garbage.yaml")
	assert.Error(t, err)

	_, err = Load(fs, "/missing.yaml")
	assert.Error(t, err)
}
