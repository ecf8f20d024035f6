package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type progressCall struct {
	count, total int
	status       string
}

type recordingSink struct {
	calls []progressCall
}

func (r *recordingSink) Report(count, total int, status string) {
	r.calls = append(r.calls, progressCall{count, total, status})
}

func (r *recordingSink) last() progressCall {
	return r.calls[len(r.calls)-1]
}

func writeFile(t *testing.T, fs afero.Fs, path string, size int) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, make([]byte, size), 0644))
}

func names(records []*models.FileRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestScanner_FindsMatchingFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/a.mp4", 10)
	writeFile(t, fs, "/src/b.txt", 5)

	scanner := NewScanner(fs, zaptest.NewLogger(t))
	result, err := scanner.Scan(context.Background(), models.ScanOptions{
		SourceRoot: "/src",
		Extensions: models.NewExtensionSet("mp4"),
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "a.mp4", rec.Name)
	assert.Equal(t, filepath.Join("/src", "a.mp4"), rec.FullPath)
	assert.Equal(t, int64(10), rec.SizeBytes)
	assert.False(t, rec.Selected)
	assert.False(t, rec.MoveWithParentFolder)
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, int64(10), result.TotalSize)
}

func TestScanner_OrderAndIdempotence(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/small.mp4", 1)
	writeFile(t, fs, "/src/deep/nested/big.MKV", 300)
	writeFile(t, fs, "/src/mid/mid.avi", 50)
	writeFile(t, fs, "/src/mid/same1.mp4", 50)

	scanner := NewScanner(fs, nil)
	opts := models.ScanOptions{
		SourceRoot: "/src",
		Extensions: models.NewExtensionSet(".mp4", ".mkv", ".avi"),
	}

	first, err := scanner.Scan(context.Background(), opts, nil)
	require.NoError(t, err)
	second, err := scanner.Scan(context.Background(), opts, nil)
	require.NoError(t, err)

	require.Len(t, first.Records, 4)
	for i := 1; i < len(first.Records); i++ {
		assert.GreaterOrEqual(t, first.Records[i-1].SizeBytes, first.Records[i].SizeBytes)
	}
	assert.Equal(t, "big.MKV", first.Records[0].Name)
	assert.Equal(t, "small.mp4", first.Records[3].Name)
	assert.Equal(t, names(first.Records), names(second.Records))
}

func TestScanner_Filters(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/Holiday.MP4", 100)
	writeFile(t, fs, "/src/holiday-notes.txt", 10)
	writeFile(t, fs, "/src/work.mp4", 2000)
	writeFile(t, fs, "/src/tiny.mp4", 1)

	tests := []struct {
		name     string
		opts     models.ScanOptions
		expected []string
	}{
		{
			name:     "no extension filter matches everything",
			opts:     models.ScanOptions{},
			expected: []string{"work.mp4", "Holiday.MP4", "holiday-notes.txt", "tiny.mp4"},
		},
		{
			name:     "extension is case-insensitive",
			opts:     models.ScanOptions{Extensions: models.NewExtensionSet("mp4")},
			expected: []string{"work.mp4", "Holiday.MP4", "tiny.mp4"},
		},
		{
			name:     "name word is case-insensitive and trimmed",
			opts:     models.ScanOptions{NameContains: "  HOLIDAY "},
			expected: []string{"Holiday.MP4", "holiday-notes.txt"},
		},
		{
			name:     "extension and name combine",
			opts:     models.ScanOptions{Extensions: models.NewExtensionSet("mp4"), NameContains: "holiday"},
			expected: []string{"Holiday.MP4"},
		},
		{
			name:     "size bounds",
			opts:     models.ScanOptions{MinSize: 10, MaxSize: 1000},
			expected: []string{"Holiday.MP4", "holiday-notes.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.SourceRoot = "/src"
			result, err := NewScanner(fs, nil).Scan(context.Background(), tt.opts, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(result.Records))
		})
	}
}

func TestScanner_InvalidRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/file.mp4", 1)

	for _, root := range []string{"", "/missing", "/file.mp4"} {
		t.Run(root, func(t *testing.T) {
			sink := &recordingSink{}
			result, err := NewScanner(fs, nil).Scan(context.Background(), models.ScanOptions{SourceRoot: root}, sink)
			assert.Nil(t, result)
			assert.True(t, IsValidation(err), "got %v", err)
			assert.Empty(t, sink.calls, "no progress before validation passes")
		})
	}
}

func TestScanner_Progress(t *testing.T) {
	fs := afero.NewMemMapFs()
	for i := 0; i < 120; i++ {
		writeFile(t, fs, fmt.Sprintf("/src/f%03d.mp4", i), i)
	}

	sink := &recordingSink{}
	result, err := NewScanner(fs, nil).Scan(context.Background(), models.ScanOptions{SourceRoot: "/src"}, sink)
	require.NoError(t, err)
	require.Len(t, result.Records, 120)

	assert.Equal(t, progressCall{0, 0, "Searching..."}, sink.calls[0])
	assert.Equal(t, progressCall{50, 120, "Loaded: 50/120"}, sink.calls[1])
	assert.Equal(t, progressCall{100, 120, "Loaded: 100/120"}, sink.calls[2])
	assert.Equal(t, progressCall{120, 120, "Loaded: 120/120"}, sink.last())
	assert.Len(t, sink.calls, 4)

	for i := 1; i < len(sink.calls); i++ {
		assert.GreaterOrEqual(t, sink.calls[i].count, sink.calls[i-1].count)
	}
}

func TestScanner_EmptyResultStillReportsFinal(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0755))

	sink := &recordingSink{}
	result, err := NewScanner(fs, nil).Scan(context.Background(), models.ScanOptions{SourceRoot: "/src"}, sink)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Equal(t, progressCall{0, 0, "Loaded: 0/0"}, sink.last())
}

func TestScanner_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/a.mp4", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewScanner(fs, nil).Scan(ctx, models.ScanOptions{SourceRoot: "/src"}, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	require.NotNil(t, result)
	assert.Empty(t, result.Records)
}

func TestScanner_OsFs(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sub", "clip.mkv"), []byte("12345"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "readme.md"), []byte("x"), 0644))

	result, err := NewScanner(afero.NewOsFs(), nil).Scan(context.Background(), models.ScanOptions{
		SourceRoot: tmpDir,
		Extensions: models.NewExtensionSet("mkv"),
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, filepath.Join(tmpDir, "sub", "clip.mkv"), result.Records[0].FullPath)
	assert.Equal(t, int64(5), result.Records[0].SizeBytes)
	assert.Equal(t, 2, result.TotalDirs)
}
