package sourcearchive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip creates a zip file with the given entries in order.
func writeZip(t *testing.T, entries map[string]string, order []string) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "src.zip")
	handle, err := os.Create(zipPath)
	require.NoError(t, err)
	defer handle.Close()

	writer := zip.NewWriter(handle)
	for _, name := range order {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return zipPath
}

func TestNewMissingArchive(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source archive not found")
}

func TestResolveShortestSuffixMatch(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"vendor/deep/nested/app/cmd.py": "x\n",
		"repo/app/cmd.py":               "y\n",
		"repo/lib/util.py":              "z\n",
	}, []string{"vendor/deep/nested/app/cmd.py", "repo/app/cmd.py", "repo/lib/util.py"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	entry, ok := archive.Resolve("app/cmd.py")
	require.True(t, ok)
	assert.Equal(t, "repo/app/cmd.py", entry)
}

func TestResolveTieKeepsListingOrder(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"aa/x/f.py": "1\n",
		"bb/x/f.py": "2\n",
	}, []string{"bb/x/f.py", "aa/x/f.py"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	// equal lengths, the first entry in listing order wins
	entry, ok := archive.Resolve("x/f.py")
	require.True(t, ok)
	assert.Equal(t, "bb/x/f.py", entry)
}

func TestResolveCachesNegativeResults(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"a.py": "1\n"}, []string{"a.py"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	_, ok := archive.Resolve("missing.py")
	assert.False(t, ok)
	assert.Equal(t, 1, archive.listingScans)

	// repeated miss must come from the cache, not a second listing walk
	_, ok = archive.Resolve("missing.py")
	assert.False(t, ok)
	assert.Equal(t, 1, archive.listingScans)

	// a cached hit does not rescan either
	_, ok = archive.Resolve("a.py")
	assert.True(t, ok)
	_, _ = archive.Resolve("a.py")
	assert.Equal(t, 2, archive.listingScans)
}

func TestReadContextWindowBounds(t *testing.T) {
	content := "l1\nl2\nl3\nl4\nl5\n"
	zipPath := writeZip(t, map[string]string{"f.txt": content}, []string{"f.txt"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	tests := []struct {
		name   string
		line   int
		radius int
		want   string
	}{
		{
			name:   "window clamped at file start",
			line:   1,
			radius: 2,
			want:   "    1: l1\n    2: l2\n    3: l3",
		},
		{
			name:   "window clamped at file end",
			line:   5,
			radius: 2,
			want:   "    3: l3\n    4: l4\n    5: l5",
		},
		{
			name:   "interior window",
			line:   3,
			radius: 1,
			want:   "    2: l2\n    3: l3\n    4: l4",
		},
		{
			name:   "zero radius keeps the target line",
			line:   2,
			radius: 0,
			want:   "    2: l2",
		},
		{
			name:   "line past end clamps into the file",
			line:   50,
			radius: 2,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snippet, ok := archive.ReadContext("f.txt", tt.line, tt.radius)
			if tt.want == "" {
				// target index beyond the last line leaves an empty window
				assert.True(t, ok)
				assert.Equal(t, "", snippet)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, snippet)
		})
	}
}

func TestReadContextPrefixWidth(t *testing.T) {
	var content strings.Builder
	for i := 1; i <= 100000; i++ {
		fmt.Fprintf(&content, "line-%d\n", i)
	}
	zipPath := writeZip(t, map[string]string{"big.txt": content.String()}, []string{"big.txt"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	snippet, ok := archive.ReadContext("big.txt", 1, 0)
	require.True(t, ok)
	assert.Equal(t, "    1: line-1", snippet)

	snippet, ok = archive.ReadContext("big.txt", 99999, 0)
	require.True(t, ok)
	assert.Equal(t, "99999: line-99999", snippet)
}

func TestReadContextEmptyEntry(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"empty.py": ""}, []string{"empty.py"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	// the entry exists, so the snippet is present but empty
	snippet, ok := archive.ReadContext("empty.py", 1, 2)
	assert.True(t, ok)
	assert.Equal(t, "", snippet)
}

func TestReadContextMissingInputs(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"f.txt": "a\n"}, []string{"f.txt"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	_, ok := archive.ReadContext("", 1, 2)
	assert.False(t, ok)

	_, ok = archive.ReadContext("f.txt", 0, 2)
	assert.False(t, ok)

	_, ok = archive.ReadContext("unresolved.txt", 1, 2)
	assert.False(t, ok)
}

func TestReadContextInvalidUTF8(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"bin.txt": "ok \xff\xfe bytes\n"}, []string{"bin.txt"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	snippet, ok := archive.ReadContext("bin.txt", 1, 0)
	require.True(t, ok)
	assert.Contains(t, snippet, "�")
	assert.Contains(t, snippet, "ok ")
}

func TestReadContextCRLF(t *testing.T) {
	zipPath := writeZip(t, map[string]string{"dos.txt": "one\r\ntwo\r\n"}, []string{"dos.txt"})

	archive, err := New(zipPath)
	require.NoError(t, err)
	defer archive.Close()

	snippet, ok := archive.ReadContext("dos.txt", 2, 0)
	require.True(t, ok)
	assert.Equal(t, "    2: two", snippet)
}
