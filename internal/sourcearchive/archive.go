// Package sourcearchive resolves file references from analysis results into
// line-windowed snippets read from a CodeQL database source archive (src.zip).
package sourcearchive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

// DefaultLineCacheSize bounds how many decoded files are kept in memory.
const DefaultLineCacheSize = 256

// Archive is a random-access snippet reader over a source archive.
// It is not safe for concurrent use; the pipeline accesses it sequentially.
type Archive struct {
	zipPath string
	reader  *zip.ReadCloser
	byName  map[string]*zip.File

	// names preserves the archive listing order for deterministic tie-breaks.
	names []string

	// resolved caches suffix resolution per URI, including misses ("").
	resolved map[string]string
	lines    *lineCache

	// listingScans counts full listing walks, used to verify negative caching.
	listingScans int
}

// New opens the source archive at zipPath. The archive is assumed immutable
// for the lifetime of the returned handle.
func New(zipPath string) (*Archive, error) {
	if _, err := os.Stat(zipPath); err != nil {
		return nil, fmt.Errorf("source archive not found: %s", zipPath)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source archive %q: %w", zipPath, err)
	}

	archive := &Archive{
		zipPath:  zipPath,
		reader:   reader,
		byName:   make(map[string]*zip.File, len(reader.File)),
		names:    make([]string, 0, len(reader.File)),
		resolved: make(map[string]string),
		lines:    newLineCache(DefaultLineCacheSize),
	}
	for _, file := range reader.File {
		archive.names = append(archive.names, file.Name)
		archive.byName[file.Name] = file
	}
	return archive, nil
}

// Close releases the underlying zip handle.
func (a *Archive) Close() error {
	return a.reader.Close()
}

// Resolve maps a possibly partial URI from a results file to an archive entry
// name by suffix match. When several entries share the suffix the shortest
// internal path wins; ties keep the first entry in listing order. Resolutions
// are cached for the archive's lifetime, misses included.
func (a *Archive) Resolve(uri string) (string, bool) {
	if entry, ok := a.resolved[uri]; ok {
		return entry, entry != ""
	}

	a.listingScans++
	best := ""
	for _, name := range a.names {
		if !strings.HasSuffix(name, uri) {
			continue
		}
		if best == "" || len(name) < len(best) {
			best = name
		}
	}

	a.resolved[uri] = best
	return best, best != ""
}

// ReadContext returns a line-numbered snippet of contextRadius lines around
// the 1-based line in the file referenced by uri. It reports false when the
// URI or line is missing, or when the URI resolves to no archive entry.
func (a *Archive) ReadContext(uri string, line, contextRadius int) (string, bool) {
	if uri == "" || line == 0 {
		return "", false
	}

	entry, ok := a.Resolve(uri)
	if !ok {
		return "", false
	}

	// An existing but empty entry still yields a payload: the snippet is
	// simply empty, same as a window past the end of the file.
	lines, err := a.readLines(entry)
	if err != nil {
		return "", false
	}

	index := line - 1
	if index < 0 {
		index = 0
	}
	start := index - contextRadius
	if start < 0 {
		start = 0
	}
	end := index + contextRadius
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	var snippet strings.Builder
	for lineno := start; lineno <= end; lineno++ {
		if lineno > start {
			snippet.WriteByte('\n')
		}
		fmt.Fprintf(&snippet, "%5d: %s", lineno+1, lines[lineno])
	}
	return snippet.String(), true
}

// readLines decodes an archive entry into its lines, caching the result.
// Invalid UTF-8 degrades to replacement characters instead of failing.
func (a *Archive) readLines(entry string) ([]string, error) {
	if lines, ok := a.lines.get(entry); ok {
		return lines, nil
	}

	file, ok := a.byName[entry]
	if !ok {
		return nil, fmt.Errorf("entry %q not in archive %q", entry, a.zipPath)
	}

	handle, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive entry %q: %w", entry, err)
	}
	defer handle.Close()

	data, err := io.ReadAll(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive entry %q: %w", entry, err)
	}

	lines := splitLines(strings.ToValidUTF8(string(data), "�"))
	a.lines.put(entry, lines)
	return lines, nil
}

// splitLines splits text on line boundaries without keeping line endings and
// without producing a phantom empty line after a trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
