// Package runstore loads and merges per-node run statuses from build
// artifacts. Two sources are understood: the run_results.json artifact a
// build tool writes after every invocation, and a results.db SQLite
// database kept by wrapper tooling. The fresher source wins; on equal
// timestamps SQLite is preferred as the more authoritative store.
package runstore

import (
	"os"
	"path/filepath"
	"time"
)

// SourceType identifies the kind of run-result artifact.
type SourceType string

const (
	SourceTypeSQLite SourceType = "sqlite"
	SourceTypeJSON   SourceType = "json"
)

// Priority values for source types (higher = more authoritative).
const (
	prioritySQLite = 100
	priorityJSON   = 50
)

// Source is one candidate run-result artifact.
type Source struct {
	Type     SourceType
	Path     string
	Priority int
	ModTime  time.Time
}

// Artifact file names, relative to the project's target directory.
const (
	jsonArtifactName   = "run_results.json"
	sqliteArtifactName = "results.db"
)

// DiscoverSources lists the run-result artifacts present under
// projectDir/target, freshest first. An empty slice is not an error:
// it means nothing has been run yet.
func DiscoverSources(projectDir string) []Source {
	targetDir := filepath.Join(projectDir, "target")
	candidates := []Source{
		{Type: SourceTypeJSON, Path: filepath.Join(targetDir, jsonArtifactName), Priority: priorityJSON},
		{Type: SourceTypeSQLite, Path: filepath.Join(targetDir, sqliteArtifactName), Priority: prioritySQLite},
	}

	var found []Source
	for _, c := range candidates {
		info, err := os.Stat(c.Path)
		if err != nil {
			continue
		}
		c.ModTime = info.ModTime()
		found = append(found, c)
	}

	// Freshest first; priority breaks mtime ties.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && preferred(found[j], found[j-1]); j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	return found
}

func preferred(a, b Source) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Priority > b.Priority
}
