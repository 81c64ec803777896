package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"pipescope/pkg/model"
)

// Store holds the last known run status for every node, keyed by the
// node's unique identifier string. It is owned by the UI goroutine;
// Reload is called from there after each completed run and on artifact
// file changes.
type Store struct {
	projectDir string
	statuses   map[string]model.RunStatus
	lastSource *Source
}

// New returns an empty store for a project. Every node reads as
// "never run" until the first Reload.
func New(projectDir string) *Store {
	return &Store{
		projectDir: projectDir,
		statuses:   make(map[string]model.RunStatus),
	}
}

// Status returns the stored status for a unique ID. Unknown IDs are
// "never run", not an error.
func (s *Store) Status(uid string) model.RunStatus {
	return s.statuses[uid]
}

// ArtifactPath returns the path of the most recently loaded artifact, or
// the default JSON artifact path when nothing has been loaded yet. The
// file watcher points here.
func (s *Store) ArtifactPath() string {
	if s.lastSource != nil {
		return s.lastSource.Path
	}
	return filepath.Join(s.projectDir, "target", jsonArtifactName)
}

// Reload re-reads the freshest artifact and merges its results over the
// stored ones. Nodes absent from the new artifact keep their previous
// status. A missing artifact leaves the store untouched. After merging,
// successes whose source file changed since completion are downgraded
// to stale.
func (s *Store) Reload(g *model.Graph) error {
	sources := DiscoverSources(s.projectDir)
	if len(sources) > 0 {
		src := sources[0]
		var (
			results map[string]model.RunStatus
			err     error
		)
		switch src.Type {
		case SourceTypeSQLite:
			results, err = loadSQLiteResults(src.Path)
		default:
			results, err = loadJSONResults(src.Path)
		}
		if err != nil {
			return fmt.Errorf("load run results from %s: %w", src.Path, err)
		}
		for uid, st := range results {
			s.statuses[uid] = st
		}
		s.lastSource = &src
	}

	s.markStale(g)
	return nil
}

// markStale downgrades successes whose storage file was modified after
// the recorded completion time.
func (s *Store) markStale(g *model.Graph) {
	if g == nil {
		return
	}
	for i := 0; i < g.Len(); i++ {
		n := g.Node(model.NodeID(i))
		if n.UniqueID == "" || n.Path == "" {
			continue
		}
		st, ok := s.statuses[n.UniqueID]
		if !ok || st.Kind != model.StatusSuccess || st.CompletedAt.IsZero() {
			continue
		}
		info, err := os.Stat(filepath.Join(s.projectDir, n.Path))
		if err != nil {
			continue
		}
		if info.ModTime().After(st.CompletedAt) {
			st.Kind = model.StatusStale
			s.statuses[n.UniqueID] = st
		}
	}
}

// runResults is the artifact's JSON shape.
type runResults struct {
	Results []struct {
		UniqueID    string `json:"unique_id"`
		Status      string `json:"status"`
		Message     string `json:"message"`
		CompletedAt string `json:"completed_at"`
	} `json:"results"`
}

func loadJSONResults(path string) (map[string]model.RunStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rr runResults
	if err := json.Unmarshal(data, &rr); err != nil {
		return nil, err
	}

	out := make(map[string]model.RunStatus, len(rr.Results))
	for _, res := range rr.Results {
		if res.UniqueID == "" {
			continue
		}
		st := model.RunStatus{Kind: statusKind(res.Status), Message: res.Message}
		if res.CompletedAt != "" {
			if t, err := time.Parse(time.RFC3339, res.CompletedAt); err == nil {
				st.CompletedAt = t
			}
		}
		out[res.UniqueID] = st
	}
	return out, nil
}

func statusKind(status string) model.StatusKind {
	switch status {
	case "success", "pass":
		return model.StatusSuccess
	case "error", "fail":
		return model.StatusError
	case "skipped":
		return model.StatusSkipped
	default:
		return model.StatusNeverRun
	}
}
