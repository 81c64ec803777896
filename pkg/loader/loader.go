// Package loader builds the dependency graph from a dbt-style manifest
// artifact (manifest.json). Parsing is tolerant: malformed entries are
// reported through a warning handler and skipped rather than failing the
// whole load.
package loader

import (
	"fmt"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"pipescope/pkg/model"
)

// ParseOptions configures manifest parsing.
type ParseOptions struct {
	// WarningHandler receives non-fatal parse warnings. Nil discards them.
	WarningHandler func(msg string)
}

// manifestEntry is the subset of a manifest node we care about.
type manifestEntry struct {
	ResourceType string `json:"resource_type"`
	Name         string `json:"name"`
	Path         string `json:"original_file_path"`
	Description  string `json:"description"`
	DependsOn    struct {
		Nodes []string `json:"nodes"`
	} `json:"depends_on"`
}

type manifest struct {
	Nodes     map[string]manifestEntry `json:"nodes"`
	Sources   map[string]manifestEntry `json:"sources"`
	Exposures map[string]manifestEntry `json:"exposures"`
}

// LoadManifest reads and parses a manifest file into a Graph.
func LoadManifest(path string, opts ParseOptions) (*model.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data, opts)
}

// ParseManifest builds the Graph from raw manifest JSON. Dependencies on
// unique IDs that the manifest never defines become placeholder nodes of
// type "unresolved" so the graph stays navigable.
func ParseManifest(data []byte, opts ParseOptions) (*model.Graph, error) {
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(string) {}
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	type pending struct {
		uid   string
		entry manifestEntry
	}
	var entries []pending
	for uid, e := range m.Nodes {
		entries = append(entries, pending{uid, e})
	}
	for uid, e := range m.Sources {
		if e.ResourceType == "" {
			e.ResourceType = string(model.TypeSource)
		}
		entries = append(entries, pending{uid, e})
	}
	for uid, e := range m.Exposures {
		if e.ResourceType == "" {
			e.ResourceType = string(model.TypeExposure)
		}
		entries = append(entries, pending{uid, e})
	}
	// Map iteration order is random; sort for a deterministic graph.
	sort.Slice(entries, func(i, j int) bool { return entries[i].uid < entries[j].uid })

	g := model.NewGraph(len(entries), len(entries)*2)
	for _, p := range entries {
		label := p.entry.Name
		if label == "" {
			warn(fmt.Sprintf("manifest entry %q has no name, using unique ID", p.uid))
			label = p.uid
		}
		g.AddNode(model.Node{
			Type:        nodeType(p.entry.ResourceType),
			Label:       label,
			UniqueID:    p.uid,
			Path:        p.entry.Path,
			Description: p.entry.Description,
		})
	}

	for _, p := range entries {
		to, _ := g.ByUniqueID(p.uid)
		for _, dep := range p.entry.DependsOn.Nodes {
			from, ok := g.ByUniqueID(dep)
			if !ok {
				warn(fmt.Sprintf("%s depends on unknown node %q", p.uid, dep))
				from = g.AddNode(model.Node{
					Type:     model.TypeUnresolved,
					Label:    dep,
					UniqueID: dep,
				})
			}
			g.AddEdge(model.Edge{Type: edgeType(g, from, to), From: from, To: to})
		}
	}
	return g, nil
}

func nodeType(resourceType string) model.NodeType {
	switch model.NodeType(resourceType) {
	case model.TypeModel, model.TypeSource, model.TypeSeed, model.TypeSnapshot,
		model.TypeTest, model.TypeExposure, model.TypeAnalysis:
		return model.NodeType(resourceType)
	default:
		return model.TypeUnresolved
	}
}

func edgeType(g *model.Graph, from, to model.NodeID) model.EdgeType {
	switch {
	case g.Node(to).Type == model.TypeTest:
		return model.EdgeTest
	case g.Node(from).Type == model.TypeSource:
		return model.EdgeSource
	default:
		return model.EdgeRef
	}
}
