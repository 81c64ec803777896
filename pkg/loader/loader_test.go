package loader

import (
	"reflect"
	"testing"

	"pipescope/pkg/model"
)

const sampleManifest = `{
  "nodes": {
    "model.shop.stg_orders": {
      "resource_type": "model",
      "name": "stg_orders",
      "original_file_path": "models/staging/stg_orders.sql",
      "description": "One row per order.",
      "depends_on": {"nodes": ["source.shop.raw_orders"]}
    },
    "model.shop.orders": {
      "resource_type": "model",
      "name": "orders",
      "original_file_path": "models/marts/orders.sql",
      "depends_on": {"nodes": ["model.shop.stg_orders"]}
    },
    "test.shop.not_null_orders_id": {
      "resource_type": "test",
      "name": "not_null_orders_id",
      "depends_on": {"nodes": ["model.shop.orders"]}
    }
  },
  "sources": {
    "source.shop.raw_orders": {
      "name": "raw_orders",
      "depends_on": {"nodes": []}
    }
  },
  "exposures": {
    "exposure.shop.weekly": {
      "name": "weekly",
      "depends_on": {"nodes": ["model.shop.orders"]}
    }
  }
}`

func TestParseManifest(t *testing.T) {
	g, err := ParseManifest([]byte(sampleManifest), ParseOptions{})
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	if g.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", g.Len())
	}
	if g.EdgeCount() != 4 {
		t.Fatalf("EdgeCount() = %d, want 4", g.EdgeCount())
	}

	id, ok := g.ByUniqueID("model.shop.stg_orders")
	if !ok {
		t.Fatal("stg_orders missing")
	}
	n := g.Node(id)
	if n.Type != model.TypeModel || n.Label != "stg_orders" ||
		n.Path != "models/staging/stg_orders.sql" || n.Description != "One row per order." {
		t.Errorf("stg_orders = %+v", n)
	}

	src, _ := g.ByUniqueID("source.shop.raw_orders")
	if g.Node(src).Type != model.TypeSource {
		t.Errorf("raw_orders type = %s, want source", g.Node(src).Type)
	}
	exp, _ := g.ByUniqueID("exposure.shop.weekly")
	if g.Node(exp).Type != model.TypeExposure {
		t.Errorf("weekly type = %s, want exposure", g.Node(exp).Type)
	}
}

func TestEdgeTypes(t *testing.T) {
	g, err := ParseManifest([]byte(sampleManifest), ParseOptions{})
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	counts := map[model.EdgeType]int{}
	for _, e := range g.Edges() {
		counts[e.Type]++
	}
	want := map[model.EdgeType]int{
		model.EdgeSource: 1, // raw_orders -> stg_orders
		model.EdgeRef:    2, // stg_orders -> orders, orders -> weekly
		model.EdgeTest:   1, // orders -> not_null test
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("edge type counts = %v, want %v", counts, want)
	}
}

func TestUnknownDependencyBecomesPlaceholder(t *testing.T) {
	const manifest = `{
	  "nodes": {
	    "model.shop.orphan": {
	      "resource_type": "model",
	      "name": "orphan",
	      "depends_on": {"nodes": ["model.shop.missing"]}
	    }
	  }
	}`
	var warnings []string
	g, err := ParseManifest([]byte(manifest), ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	id, ok := g.ByUniqueID("model.shop.missing")
	if !ok {
		t.Fatal("missing dependency got no placeholder node")
	}
	if g.Node(id).Type != model.TypeUnresolved {
		t.Errorf("placeholder type = %s, want unresolved", g.Node(id).Type)
	}
	if len(warnings) != 1 {
		t.Errorf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
}

func TestParseDeterministic(t *testing.T) {
	first, err := ParseManifest([]byte(sampleManifest), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		g, err := ParseManifest([]byte(sampleManifest), ParseOptions{})
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < g.Len(); j++ {
			if g.Node(model.NodeID(j)).UniqueID != first.Node(model.NodeID(j)).UniqueID {
				t.Fatalf("node order differs at %d on iteration %d", j, i)
			}
		}
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseManifest([]byte("{nope"), ParseOptions{}); err == nil {
		t.Fatal("malformed JSON accepted")
	}
}

func TestEntryWithoutNameFallsBackToUID(t *testing.T) {
	const manifest = `{"nodes": {"model.shop.anon": {"resource_type": "model"}}}`
	g, err := ParseManifest([]byte(manifest), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	id, _ := g.ByUniqueID("model.shop.anon")
	if g.Node(id).Label != "model.shop.anon" {
		t.Errorf("label = %q, want the unique ID", g.Node(id).Label)
	}
}
