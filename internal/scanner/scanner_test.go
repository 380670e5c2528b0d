package scanner

import (
	"context"
	"testing"

	"assetpack/internal/logging"
	"assetpack/internal/scenegraph"
)

func buildGraph() *scenegraph.Graph {
	graph := scenegraph.NewGraph("/obj/asset")
	graph.Connect("/obj/asset", "/obj/asset/geo")
	graph.Connect("/obj/asset", "/obj/asset/mat")
	graph.AddParameter("/obj/asset/geo", scenegraph.Parameter{
		Name: "file", Value: "/job/geo/table.abc", FilePath: true, RoleHint: "alembic",
	})
	graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "basecolor", Value: "/job/tex/wood.<UDIM>.png", FilePath: true, RoleHint: "wood",
	})
	graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "label", Value: "just a string",
	})
	// Undeclared parameter that still looks like a file path.
	graph.AddParameter("/obj/asset/geo", scenegraph.Parameter{
		Name: "proxy", Value: "/job/geo/table_proxy.obj",
	})
	return graph
}

func TestScanCollectsFileReferences(t *testing.T) {
	refs, err := New(logging.NewNop()).Scan(context.Background(), buildGraph())
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 3 {
		t.Fatalf("got %d references, want 3: %+v", len(refs), refs)
	}
	for _, ref := range refs {
		if ref.Kind != PatternUnknown {
			t.Fatalf("scanner must not classify, got %s", ref.Kind)
		}
	}

	byParam := map[string]Reference{}
	for _, ref := range refs {
		byParam[ref.Parameter] = ref
	}
	if _, ok := byParam["label"]; ok {
		t.Fatal("plain string parameter should be ignored")
	}
	if ref := byParam["proxy"]; ref.RawValue != "/job/geo/table_proxy.obj" {
		t.Fatalf("heuristic reference missing: %+v", byParam)
	}
	if ref := byParam["basecolor"]; ref.RawValue != "/job/tex/wood.<UDIM>.png" {
		t.Fatalf("raw value altered: %q", ref.RawValue)
	}
}

func TestScanHandlesCycles(t *testing.T) {
	graph := buildGraph()
	graph.Connect("/obj/asset/mat", "/obj/asset")

	refs, err := New(logging.NewNop()).Scan(context.Background(), graph)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 3 {
		t.Fatalf("cycle changed reference count: %d", len(refs))
	}
}

func TestScanKeepsFrameTokensUnresolved(t *testing.T) {
	graph := scenegraph.NewGraph("/obj/asset")
	graph.AddParameter("/obj/asset", scenegraph.Parameter{
		Name: "cache", Value: "/job/cache/sim.$F4.vdb", FilePath: true,
	})

	refs, err := New(logging.NewNop()).Scan(context.Background(), graph)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d references", len(refs))
	}
	if refs[0].ResolvedValue != "/job/cache/sim.$F4.vdb" {
		t.Fatalf("frame token destroyed by resolution: %q", refs[0].ResolvedValue)
	}
}

func TestScanResolvesEnvironmentVariables(t *testing.T) {
	t.Setenv("JOB", "/job/show01")
	graph := scenegraph.NewGraph("/obj/asset")
	graph.AddParameter("/obj/asset", scenegraph.Parameter{
		Name: "tex", Value: "$JOB/tex/wood.png", FilePath: true,
	})

	refs, err := New(logging.NewNop()).Scan(context.Background(), graph)
	if err != nil {
		t.Fatal(err)
	}
	if refs[0].RawValue != "$JOB/tex/wood.png" {
		t.Fatalf("raw value must stay unexpanded: %q", refs[0].RawValue)
	}
	if refs[0].ResolvedValue != "/job/show01/tex/wood.png" {
		t.Fatalf("resolved = %q", refs[0].ResolvedValue)
	}
}

func TestLooksLikeFilePath(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"/job/tex/wood.png", true},
		{"/job/cache/sim.$F4.vdb", true},
		{"/job/tex/brick.<UDIM>.png", true},
		{"wood.png", false},
		{"/job/notes/readme.txt", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := LooksLikeFilePath(tc.value); got != tc.want {
			t.Fatalf("LooksLikeFilePath(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
