package network

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

// pathGraph returns the three node path A - B - C
func pathGraph() *Graph {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	return g
}

// triangleGraph returns the complete graph on A, B, C
func triangleGraph() *Graph {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")
	return g
}

func checkNodes(t *testing.T, res *Result, want map[string]float64) {
	t.Helper()

	if res.Kind != ResultPerNode {
		t.Fatalf("Expected per-node result, got kind %d", int(res.Kind))
	}
	if len(res.Nodes) != len(want) {
		t.Fatalf("Expected %d nodes, got %d: %v", len(want), len(res.Nodes), res.Nodes)
	}
	for name, w := range want {
		if got, ok := res.Nodes[name]; !ok || !almostEqual(got, w) {
			t.Errorf("Node %s: got %g, want %g", name, got, w)
		}
	}
}

func TestAverageDegree(t *testing.T) {
	res, err := Compute(pathGraph(), MetricAverageDegree)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.Kind != ResultScalar {
		t.Fatalf("Expected scalar result, got kind %d", int(res.Kind))
	}
	if !almostEqual(res.Scalar, 2.0/3.0) {
		t.Errorf("Average degree = %g, want %g", res.Scalar, 2.0/3.0)
	}
}

func TestAverageDegreeEmptyGraph(t *testing.T) {
	_, err := Compute(NewGraph(), MetricAverageDegree)
	if !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("Expected ErrEmptyGraph, got %v", err)
	}
}

func TestDegreeCentrality(t *testing.T) {
	res, err := Compute(pathGraph(), MetricDegreeCentrality)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	checkNodes(t, res, map[string]float64{"A": 0.5, "B": 1, "C": 0.5})
}

func TestBetweennessCentrality(t *testing.T) {
	res, err := Compute(pathGraph(), MetricBetweennessCentrality)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// Only B lies on a shortest path between distinct endpoints
	checkNodes(t, res, map[string]float64{"A": 0, "B": 1, "C": 0})
}

func TestBetweennessCentralityTriangle(t *testing.T) {
	res, err := Compute(triangleGraph(), MetricBetweennessCentrality)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// Every pair is adjacent, nothing lies between
	checkNodes(t, res, map[string]float64{"A": 0, "B": 0, "C": 0})
}

func TestClosenessCentrality(t *testing.T) {
	res, err := Compute(pathGraph(), MetricClosenessCentrality)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	checkNodes(t, res, map[string]float64{"A": 2.0 / 3.0, "B": 1, "C": 2.0 / 3.0})
}

func TestClosenessCentralityDisconnected(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("C", "D")

	res, err := Compute(g, MetricClosenessCentrality)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// Each node reaches one other node at distance 1; the component factor
	// scales the value by 1/3
	want := 1.0 / 3.0
	checkNodes(t, res, map[string]float64{"A": want, "B": want, "C": want, "D": want})
}

func TestEigenvectorCentrality(t *testing.T) {
	res, err := Compute(pathGraph(), MetricEigenvectorCentrality)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// Leading eigenvector of the path adjacency matrix, unit norm
	want := map[string]float64{"A": 0.5, "B": 1 / math.Sqrt2, "C": 0.5}
	if res.Kind != ResultPerNode {
		t.Fatalf("Expected per-node result, got kind %d", int(res.Kind))
	}
	for name, w := range want {
		if got := res.Nodes[name]; math.Abs(got-w) > 1e-6 {
			t.Errorf("Node %s: got %g, want %g", name, got, w)
		}
	}
}

func TestEigenvectorCentralityTriangle(t *testing.T) {
	res, err := Compute(triangleGraph(), MetricEigenvectorCentrality)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	want := 1 / math.Sqrt(3)
	for _, name := range []string{"A", "B", "C"} {
		if got := res.Nodes[name]; math.Abs(got-want) > 1e-6 {
			t.Errorf("Node %s: got %g, want %g", name, got, want)
		}
		if res.Nodes[name] < 0 {
			t.Errorf("Node %s: negative centrality %g", name, res.Nodes[name])
		}
	}
}

func TestEigenvectorCentralityEmptyGraph(t *testing.T) {
	_, err := Compute(NewGraph(), MetricEigenvectorCentrality)
	if !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("Expected ErrEmptyGraph, got %v", err)
	}
}

func TestEdgeBetweenness(t *testing.T) {
	res, err := Compute(pathGraph(), MetricEdgeBetweenness)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.Kind != ResultPerEdge {
		t.Fatalf("Expected per-edge result, got kind %d", int(res.Kind))
	}
	if len(res.Edges) != 2 {
		t.Fatalf("Expected 2 edges, got %d: %v", len(res.Edges), res.Edges)
	}

	// Each edge carries two of the three shortest paths
	want := 2.0 / 3.0
	for _, key := range []EdgeKey{NewEdgeKey("A", "B"), NewEdgeKey("B", "C")} {
		if got, ok := res.Edges[key]; !ok || !almostEqual(got, want) {
			t.Errorf("Edge %v: got %g, want %g", key, got, want)
		}
	}
}

func TestNewEdgeKeyCanonical(t *testing.T) {
	if NewEdgeKey("B", "A") != NewEdgeKey("A", "B") {
		t.Error("Edge keys not canonical across orientation")
	}
	key := NewEdgeKey("Z", "A")
	if key.A != "A" || key.B != "Z" {
		t.Errorf("Expected sorted key, got %+v", key)
	}
}

func TestParseMetric(t *testing.T) {
	for _, m := range AllMetrics() {
		got, err := ParseMetric(m.String())
		if err != nil {
			t.Errorf("ParseMetric(%q) failed: %v", m.String(), err)
		}
		if got != m {
			t.Errorf("ParseMetric(%q) = %v, want %v", m.String(), got, m)
		}
	}

	if _, err := ParseMetric("page-rank"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("Expected ErrUnknownMetric, got %v", err)
	}
}

func TestParseMetrics(t *testing.T) {
	// Empty selection means all metrics
	got, err := ParseMetrics(nil)
	if err != nil {
		t.Fatalf("ParseMetrics(nil) failed: %v", err)
	}
	if !reflect.DeepEqual(got, AllMetrics()) {
		t.Errorf("ParseMetrics(nil) = %v, want all metrics", got)
	}

	got, err = ParseMetrics([]string{"edge-betweenness", "average-degree"})
	if err != nil {
		t.Fatalf("ParseMetrics failed: %v", err)
	}
	want := []Metric{MetricEdgeBetweenness, MetricAverageDegree}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseMetrics = %v, want %v", got, want)
	}

	if _, err := ParseMetrics([]string{"degree-centrality", "page-rank"}); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("Expected ErrUnknownMetric, got %v", err)
	}
}

func TestAllMetricsCovered(t *testing.T) {
	if len(AllMetrics()) != 6 {
		t.Errorf("Expected 6 metrics, got %d", len(AllMetrics()))
	}
	for _, m := range AllMetrics() {
		if _, err := Compute(pathGraph(), m); err != nil {
			t.Errorf("Compute(%s) failed: %v", m, err)
		}
	}
}
