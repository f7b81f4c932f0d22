package network

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/mat"
)

// Metric identifies one of the supported graph metrics.
type Metric int

const (
	MetricAverageDegree Metric = iota
	MetricDegreeCentrality
	MetricEigenvectorCentrality
	MetricBetweennessCentrality
	MetricClosenessCentrality
	MetricEdgeBetweenness
)

var metricNames = map[Metric]string{
	MetricAverageDegree:         "average-degree",
	MetricDegreeCentrality:      "degree-centrality",
	MetricEigenvectorCentrality: "eigenvector-centrality",
	MetricBetweennessCentrality: "betweenness-centrality",
	MetricClosenessCentrality:   "closeness-centrality",
	MetricEdgeBetweenness:       "edge-betweenness",
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// AllMetrics returns every supported metric in computation order.
func AllMetrics() []Metric {
	return []Metric{
		MetricAverageDegree,
		MetricDegreeCentrality,
		MetricEigenvectorCentrality,
		MetricBetweennessCentrality,
		MetricClosenessCentrality,
		MetricEdgeBetweenness,
	}
}

// ErrUnknownMetric is returned when a metric name does not match any
// supported metric.
var ErrUnknownMetric = errors.New("unknown metric")

// ErrEmptyGraph is returned when a metric is undefined on a graph with no
// nodes.
var ErrEmptyGraph = errors.New("graph has no nodes")

// ParseMetric resolves a metric name as used on the command line.
func ParseMetric(s string) (Metric, error) {
	for m, name := range metricNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// ParseMetrics resolves a list of metric names. An empty list selects every
// supported metric.
func ParseMetrics(names []string) ([]Metric, error) {
	if len(names) == 0 {
		return AllMetrics(), nil
	}
	metrics := make([]Metric, 0, len(names))
	for _, name := range names {
		m, err := ParseMetric(name)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// ResultKind discriminates the shape of a metric result.
type ResultKind int

const (
	ResultScalar ResultKind = iota
	ResultPerNode
	ResultPerEdge
)

// EdgeKey identifies an undirected edge. A sorts before B.
type EdgeKey struct {
	A string
	B string
}

// NewEdgeKey builds a canonical key for an undirected edge.
func NewEdgeKey(a, b string) EdgeKey {
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// Result holds the outcome of one metric computation. Exactly one of Scalar,
// Nodes, or Edges is meaningful, selected by Kind.
type Result struct {
	Metric Metric
	Kind   ResultKind
	Scalar float64
	Nodes  map[string]float64
	Edges  map[EdgeKey]float64
}

// Compute evaluates a metric on a graph.
func Compute(g *Graph, m Metric) (*Result, error) {
	switch m {
	case MetricAverageDegree:
		return averageDegree(g)
	case MetricDegreeCentrality:
		return degreeCentrality(g)
	case MetricEigenvectorCentrality:
		return eigenvectorCentrality(g)
	case MetricBetweennessCentrality:
		return betweennessCentrality(g)
	case MetricClosenessCentrality:
		return closenessCentrality(g)
	case MetricEdgeBetweenness:
		return edgeBetweenness(g)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
}

func averageDegree(g *Graph) (*Result, error) {
	n := g.Order()
	if n == 0 {
		return nil, fmt.Errorf("average degree: %w", ErrEmptyGraph)
	}
	return &Result{
		Metric: MetricAverageDegree,
		Kind:   ResultScalar,
		Scalar: float64(g.Size()) / float64(n),
	}, nil
}

func degreeCentrality(g *Graph) (*Result, error) {
	n := g.Order()
	nodes := make(map[string]float64, n)
	for _, name := range g.Nodes() {
		if n <= 1 {
			nodes[name] = 1
			continue
		}
		nodes[name] = float64(g.Degree(name)) / float64(n-1)
	}
	return &Result{Metric: MetricDegreeCentrality, Kind: ResultPerNode, Nodes: nodes}, nil
}

// betweennessCentrality normalizes Brandes betweenness the conventional way
// for undirected graphs. The raw accumulation counts each source-target pair
// in both directions, so the combined factor is 1/((n-1)(n-2)).
func betweennessCentrality(g *Graph) (*Result, error) {
	n := g.Order()
	raw := network.Betweenness(g.g)

	scale := 0.0
	if n > 2 {
		scale = 1 / (float64(n-1) * float64(n-2))
	}

	nodes := make(map[string]float64, n)
	for _, name := range g.Nodes() {
		nodes[name] = 0
	}
	for id, v := range raw {
		nodes[g.name(id)] = v * scale
	}
	return &Result{Metric: MetricBetweennessCentrality, Kind: ResultPerNode, Nodes: nodes}, nil
}

// edgeBetweenness normalizes like betweennessCentrality, over n*(n-1)
// ordered pairs per edge.
func edgeBetweenness(g *Graph) (*Result, error) {
	n := g.Order()
	raw := network.EdgeBetweenness(g.g)

	scale := 0.0
	if n > 1 {
		scale = 1 / (float64(n) * float64(n-1))
	}

	edges := make(map[EdgeKey]float64, len(raw))
	for pair, v := range raw {
		key := NewEdgeKey(g.name(pair[0]), g.name(pair[1]))
		edges[key] = v * scale
	}
	return &Result{Metric: MetricEdgeBetweenness, Kind: ResultPerEdge, Edges: edges}, nil
}

// closenessCentrality computes the Wasserman-Faust variant, which scales each
// node's closeness by the fraction of the graph it can reach. Disconnected
// components therefore produce sensible values instead of zeros.
func closenessCentrality(g *Graph) (*Result, error) {
	n := g.Order()
	nodes := make(map[string]float64, n)
	if n == 0 {
		return &Result{Metric: MetricClosenessCentrality, Kind: ResultPerNode, Nodes: nodes}, nil
	}

	shortest := path.DijkstraAllPaths(g.g)
	names := g.Nodes()
	for _, u := range names {
		uid := g.ids[u]
		reachable := 0
		sum := 0.0
		for _, v := range names {
			if u == v {
				continue
			}
			d := shortest.Weight(uid, g.ids[v])
			if math.IsInf(d, 1) {
				continue
			}
			reachable++
			sum += d
		}
		if sum == 0 || n <= 1 {
			nodes[u] = 0
			continue
		}
		c := float64(reachable) / sum
		nodes[u] = c * float64(reachable) / float64(n-1)
	}
	return &Result{Metric: MetricClosenessCentrality, Kind: ResultPerNode, Nodes: nodes}, nil
}

// eigenvectorCentrality takes the leading eigenvector of the adjacency
// matrix, sign-fixed to be non-negative and scaled to unit Euclidean norm.
func eigenvectorCentrality(g *Graph) (*Result, error) {
	n := g.Order()
	if n == 0 {
		return nil, fmt.Errorf("eigenvector centrality: %w", ErrEmptyGraph)
	}

	names := g.Nodes()
	index := make(map[string]int, n)
	for i, name := range names {
		index[name] = i
	}

	adj := mat.NewSymDense(n, nil)
	edges := g.g.Edges()
	for edges.Next() {
		e := edges.Edge()
		i := index[g.name(e.From().ID())]
		j := index[g.name(e.To().ID())]
		adj.SetSym(i, j, 1)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(adj, true); !ok {
		return nil, errors.New("eigenvector centrality: eigendecomposition failed to converge")
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues come back in ascending order; the leading eigenvector is
	// the last column.
	leading := make([]float64, n)
	norm := 0.0
	for i := 0; i < n; i++ {
		leading[i] = vectors.At(i, n-1)
		norm += leading[i] * leading[i]
	}
	norm = math.Sqrt(norm)

	// By Perron-Frobenius the leading eigenvector has uniform sign; flip it
	// to the non-negative representative, judged by its largest component.
	sign := 1.0
	maxAbs := 0.0
	for _, v := range leading {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
			if v < 0 {
				sign = -1
			} else {
				sign = 1
			}
		}
	}

	nodes := make(map[string]float64, n)
	for i, name := range names {
		v := sign * leading[i]
		if norm > 0 {
			v /= norm
		}
		nodes[name] = v
	}
	return &Result{Metric: MetricEigenvectorCentrality, Kind: ResultPerNode, Nodes: nodes}, nil
}
