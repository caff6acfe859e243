// Package graph implements the ProcessingGraph/Router (spec §4.9):
// build-time DAG construction with cycle rejection, topological
// level-by-level scheduling with a bounded worker pool for independent
// subgraphs, and playback-latency compensation. Grounded on the
// teacher's `engine/queue` package for the worker-goroutine/WaitGroup
// shape, generalized from a single mutation-serializing goroutine to a
// per-cycle fan-out over a node DAG.
package graph

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/shaban/dawcore/region"
)

// ErrCycleDetected is returned by Build when the node/edge set contains
// a cycle (spec §4.9).
var ErrCycleDetected = errors.New("graph: cycle detected")

// Node is one schedulable unit: a TrackProcessor, a plugin slot, a
// fader, a hardware processor, or a port standing in as a node where an
// edge needs one (spec §4.9). Prepare/Process are adapted closures so
// this package does not need to know the concrete type behind each node.
type Node struct {
	ID      string
	Latency int // inherent processing delay, in frames

	Prepare func(nframes int)
	Process func(ti region.TimeInfo) error
}

// Graph is a build-time DAG over Nodes plus the schedule Build derives
// from it.
type Graph struct {
	nodes map[string]*Node
	edges map[string]map[string]bool // node id -> set of node ids it feeds

	levels [][]*Node // topological levels; nodes within a level have no edges between them

	// Workers caps the concurrency used to run a level's independent
	// nodes. Zero means compute from runtime.NumCPU().
	Workers int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node), edges: make(map[string]map[string]bool)}
}

// AddNode registers a node. Re-adding an existing ID replaces it.
func (g *Graph) AddNode(n *Node) error {
	if n.ID == "" {
		return errors.New("graph: node id cannot be empty")
	}
	g.nodes[n.ID] = n
	if g.edges[n.ID] == nil {
		g.edges[n.ID] = make(map[string]bool)
	}
	g.levels = nil
	return nil
}

// AddEdge records that from feeds into to — a port connection or an
// intra-track link (spec §4.9's "edges = port connections + implicit
// intra-track links").
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("graph: unknown source node %q", from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("graph: unknown destination node %q", to)
	}
	g.edges[from][to] = true
	g.levels = nil
	return nil
}

// RemoveNode drops a node and every edge touching it.
func (g *Graph) RemoveNode(id string) {
	delete(g.nodes, id)
	delete(g.edges, id)
	for _, outs := range g.edges {
		delete(outs, id)
	}
	g.levels = nil
}

// Build computes a topological level order via Kahn's algorithm,
// grouping nodes with no edges between them into the same level so Run
// can execute each level's nodes concurrently. Returns ErrCycleDetected
// if the edge set is not a DAG.
func (g *Graph) Build() error {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = 0
	}
	for _, outs := range g.edges {
		for to := range outs {
			inDegree[to]++
		}
	}

	remaining := len(g.nodes)
	var levels [][]*Node
	for remaining > 0 {
		var level []*Node
		for id, deg := range inDegree {
			if deg == 0 {
				level = append(level, g.nodes[id])
			}
		}
		if len(level) == 0 {
			return ErrCycleDetected
		}
		for _, n := range level {
			delete(inDegree, n.ID)
			for to := range g.edges[n.ID] {
				if _, ok := inDegree[to]; ok {
					inDegree[to]--
				}
			}
		}
		levels = append(levels, level)
		remaining -= len(level)
	}
	g.levels = levels
	return nil
}

// workerCount resolves the configured worker cap against available
// cores (spec §4.9: "worker count = min(hw_cores, configured)").
func (g *Graph) workerCount() int {
	cores := runtime.NumCPU()
	if g.Workers <= 0 {
		return cores
	}
	if g.Workers < cores {
		return g.Workers
	}
	return cores
}

// Run executes one cycle: each topological level's nodes run Prepare
// then Process, fanned out across a bounded worker pool; levels
// themselves run strictly in order since a later level's nodes may
// depend on an earlier level's output. Per-node errors are collected
// rather than aborting the cycle.
func (g *Graph) Run(ti region.TimeInfo) []error {
	if g.levels == nil {
		if err := g.Build(); err != nil {
			return []error{err}
		}
	}
	var (
		mu   sync.Mutex
		errs []error
	)
	workers := g.workerCount()
	for _, level := range g.levels {
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for _, n := range level {
			n := n
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				n.Prepare(ti.NFrames)
				if err := n.Process(ti); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("graph: node %q: %w", n.ID, err))
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
	}
	return errs
}
