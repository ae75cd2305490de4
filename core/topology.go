//----------------------------------------------------------------------
// This file is part of qnetsim.
// Copyright (C) 2023 Bernd Fix >Y<
//
// qnetsim is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// qnetsim is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later
//----------------------------------------------------------------------

package core

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvlath/bfs"
	lvcore "github.com/katalvlaran/lvlath/core"
)

// Errors for topology construction
var (
	// ErrMatrixShape indicates a non-square adjacency matrix.
	ErrMatrixShape = errors.New("topology: adjacency matrix is not square")

	// ErrMatrixSymmetry indicates a directed (asymmetric) adjacency entry.
	ErrMatrixSymmetry = errors.New("topology: adjacency matrix is not symmetric")
)

//----------------------------------------------------------------------
// Topology wraps the static network graph. Hop distances and
// shortest-path next hops are derived once from per-vertex BFS runs
// and served from matrices afterwards; labels are dense integers
// indexing the traffic matrix and requests.
//----------------------------------------------------------------------

// Topology is the static network graph with derived distance data.
type Topology struct {
	size      int
	adj       [][]int
	graph     *lvcore.Graph
	neighbors [][]int
	dist      [][]int // hop distances (-1 if unreachable)
	next      [][]int // first hop on a shortest path (-1 if none)
}

// vertex id for a node label; zero-padded so the lexicographic vertex
// order of the graph library matches numeric label order.
func vertexID(label int) string {
	return fmt.Sprintf("n%06d", label)
}

// NewTopology builds a topology from a 0/1 adjacency matrix.
func NewTopology(adj [][]int) (*Topology, error) {
	n := len(adj)
	for _, row := range adj {
		if len(row) != n {
			return nil, ErrMatrixShape
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if adj[i][j] != adj[j][i] {
				return nil, fmt.Errorf("%w: [%d][%d]", ErrMatrixSymmetry, i, j)
			}
		}
	}
	t := &Topology{
		size:      n,
		adj:       adj,
		graph:     lvcore.NewGraph(),
		neighbors: make([][]int, n),
		dist:      make([][]int, n),
		next:      make([][]int, n),
	}
	// build the graph
	for i := 0; i < n; i++ {
		if err := t.graph.AddVertex(vertexID(i)); err != nil {
			return nil, fmt.Errorf("topology: add vertex %d: %w", i, err)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if adj[i][j] != 0 {
				if _, err := t.graph.AddEdge(vertexID(i), vertexID(j), 0); err != nil {
					return nil, fmt.Errorf("topology: add edge %d-%d: %w", i, j, err)
				}
				t.neighbors[i] = append(t.neighbors[i], j)
				t.neighbors[j] = append(t.neighbors[j], i)
			}
		}
	}
	// derive hop distances and next hops from per-vertex BFS
	for u := 0; u < n; u++ {
		t.dist[u] = make([]int, n)
		t.next[u] = make([]int, n)
		res, err := bfs.BFS(t.graph, vertexID(u))
		if err != nil {
			return nil, fmt.Errorf("topology: bfs from %d: %w", u, err)
		}
		for v := 0; v < n; v++ {
			t.dist[u][v] = -1
			t.next[u][v] = -1
			if u == v {
				t.dist[u][v] = 0
				continue
			}
			d, ok := res.Depth[vertexID(v)]
			if !ok {
				continue
			}
			t.dist[u][v] = d
			path, err := res.PathTo(vertexID(v))
			if err != nil || len(path) < 2 {
				continue
			}
			var hop int
			if _, err = fmt.Sscanf(path[1], "n%06d", &hop); err != nil {
				return nil, fmt.Errorf("topology: bad vertex id %q: %w", path[1], err)
			}
			t.next[u][v] = hop
		}
	}
	return t, nil
}

// Size returns the number of nodes.
func (t *Topology) Size() int {
	return t.size
}

// Adjacency returns the adjacency matrix.
func (t *Topology) Adjacency() [][]int {
	return t.adj
}

// Neighbors returns the direct graph neighbors of a node (ascending).
func (t *Topology) Neighbors(label int) []int {
	return t.neighbors[label]
}

// HasEdge returns true if u and v are direct neighbors.
func (t *Topology) HasEdge(u, v int) bool {
	return t.adj[u][v] != 0
}

// Distance returns the hop distance between two nodes, -1 if
// unreachable.
func (t *Topology) Distance(u, v int) int {
	return t.dist[u][v]
}

// NextHop returns the first hop on a shortest path from u to v, -1 if
// v is unreachable.
func (t *Topology) NextHop(u, v int) int {
	return t.next[u][v]
}
