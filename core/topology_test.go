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
	"testing"

	"github.com/stretchr/testify/require"
)

// lineAdj returns the adjacency matrix of a line 0-1-...-(n-1).
func lineAdj(n int) [][]int {
	adj := make([][]int, n)
	for i := range adj {
		adj[i] = make([]int, n)
	}
	for i := 0; i < n-1; i++ {
		adj[i][i+1] = 1
		adj[i+1][i] = 1
	}
	return adj
}

// ringAdj returns the adjacency matrix of a ring of n nodes.
func ringAdj(n int) [][]int {
	adj := lineAdj(n)
	adj[0][n-1] = 1
	adj[n-1][0] = 1
	return adj
}

// starAdj returns a star with node 0 in the center.
func starAdj(n int) [][]int {
	adj := make([][]int, n)
	for i := range adj {
		adj[i] = make([]int, n)
	}
	for i := 1; i < n; i++ {
		adj[0][i] = 1
		adj[i][0] = 1
	}
	return adj
}

func TestTopologyDistances(t *testing.T) {
	topo, err := NewTopology(ringAdj(4))
	require.NoError(t, err)
	require.Equal(t, 4, topo.Size())

	require.Equal(t, 0, topo.Distance(2, 2))
	require.Equal(t, 1, topo.Distance(0, 1))
	require.Equal(t, 1, topo.Distance(0, 3))
	require.Equal(t, 2, topo.Distance(0, 2))
	require.Equal(t, topo.Distance(2, 0), topo.Distance(0, 2))

	// a next hop is a neighbor that gets strictly closer
	hop := topo.NextHop(0, 2)
	require.True(t, topo.HasEdge(0, hop))
	require.Equal(t, 1, topo.Distance(hop, 2))
	require.Equal(t, 1, topo.NextHop(0, 1))

	require.Equal(t, []int{1, 3}, topo.Neighbors(0))
}

func TestTopologyDisconnected(t *testing.T) {
	// two components: 0-1 and 2-3
	adj := make([][]int, 4)
	for i := range adj {
		adj[i] = make([]int, 4)
	}
	adj[0][1], adj[1][0] = 1, 1
	adj[2][3], adj[3][2] = 1, 1

	topo, err := NewTopology(adj)
	require.NoError(t, err)
	require.Equal(t, -1, topo.Distance(0, 2))
	require.Equal(t, -1, topo.NextHop(0, 3))
}

func TestTopologyValidation(t *testing.T) {
	_, err := NewTopology([][]int{{0, 1}, {1}})
	require.ErrorIs(t, err, ErrMatrixShape)

	_, err = NewTopology([][]int{{0, 1}, {0, 0}})
	require.ErrorIs(t, err, ErrMatrixSymmetry)
}
