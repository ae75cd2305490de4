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

func TestGetPathShortest(t *testing.T) {
	topo, nodes := buildNet(t, ringAdj(4), 1, 1, 1)

	req := NewRequest(0, 0, 2)
	route, err := req.GetPath(topo, nodes)
	require.NoError(t, err)
	require.Len(t, route, 3)
	require.Equal(t, 0, route[0])
	require.Equal(t, 2, route[2])
	require.True(t, topo.HasEdge(route[0], route[1]))
	require.True(t, topo.HasEdge(route[1], route[2]))
}

func TestGetPathVirtualShortcut(t *testing.T) {
	topo, nodes := buildNet(t, lineAdj(4), 4, 1, 1)

	// two live links 0~2 make 2 a virtual neighbor of 0
	require.True(t, nodes[0].CreateLink(0, nodes[2]))
	require.True(t, nodes[0].CreateLink(0, nodes[2]))

	req := NewRequest(0, 0, 3)
	route, err := req.GetPath(topo, nodes)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 3}, route)
}

func TestGetPathVirtualNotCloser(t *testing.T) {
	topo, nodes := buildNet(t, lineAdj(4), 4, 1, 1)

	// a virtual neighbor behind the origin does not shorten the
	// walk and is ignored
	require.True(t, nodes[1].CreateLink(0, nodes[0]))
	require.True(t, nodes[1].CreateLink(0, nodes[0]))

	req := NewRequest(0, 1, 3)
	route, err := req.GetPath(topo, nodes)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, route)
}

func TestGetPathSingleLinkNoShortcut(t *testing.T) {
	topo, nodes := buildNet(t, lineAdj(4), 4, 1, 1)

	// one link is not enough for a virtual neighbor
	require.True(t, nodes[0].CreateLink(0, nodes[2]))

	req := NewRequest(0, 0, 3)
	route, err := req.GetPath(topo, nodes)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, route)
}

func TestGetPathErrors(t *testing.T) {
	topo, nodes := buildNet(t, lineAdj(2), 1, 1, 1)

	req := NewRequest(0, 1, 1)
	_, err := req.GetPath(topo, nodes)
	require.ErrorIs(t, err, ErrSameEndpoints)

	// disconnected components
	adj := make([][]int, 4)
	for i := range adj {
		adj[i] = make([]int, 4)
	}
	adj[0][1], adj[1][0] = 1, 1
	adj[2][3], adj[3][2] = 1, 1
	topo2, nodes2 := buildNet(t, adj, 1, 1, 1)

	req = NewRequest(0, 0, 3)
	_, err = req.GetPath(topo2, nodes2)
	require.ErrorIs(t, err, ErrNoRoute)
}
