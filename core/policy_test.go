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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func sum(vals []float64) (s float64) {
	for _, v := range vals {
		s += v
	}
	return
}

func TestPolicyFactory(t *testing.T) {
	topo, err := NewTopology(ringAdj(4))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))

	for _, name := range []string{PolicyUniform, PolicyExponential, PolicyAdaptive} {
		_, err = NewGenerationPolicy(name, 0, topo, 0.1, rng)
		require.NoError(t, err)
	}
	_, err = NewGenerationPolicy("fancy", 0, topo, 0.1, rng)
	require.ErrorIs(t, err, ErrBadPolicy)
}

func TestUniformChoose(t *testing.T) {
	topo, err := NewTopology(ringAdj(5))
	require.NoError(t, err)
	p := newUniformPolicy(2, topo, rand.New(rand.NewSource(1)))

	require.Equal(t, []int{0, 1, 3, 4}, p.candidates)
	for i := 0; i < 100; i++ {
		v := p.Choose()
		require.NotEqual(t, 2, v)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
	}
}

func TestExponentialWeights(t *testing.T) {
	// line 0-1-2: from node 0 the weights are 1/1 and 1/2
	topo, err := NewTopology(lineAdj(3))
	require.NoError(t, err)
	p := newExponentialPolicy(0, topo, rand.New(rand.NewSource(1)))

	require.Equal(t, []int{1, 2}, p.candidates)
	require.InDelta(t, 2./3., p.probs[0], 1e-9)
	require.InDelta(t, 1./3., p.probs[1], 1e-9)
	require.InDelta(t, 1, sum(p.probs), 1e-9)
}

func TestExponentialSkipsUnreachable(t *testing.T) {
	adj := make([][]int, 3)
	for i := range adj {
		adj[i] = make([]int, 3)
	}
	adj[0][1], adj[1][0] = 1, 1 // node 2 isolated
	topo, err := NewTopology(adj)
	require.NoError(t, err)

	p := newExponentialPolicy(0, topo, rand.New(rand.NewSource(1)))
	require.Equal(t, []int{1}, p.candidates)
	require.Equal(t, 1, p.Choose())
}

func TestAdaptiveInit(t *testing.T) {
	topo, err := NewTopology(ringAdj(4))
	require.NoError(t, err)
	p := newAdaptivePolicy(0, topo, 0.1, rand.New(rand.NewSource(1)))

	// candidate set is the direct neighbors only
	require.Equal(t, []int{1, 3}, p.neighbors)
	require.InDelta(t, 0.5, p.probs[0], 1e-9)
	require.InDelta(t, 0.5, p.probs[1], 1e-9)
}

func TestAdaptiveUpdate(t *testing.T) {
	// star with center 0 and leaves 1,2,3
	topo, err := NewTopology(starAdj(4))
	require.NoError(t, err)
	p := newAdaptivePolicy(0, topo, 0.5, rand.New(rand.NewSource(1)))

	// link to 2 was used but not available: its probability grows
	p.Update([]int{1}, []int{1, 2})

	require.InDelta(t, 1./3., p.Probability(1), 1e-9)
	require.InDelta(t, 0.5, p.Probability(2), 1e-9)
	require.InDelta(t, 1./6., p.Probability(3), 1e-9)
	require.InDelta(t, 1, sum(p.probs), 1e-9)
	require.Greater(t, p.Probability(2), 1./3.)
}

func TestAdaptiveUpdateKeepsDistribution(t *testing.T) {
	topo, err := NewTopology(ringAdj(6))
	require.NoError(t, err)
	p := newAdaptivePolicy(2, topo, 0.3, rand.New(rand.NewSource(7)))

	// repeated updates with mixed inputs keep a normalized
	// distribution with non-negative weights
	inputs := []struct{ avail, used []int }{
		{[]int{1}, []int{1, 3}},
		{nil, []int{3}},
		{[]int{1, 3}, []int{1}},
		{[]int{3}, []int{1, 3}},
	}
	for _, in := range inputs {
		p.Update(in.avail, in.used)
		require.InDelta(t, 1, sum(p.probs), 1e-9)
		for i, v := range p.probs {
			require.GreaterOrEqual(t, v, 0., "p[%d] negative", i)
		}
	}
}

func TestAdaptiveChooseNoNeighbors(t *testing.T) {
	adj := make([][]int, 2)
	for i := range adj {
		adj[i] = make([]int, 2)
	}
	topo, err := NewTopology(adj)
	require.NoError(t, err)

	p := newAdaptivePolicy(0, topo, 0.1, rand.New(rand.NewSource(1)))
	require.Equal(t, NoPartner, p.Choose())
}
