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
	"math/rand"
)

// NoPartner is returned by a policy with an empty candidate set; the
// node skips its tick.
const NoPartner = -1

// ErrBadPolicy indicates an unknown generation policy name.
var ErrBadPolicy = errors.New("policy: unknown generation policy")

// Policy names
const (
	PolicyUniform     = "uniform"
	PolicyExponential = "exponential"
	PolicyAdaptive    = "adaptive"
)

//----------------------------------------------------------------------
// Continuous entanglement generation policies. Each variant carries
// its own candidate set: the static policies draw over all other
// nodes, the adaptive policy over the direct graph neighbors only.
//----------------------------------------------------------------------

// GenerationPolicy selects the partner for continuous link generation.
type GenerationPolicy interface {
	// Choose returns the label of the next partner to attempt
	// entanglement with (NoPartner if there is no candidate).
	Choose() int

	// Update re-weights the distribution from the links available at
	// submission and the links a submitted request will use. A no-op
	// for the static policies.
	Update(available, used []int)
}

// NewGenerationPolicy creates the named policy for a node. The rng is
// the owning node's PRNG so trials stay reproducible. A negative alpha
// falls back to the package configuration.
func NewGenerationPolicy(name string, label int, topo *Topology, alpha float64, rng *rand.Rand) (GenerationPolicy, error) {
	if alpha < 0 {
		alpha = cfg.AdaptParam
	}
	switch name {
	case PolicyUniform:
		return newUniformPolicy(label, topo, rng), nil
	case PolicyExponential:
		return newExponentialPolicy(label, topo, rng), nil
	case PolicyAdaptive:
		return newAdaptivePolicy(label, topo, alpha, rng), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadPolicy, name)
}

// draw a label from candidates with the given probabilities (parallel
// slices). Probabilities sum to one within floating-point tolerance;
// the last candidate absorbs the rounding remainder.
func draw(rng *rand.Rand, candidates []int, probs []float64) int {
	if len(candidates) == 0 {
		return NoPartner
	}
	r := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if r < acc {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

//----------------------------------------------------------------------
// Uniform policy
//----------------------------------------------------------------------

// uniformPolicy draws uniformly over all other nodes.
type uniformPolicy struct {
	candidates []int
	rng        *rand.Rand
}

func newUniformPolicy(label int, topo *Topology, rng *rand.Rand) *uniformPolicy {
	p := &uniformPolicy{rng: rng}
	for v := 0; v < topo.Size(); v++ {
		if v != label {
			p.candidates = append(p.candidates, v)
		}
	}
	return p
}

func (p *uniformPolicy) Choose() int {
	if len(p.candidates) == 0 {
		return NoPartner
	}
	return p.candidates[p.rng.Intn(len(p.candidates))]
}

func (p *uniformPolicy) Update(available, used []int) {}

//----------------------------------------------------------------------
// Exponential (power-law by distance) policy
//----------------------------------------------------------------------

// exponentialPolicy weights all other nodes by the inverse of their
// hop distance. Unreachable nodes are excluded from the candidate set.
type exponentialPolicy struct {
	candidates []int
	probs      []float64
	rng        *rand.Rand
}

func newExponentialPolicy(label int, topo *Topology, rng *rand.Rand) *exponentialPolicy {
	p := &exponentialPolicy{rng: rng}
	total := 0.0
	for v := 0; v < topo.Size(); v++ {
		if v == label {
			continue
		}
		d := topo.Distance(label, v)
		if d < 1 {
			continue
		}
		w := 1 / float64(d)
		p.candidates = append(p.candidates, v)
		p.probs = append(p.probs, w)
		total += w
	}
	for i := range p.probs {
		p.probs[i] /= total
	}
	return p
}

func (p *exponentialPolicy) Choose() int {
	return draw(p.rng, p.candidates, p.probs)
}

func (p *exponentialPolicy) Update(available, used []int) {}

//----------------------------------------------------------------------
// Adaptive policy
//----------------------------------------------------------------------

// adaptivePolicy draws over the direct graph neighbors and shifts
// probability mass toward links that requests needed but that were not
// available when submitted.
type adaptivePolicy struct {
	alpha     float64
	neighbors []int
	index     map[int]int // label -> position in neighbors
	probs     []float64
	rng       *rand.Rand
}

func newAdaptivePolicy(label int, topo *Topology, alpha float64, rng *rand.Rand) *adaptivePolicy {
	p := &adaptivePolicy{
		alpha: alpha,
		index: make(map[int]int),
		rng:   rng,
	}
	for _, v := range topo.Neighbors(label) {
		p.index[v] = len(p.neighbors)
		p.neighbors = append(p.neighbors, v)
	}
	p.probs = make([]float64, len(p.neighbors))
	for i := range p.probs {
		p.probs[i] = 1 / float64(len(p.neighbors))
	}
	return p
}

func (p *adaptivePolicy) Choose() int {
	return draw(p.rng, p.neighbors, p.probs)
}

// Update applies the adaptive re-weighting. With
//
//	A = available ∩ neighbors, U = used ∩ neighbors,
//	S = A ∩ U, T = U \ A, NU = neighbors \ U
//
// links in T (used but missing) gain (α/|T|)·(1−Σ p[S∪T]) each, and
// the unused links are leveled to share the mass left over from U.
func (p *adaptivePolicy) Update(available, used []int) {
	avail := make(map[int]bool)
	for _, v := range available {
		if _, ok := p.index[v]; ok {
			avail[v] = true
		}
	}
	inUse := make(map[int]bool)
	for _, v := range used {
		if _, ok := p.index[v]; ok {
			inUse[v] = true
		}
	}

	var tSet []int
	for _, v := range p.neighbors {
		if inUse[v] && !avail[v] {
			tSet = append(tSet, v)
		}
	}

	// increase probability for used-but-missing links
	if len(tSet) > 0 {
		// S ∪ T = U over the neighbor set
		sumST := 0.0
		for _, v := range p.neighbors {
			if inUse[v] {
				sumST += p.probs[p.index[v]]
			}
		}
		inc := (p.alpha / float64(len(tSet))) * (1 - sumST)
		for _, v := range tSet {
			p.probs[p.index[v]] += inc
		}
	}

	// level the unused links on the remaining mass
	numUnused := len(p.neighbors) - len(inUse)
	if numUnused > 0 {
		sumUsed := 0.0
		for v := range inUse {
			sumUsed += p.probs[p.index[v]]
		}
		rest := (1 - sumUsed) / float64(numUnused)
		for _, v := range p.neighbors {
			if !inUse[v] {
				p.probs[p.index[v]] = rest
			}
		}
	}
}

// Probability returns the current weight of a neighbor label (0 for
// non-neighbors). Exposed for analysis and tests.
func (p *adaptivePolicy) Probability(label int) float64 {
	if i, ok := p.index[label]; ok {
		return p.probs[i]
	}
	return 0
}
