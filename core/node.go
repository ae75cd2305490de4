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
	"fmt"
	"math"
	"math/rand"
)

//----------------------------------------------------------------------
// Node: owns a memory pool, a generation policy, per-neighbor link
// counters and the per-active-request path bookkeeping. All mutation
// happens inside the single-threaded tick loop; a memory is only ever
// touched by its owner or by the node on the other end of a link being
// created, swapped or expired.
//----------------------------------------------------------------------

// Pair is an ordered node pair (u,v) identifying one link event.
type Pair struct {
	U, V int
}

// MarshalJSON encodes the pair as a two-element array.
func (p Pair) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d]", p.U, p.V)), nil
}

// UnmarshalJSON decodes a two-element array.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var v [2]int
	if _, err := fmt.Sscanf(string(data), "[%d,%d]", &v[0], &v[1]); err != nil {
		return fmt.Errorf("pair: %w", err)
	}
	p.U, p.V = v[0], v[1]
	return nil
}

// NodeTable resolves node labels to nodes; it owns all nodes for one
// trial.
type NodeTable []*Node

// Node represents a network vertex holding quantum memories.
type Node struct {
	label int
	topo  *Topology
	table NodeTable
	pool  *MemoryPool

	policy    GenerationPolicy
	linkCount map[int]int // live links per other label (0 for strangers)

	// per-active-request path bookkeeping, one entry per queued
	// request passing through this node, popped in completion order
	leftToConnect  [][]int
	rightToConnect [][]int

	rng      *rand.Rand
	genProb  float64
	swapProb float64

	listener Listener
}

// NewNode creates a node with its memory pool and a fresh PRNG.
// Non-positive sizes/lifetimes and negative probabilities fall back to
// the package configuration.
func NewNode(label, memoSize, lifetime int, genProb, swapProb float64, topo *Topology, seed int64) *Node {
	if memoSize <= 0 {
		memoSize = cfg.MemoSize
	}
	if lifetime <= 0 {
		lifetime = cfg.MemoLifetime
	}
	if genProb < 0 {
		genProb = cfg.GenProb
	}
	if swapProb < 0 {
		swapProb = cfg.SwapProb
	}
	n := &Node{
		label:     label,
		topo:      topo,
		pool:      NewMemoryPool(label, memoSize, lifetime),
		linkCount: make(map[int]int),
		rng:       rand.New(rand.NewSource(seed)),
		genProb:   genProb,
		swapProb:  swapProb,
	}
	for v := 0; v < topo.Size(); v++ {
		if v != label {
			n.linkCount[v] = 0
		}
	}
	return n
}

// Attach wires the node into its trial: the shared node table, its
// generation policy and an optional event listener.
func (n *Node) Attach(table NodeTable, policy GenerationPolicy, listener Listener) {
	n.table = table
	n.policy = policy
	n.listener = listener
}

// Label of the node.
func (n *Node) Label() int {
	return n.label
}

// Pool returns the node's memory pool.
func (n *Node) Pool() *MemoryPool {
	return n.pool
}

// Policy returns the node's generation policy.
func (n *Node) Policy() GenerationPolicy {
	return n.policy
}

// Rng returns the node's PRNG.
func (n *Node) Rng() *rand.Rand {
	return n.rng
}

// LinkCount returns the number of live links with another node.
func (n *Node) LinkCount(other int) int {
	return n.linkCount[other]
}

// AvailableLinks returns the labels the node currently holds links
// with, in ascending label order.
func (n *Node) AvailableLinks() (list []int) {
	for v := 0; v < n.topo.Size(); v++ {
		if n.linkCount[v] > 0 {
			list = append(list, v)
		}
	}
	return
}

func (n *Node) notify(typ, ref, tick int) {
	if n.listener != nil {
		n.listener(&Event{Type: typ, Node: n.label, Ref: ref, Tick: tick})
	}
}

//----------------------------------------------------------------------
// Expiration
//----------------------------------------------------------------------

// MemoExpire tears down the link held in a memory: clears both ends
// (recursively instructing the peer node to expire its half), adjusts
// the link counters and frees the memory. The cascade terminates at a
// peer memory that is already unreserved.
func (n *Node) MemoExpire(m *Memory) {
	if m == nil || !m.Reserved() {
		return
	}
	ent := m.ent
	m.Expire()
	n.pool.Free(m)
	if ent.Peer < 0 {
		return
	}
	n.linkCount[ent.Peer]--
	peer := n.table[ent.Peer]
	n.notify(EvLinkExpired, ent.Peer, ent.Expire)
	peer.MemoExpire(peer.pool.Memory(ent.Memo))
}

// ExpireSweep expires every memory whose link TTL has run out.
func (n *Node) ExpireSweep(now int) {
	for _, m := range n.pool.Memories() {
		if m.Entangled() && m.ent.Expire <= now {
			n.MemoExpire(m)
		}
	}
}

//----------------------------------------------------------------------
// Link generation
//----------------------------------------------------------------------

// CreateLink attempts entanglement generation with another node. For a
// partner h hops away the success probability is genProb^h *
// swapProb^(h-1); a failed draw, a full local pool or a full remote
// pool all leave the network unchanged.
func (n *Node) CreateLink(now int, other *Node) bool {
	if other == nil || other.label == n.label {
		return false
	}
	h := n.topo.Distance(n.label, other.label)
	if h < 1 {
		return false
	}
	prob := math.Pow(n.genProb, float64(h)) * math.Pow(n.swapProb, float64(h-1))
	if n.rng.Float64() > prob {
		return false
	}
	local := n.pool.Reserve()
	if local == nil {
		return false
	}
	remote := other.pool.Reserve()
	if remote == nil {
		n.pool.Free(local)
		return false
	}
	local.Entangle(remote, now)
	n.linkCount[other.label]++
	other.linkCount[n.label]++
	n.notify(EvLinkCreated, other.label, now)
	return true
}

// CreateLinkWithPriority attempts on-demand generation for the active
// request: a full pool evicts a uniformly random reserved memory
// (cascading) on either side, and the success probability collapses to
// a single genProb draw regardless of distance.
func (n *Node) CreateLinkWithPriority(now int, other *Node) bool {
	if other == nil || other.label == n.label {
		return false
	}
	if n.rng.Float64() > n.genProb {
		return false
	}
	local := n.pool.Reserve()
	if local == nil {
		n.evictRandom(now)
		local = n.pool.Reserve()
		if local == nil {
			return false
		}
	}
	remote := other.pool.Reserve()
	if remote == nil {
		other.evictRandom(now)
		remote = other.pool.Reserve()
		if remote == nil {
			n.pool.Free(local)
			return false
		}
	}
	local.Entangle(remote, now)
	n.linkCount[other.label]++
	other.linkCount[n.label]++
	n.notify(EvLinkCreated, other.label, now)
	return true
}

// evictRandom expires a uniformly random memory to make room for a
// priority generation.
func (n *Node) evictRandom(now int) {
	idx := n.rng.Intn(n.pool.Size())
	m := n.pool.Memory(idx)
	if m.Reserved() {
		n.notify(EvMemoryEvicted, m.ent.Peer, now)
		n.MemoExpire(m)
	}
}

// CreateRandomLink performs one step of continuous generation: the
// policy picks a partner, then ordinary generation runs against it.
func (n *Node) CreateRandomLink(now int) {
	partner := n.policy.Choose()
	if partner == NoPartner {
		return
	}
	n.CreateLink(now, n.table[partner])
}

//----------------------------------------------------------------------
// Swapping
//----------------------------------------------------------------------

// Swap performs entanglement swapping over two locally reserved
// memories entangled with distinct remote endpoints. On success the
// two remote memories become entangled with each other, keeping their
// originally written expire ticks; on failure all four involved
// memories are expired. Calling Swap on an unreserved or unentangled
// memory is a contract violation.
func (n *Node) Swap(left, right *Memory) bool {
	if left == nil || right == nil || !left.Reserved() || !right.Reserved() {
		panic(fmt.Sprintf("node %d: swap on unreserved memory", n.label))
	}
	if !left.Entangled() || !right.Entangled() {
		panic(fmt.Sprintf("node %d: swap on unentangled memory", n.label))
	}
	nodeL := n.table[left.ent.Peer]
	memoL := nodeL.pool.Memory(left.ent.Memo)
	nodeR := n.table[right.ent.Peer]
	memoR := nodeR.pool.Memory(right.ent.Memo)

	if n.rng.Float64() < n.swapProb {
		// consume the two local links
		n.linkCount[nodeL.label]--
		nodeL.linkCount[n.label]--
		n.linkCount[nodeR.label]--
		nodeR.linkCount[n.label]--
		left.Expire()
		n.pool.Free(left)
		right.Expire()
		n.pool.Free(right)

		// rewire the remote endpoints; expire ticks stay as written
		// on entangle, so the earlier one bounds the joined link
		memoL.ent = Entanglement{Peer: nodeR.label, Memo: memoR.index, Expire: memoL.ent.Expire}
		memoR.ent = Entanglement{Peer: nodeL.label, Memo: memoL.index, Expire: memoR.ent.Expire}
		nodeL.linkCount[nodeR.label]++
		nodeR.linkCount[nodeL.label]++
		n.notify(EvSwapDone, nodeR.label, memoR.ent.Expire)
		return true
	}

	// unfavorable draw: all four memories expire (the remote calls
	// are no-ops once the cascades have run)
	n.MemoExpire(left)
	n.MemoExpire(right)
	nodeL.MemoExpire(memoL)
	nodeR.MemoExpire(memoR)
	n.notify(EvSwapFailed, nodeL.label, -1)
	return false
}

//----------------------------------------------------------------------
// Per-tick route behavior
//----------------------------------------------------------------------

// PushRoute records the path slices of a newly submitted request
// passing through this node.
func (n *Node) PushRoute(left, right []int) {
	n.leftToConnect = append(n.leftToConnect, left)
	n.rightToConnect = append(n.rightToConnect, right)
}

// PopRoute drops the bookkeeping of the completed request.
func (n *Node) PopRoute() {
	n.leftToConnect = n.leftToConnect[1:]
	n.rightToConnect = n.rightToConnect[1:]
}

// anyLinks returns true if any of the labels holds a live link with n.
func (n *Node) anyLinks(labels []int) bool {
	for _, v := range labels {
		if n.linkCount[v] > 0 {
			return true
		}
	}
	return false
}

// memoryWith returns a local memory entangled with the given node, or
// nil.
func (n *Node) memoryWith(label int) *Memory {
	for _, m := range n.pool.Memories() {
		if m.Entangled() && m.ent.Peer == label {
			return m
		}
	}
	return nil
}

// ServeRoute performs the on-route action for the head request: the
// origin and destination pull their side of the path up on demand,
// interior nodes either generate toward the empty side or swap the
// leftmost against the rightmost entangled path neighbor. Returned
// pairs are the on-demand generations attempted this tick.
func (n *Node) ServeRoute(now int) (ondemand []Pair) {
	left := n.leftToConnect[0]
	right := n.rightToConnect[0]
	directLeft, directRight := -1, -1
	if len(left) > 0 {
		directLeft = left[len(left)-1]
	}
	if len(right) > 0 {
		directRight = right[0]
	}

	switch {
	case directLeft < 0:
		// origin
		if !n.anyLinks(right) {
			n.CreateLinkWithPriority(now, n.table[directRight])
			ondemand = append(ondemand, Pair{n.label, directRight})
		}

	case directRight < 0:
		// destination
		if !n.anyLinks(left) {
			n.CreateLinkWithPriority(now, n.table[directLeft])
			ondemand = append(ondemand, Pair{directLeft, n.label})
		}

	default:
		// interior
		switch {
		case !n.anyLinks(left):
			n.CreateLinkWithPriority(now, n.table[directLeft])
			ondemand = append(ondemand, Pair{directLeft, n.label})

		case !n.anyLinks(right):
			n.CreateLinkWithPriority(now, n.table[directRight])
			ondemand = append(ondemand, Pair{n.label, directRight})

		default:
			// swap the leftmost against the rightmost entangled
			// path neighbor: telescoping toward one long-range link
			// instead of nibbling at the nearest hops
			leftmost := -1
			for _, v := range left {
				if n.linkCount[v] > 0 {
					leftmost = v
					break
				}
			}
			rightmost := -1
			for i := len(right) - 1; i >= 0; i-- {
				if n.linkCount[right[i]] > 0 {
					rightmost = right[i]
					break
				}
			}
			lm := n.memoryWith(leftmost)
			rm := n.memoryWith(rightmost)
			if lm != nil && rm != nil {
				n.Swap(lm, rm)
			}
		}
	}
	return
}

// String returns a human-readable representation of the node.
func (n *Node) String() string {
	return fmt.Sprintf("Node{%d: %d/%d memories}", n.label, n.pool.Size()-n.pool.NumFree(), n.pool.Size())
}
