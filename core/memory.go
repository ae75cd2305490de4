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

import "fmt"

//----------------------------------------------------------------------
// Quantum memories: one reservable slot each, holding at most one half
// of a pairwise entanglement. The far half is referenced by node label
// and memory index and resolved through the node table; the table owns
// all memories outright.
//----------------------------------------------------------------------

// Entanglement records the far half of a pairwise link. Expire is the
// single source of truth for the link TTL.
type Entanglement struct {
	Peer   int // label of the peer node (-1 if not entangled)
	Memo   int // index of the peer memory in its pool
	Expire int // tick at which the entanglement decays
}

// Memory is a single reservable quantum memory slot.
type Memory struct {
	node     int // label of the owning node
	index    int // position in the owning pool
	lifetime int // entanglement storage time (ticks)
	reserved bool
	ent      Entanglement
}

// Index of the memory in its pool.
func (m *Memory) Index() int {
	return m.index
}

// Reserved returns true if the memory is reserved by its owner.
func (m *Memory) Reserved() bool {
	return m.reserved
}

// Entangled returns true if the memory holds half of a link.
func (m *Memory) Entangled() bool {
	return m.ent.Peer >= 0
}

// Entanglement returns the current entanglement record.
func (m *Memory) Entanglement() Entanglement {
	return m.ent
}

// Entangle writes both endpoints' records in one logical step. The
// lifetimes of paired memories are equal by construction, so either
// endpoint may set both expire ticks.
func (m *Memory) Entangle(other *Memory, now int) {
	m.ent = Entanglement{Peer: other.node, Memo: other.index, Expire: now + m.lifetime}
	other.ent = Entanglement{Peer: m.node, Memo: m.index, Expire: now + other.lifetime}
}

// Expire clears this endpoint's record only. Cascading to the peer is
// the owning node's responsibility.
func (m *Memory) Expire() {
	m.ent = Entanglement{Peer: -1, Memo: -1}
}

// Reserve the memory. Doubling a reservation is a contract violation.
func (m *Memory) Reserve() {
	if m.reserved {
		panic(fmt.Sprintf("memory %d[%d]: already reserved", m.node, m.index))
	}
	m.reserved = true
}

// Free the memory. Freeing an unreserved memory is a contract violation.
func (m *Memory) Free() {
	if !m.reserved {
		panic(fmt.Sprintf("memory %d[%d]: not reserved", m.node, m.index))
	}
	m.reserved = false
}

// String returns a human-readable representation of the memory.
func (m *Memory) String() string {
	if !m.Entangled() {
		return fmt.Sprintf("Memory{%d[%d]}", m.node, m.index)
	}
	return fmt.Sprintf("Memory{%d[%d]~%d[%d]@%d}",
		m.node, m.index, m.ent.Peer, m.ent.Memo, m.ent.Expire)
}

//----------------------------------------------------------------------
// MemoryPool
//----------------------------------------------------------------------

// MemoryPool holds the fixed memory array of one node with a cursor on
// the lowest-index free slot.
type MemoryPool struct {
	memories  []*Memory
	nextAvail int
}

// NewMemoryPool creates a pool of 'size' memories for a node.
func NewMemoryPool(node, size, lifetime int) *MemoryPool {
	p := &MemoryPool{
		memories: make([]*Memory, size),
	}
	for i := range p.memories {
		p.memories[i] = &Memory{
			node:     node,
			index:    i,
			lifetime: lifetime,
			ent:      Entanglement{Peer: -1, Memo: -1},
		}
	}
	return p
}

// Size returns the number of memories in the pool.
func (p *MemoryPool) Size() int {
	return len(p.memories)
}

// Memory returns the memory at the given index.
func (p *MemoryPool) Memory(idx int) *Memory {
	return p.memories[idx]
}

// Memories returns the ordered memory array.
func (p *MemoryPool) Memories() []*Memory {
	return p.memories
}

// NumFree returns the number of unreserved memories.
func (p *MemoryPool) NumFree() (n int) {
	for _, m := range p.memories {
		if !m.reserved {
			n++
		}
	}
	return
}

// Reserve returns the lowest-index free memory (marked reserved) and
// advances the cursor to the next free slot. Returns nil when full.
func (p *MemoryPool) Reserve() *Memory {
	if p.nextAvail >= len(p.memories) {
		return nil
	}
	m := p.memories[p.nextAvail]
	m.Reserve()
	p.nextAvail++
	for p.nextAvail < len(p.memories) && p.memories[p.nextAvail].reserved {
		p.nextAvail++
	}
	return m
}

// Free clears the reservation and keeps the lowest-free-index invariant.
func (p *MemoryPool) Free(m *Memory) {
	m.Free()
	if m.index < p.nextAvail {
		p.nextAvail = m.index
	}
}
