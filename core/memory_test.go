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

// checkPoolInvariant verifies the lowest-free-index property.
func checkPoolInvariant(t *testing.T, p *MemoryPool) {
	t.Helper()
	for i := 0; i < p.nextAvail; i++ {
		require.True(t, p.memories[i].reserved, "slot %d below cursor not reserved", i)
	}
	if p.nextAvail < len(p.memories) {
		require.False(t, p.memories[p.nextAvail].reserved, "cursor slot reserved")
	}
}

func TestPoolReserveOrder(t *testing.T) {
	p := NewMemoryPool(0, 3, 100)

	m0 := p.Reserve()
	require.NotNil(t, m0)
	require.Equal(t, 0, m0.Index())
	checkPoolInvariant(t, p)

	m1 := p.Reserve()
	require.Equal(t, 1, m1.Index())
	checkPoolInvariant(t, p)

	// freeing a lower slot moves the cursor down
	p.Free(m0)
	checkPoolInvariant(t, p)
	require.Equal(t, 0, p.Reserve().Index())

	// fill up and overflow
	require.Equal(t, 2, p.Reserve().Index())
	require.Nil(t, p.Reserve())
	checkPoolInvariant(t, p)
}

func TestPoolReserveFreeRoundtrip(t *testing.T) {
	p := NewMemoryPool(0, 4, 100)
	p.Reserve()
	p.Reserve()
	cursor := p.nextAvail

	m := p.Reserve()
	p.Free(m)
	require.Equal(t, cursor, p.nextAvail)
	checkPoolInvariant(t, p)
	require.Equal(t, 2, p.NumFree())
}

func TestMemoryContract(t *testing.T) {
	p := NewMemoryPool(0, 1, 100)
	m := p.Reserve()
	require.Panics(t, func() { m.Reserve() })
	p.Free(m)
	require.Panics(t, func() { m.Free() })
}

func TestEntanglePairing(t *testing.T) {
	p0 := NewMemoryPool(0, 1, 100)
	p1 := NewMemoryPool(1, 1, 100)
	a := p0.Reserve()
	b := p1.Reserve()
	a.Entangle(b, 42)

	require.True(t, a.Entangled())
	require.True(t, b.Entangled())
	ea := a.Entanglement()
	eb := b.Entanglement()
	require.Equal(t, 1, ea.Peer)
	require.Equal(t, 0, eb.Peer)
	require.Equal(t, a.Index(), eb.Memo)
	require.Equal(t, b.Index(), ea.Memo)
	require.Equal(t, 142, ea.Expire)
	require.Equal(t, ea.Expire, eb.Expire)

	// expiring one endpoint leaves the other record in place
	a.Expire()
	require.False(t, a.Entangled())
	require.True(t, b.Entangled())
}
