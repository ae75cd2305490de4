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

package sim

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenTrafficMatrix(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	mtx := GenTrafficMatrix(5, rng)
	require.Len(t, mtx, 5)
	for i, row := range mtx {
		require.Len(t, row, 5)
		for j, v := range row {
			if i == j {
				require.Zero(t, v)
			} else {
				require.GreaterOrEqual(t, v, 0.)
				require.Less(t, v, 1.)
			}
		}
	}
}

func TestGenPairQueue(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	mtx := GenTrafficMatrix(6, rng)
	pairs := GenPairQueue(mtx, 6, 50, rand.New(rand.NewSource(1)), rand.New(rand.NewSource(2)))

	require.Len(t, pairs, 50)
	for _, p := range pairs {
		// a zero threshold never passes the acceptance judge
		require.NotEqual(t, p.U, p.V)
	}
}

func TestRequestSchedule(t *testing.T) {
	times := GenRequestTimes(200, 4, 100)
	require.Equal(t, []int{200, 300, 400, 500}, times)

	stack := BuildRequestStack(times, GenPairQueue(
		GenTrafficMatrix(4, rand.New(rand.NewSource(3))), 4, 4,
		rand.New(rand.NewSource(4)), rand.New(rand.NewSource(5))))
	require.Len(t, stack, 4)
	for i, req := range stack {
		require.Equal(t, times[i], req.SubmitTick)
		require.Equal(t, req.SubmitTick, req.StartTick)
	}
}

func TestTrafficMatrixRoundtrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "traffic_matrix.json")
	mtx := GenTrafficMatrix(4, rand.New(rand.NewSource(6)))
	require.NoError(t, SaveTrafficMatrix(fn, mtx))

	loaded, err := LoadTrafficMatrix(fn, 4)
	require.NoError(t, err)
	require.Equal(t, mtx, loaded)

	_, err = LoadTrafficMatrix(fn, 5)
	require.Error(t, err)
}
