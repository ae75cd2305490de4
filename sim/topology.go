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
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"qnetsim/core"
)

// NetworkDef is the JSON schema of a topology file.
type NetworkDef struct {
	Array     [][]int `json:"array"`
	MemoSizes []int   `json:"memo_sizes,omitempty"`
}

// LoadNetwork reads a topology file and returns the topology plus the
// per-node memory sizes (filled with the default where absent).
func LoadNetwork(fn string, defaultMemo int) (*core.Topology, []int, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, nil, fmt.Errorf("network: %w", err)
	}
	var def NetworkDef
	if err = json.Unmarshal(data, &def); err != nil {
		return nil, nil, fmt.Errorf("network: %w", err)
	}
	topo, err := core.NewTopology(def.Array)
	if err != nil {
		return nil, nil, err
	}
	memoSizes := def.MemoSizes
	if len(memoSizes) == 0 {
		memoSizes = make([]int, topo.Size())
		for i := range memoSizes {
			memoSizes[i] = defaultMemo
		}
	}
	if len(memoSizes) != topo.Size() {
		return nil, nil, fmt.Errorf("network: %d memo sizes for %d nodes",
			len(memoSizes), topo.Size())
	}
	return topo, memoSizes, nil
}

// SaveNetwork writes a generated topology for reuse.
func SaveNetwork(fn string, adj [][]int, memoSizes []int) error {
	data, err := json.Marshal(&NetworkDef{Array: adj, MemoSizes: memoSizes})
	if err != nil {
		return err
	}
	return os.WriteFile(fn, data, 0644)
}

// GenNetwork generates an adjacency matrix of the given type: a ring,
// or an AS-style graph grown by preferential attachment (every new
// node attaches to up to two distinct targets picked proportionally to
// their current degree, yielding the hub-heavy profile of Internet AS
// graphs).
func GenNetwork(size int, kind string, rng *rand.Rand) ([][]int, error) {
	adj := make([][]int, size)
	for i := range adj {
		adj[i] = make([]int, size)
	}
	switch kind {
	case NetRing:
		for i := 0; i < size; i++ {
			j := (i + 1) % size
			adj[i][j] = 1
			adj[j][i] = 1
		}

	case NetAS:
		degree := make([]int, size)
		total := 0
		link := func(u, v int) {
			adj[u][v] = 1
			adj[v][u] = 1
			degree[u]++
			degree[v]++
			total += 2
		}
		link(0, 1)
		for i := 2; i < size; i++ {
			m := 2
			if i < m {
				m = i
			}
			for k := 0; k < m; k++ {
				// degree-proportional target, resampled on repeats
				for {
					t := 0
					r := rng.Intn(total)
					for acc := degree[0]; acc <= r; acc += degree[t] {
						t++
					}
					if t != i && adj[i][t] == 0 {
						link(i, t)
						break
					}
				}
			}
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrBadNetType, kind)
	}
	return adj, nil
}
