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

// TrafficDef is the JSON schema of a traffic matrix file.
type TrafficDef struct {
	Matrix [][]float64 `json:"matrix"`
}

// GenTrafficMatrix draws a random traffic matrix with zero diagonal.
// Entries act as acceptance thresholds for pair sampling.
func GenTrafficMatrix(size int, rng *rand.Rand) [][]float64 {
	mtx := make([][]float64, size)
	for i := range mtx {
		mtx[i] = make([]float64, size)
		for j := range mtx[i] {
			if i != j {
				mtx[i][j] = rng.Float64()
			}
		}
	}
	return mtx
}

// LoadTrafficMatrix reads and validates a traffic matrix file.
func LoadTrafficMatrix(fn string, size int) ([][]float64, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, fmt.Errorf("traffic: %w", err)
	}
	var def TrafficDef
	if err = json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("traffic: %w", err)
	}
	mtx := def.Matrix
	if len(mtx) != size {
		return nil, fmt.Errorf("traffic: matrix is %dx, want %d", len(mtx), size)
	}
	for i, row := range mtx {
		if len(row) != size {
			return nil, fmt.Errorf("traffic: row %d has %d entries, want %d", i, len(row), size)
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("traffic: negative entry [%d][%d]", i, j)
			}
			if i == j && v != 0 {
				return nil, fmt.Errorf("traffic: non-zero diagonal [%d][%d]", i, j)
			}
		}
	}
	return mtx, nil
}

// SaveTrafficMatrix writes a generated traffic matrix for reuse.
func SaveTrafficMatrix(fn string, mtx [][]float64) error {
	data, err := json.Marshal(&TrafficDef{Matrix: mtx})
	if err != nil {
		return err
	}
	return os.WriteFile(fn, data, 0644)
}

// GenPairQueue synthesizes origin/destination pairs by rejection
// sampling: a uniformly drawn matrix cell is accepted with the
// probability stored there. The matrix and judgement PRNGs are
// separate so either stream can be replayed on its own.
func GenPairQueue(mtx [][]float64, size, queueLen int, rngMtx, rngJudge *rand.Rand) []core.Pair {
	queue := make([]core.Pair, 0, queueLen)
	for len(queue) < queueLen {
		row := rngMtx.Intn(size)
		col := rngMtx.Intn(size)
		if rngJudge.Float64() < mtx[row][col] {
			queue = append(queue, core.Pair{U: row, V: col})
		}
	}
	return queue
}

// GenRequestTimes returns the submission schedule: constant-interval
// arrivals starting at the given tick.
func GenRequestTimes(start, count, interval int) []int {
	times := make([]int, count)
	for i := range times {
		times[i] = start + i*interval
	}
	return times
}

// BuildRequestStack zips the schedule and the pair queue into the
// request stack consumed by the simulator (sorted by submit tick by
// construction).
func BuildRequestStack(times []int, pairs []core.Pair) []*core.Request {
	stack := make([]*core.Request, len(times))
	for i, t := range times {
		stack[i] = core.NewRequest(t, pairs[i].U, pairs[i].V)
	}
	return stack
}
