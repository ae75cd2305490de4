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
	"os"
	"sort"

	"qnetsim/core"
)

// TrialResult holds the metric series of one trial.
type TrialResult struct {
	Latencies  []int         // per request: complete tick - submit tick
	ServeTimes []int         // per request: complete tick - start tick
	Congestion []int         // per tick: queue length
	Completed  []int         // per request: completion tick
	Available  [][]core.Pair // per request: links available at submission
	Ondemand   [][]core.Pair // per request: links generated on demand
}

// Output is the cross-trial aggregate written to data_<policy>.json.
type Output struct {
	Latencies           [][]int       `json:"latencies"`
	ServiceTimes        [][]int       `json:"service_times"`
	AverageLatencies    []float64     `json:"average_latencies"`
	AverageServiceTimes []float64     `json:"average_service_times"`
	AvailablePatterns   [][]core.Pair `json:"accumulated_available_patterns"`
	OndemandPatterns    [][]core.Pair `json:"accumulated_ondemand_patterns"`
}

// Aggregate combines the trials: averages are taken per request index
// over the shortest trial, usage patterns are concatenated per request
// index across trials.
func Aggregate(trials []*TrialResult) *Output {
	out := &Output{
		Latencies:    make([][]int, len(trials)),
		ServiceTimes: make([][]int, len(trials)),
	}
	num := -1
	for i, tr := range trials {
		out.Latencies[i] = append([]int{}, tr.Latencies...)
		out.ServiceTimes[i] = append([]int{}, tr.ServeTimes...)
		n := len(tr.Latencies)
		if len(tr.ServeTimes) < n {
			n = len(tr.ServeTimes)
		}
		if num < 0 || n < num {
			num = n
		}
	}
	if num <= 0 {
		return out
	}
	out.AverageLatencies = make([]float64, num)
	out.AverageServiceTimes = make([]float64, num)
	for _, tr := range trials {
		for i := 0; i < num; i++ {
			out.AverageLatencies[i] += float64(tr.Latencies[i])
			out.AverageServiceTimes[i] += float64(tr.ServeTimes[i])
		}
	}
	for i := 0; i < num; i++ {
		out.AverageLatencies[i] /= float64(len(trials))
		out.AverageServiceTimes[i] /= float64(len(trials))
	}

	out.AvailablePatterns = make([][]core.Pair, num)
	out.OndemandPatterns = make([][]core.Pair, num)
	for i := 0; i < num; i++ {
		out.AvailablePatterns[i] = []core.Pair{}
		out.OndemandPatterns[i] = []core.Pair{}
		for _, tr := range trials {
			if i < len(tr.Available) {
				out.AvailablePatterns[i] = append(out.AvailablePatterns[i], tr.Available[i]...)
			}
			if i < len(tr.Ondemand) {
				out.OndemandPatterns[i] = append(out.OndemandPatterns[i], tr.Ondemand[i]...)
			}
		}
	}
	return out
}

// Write the aggregate to a JSON file.
func (o *Output) Write(fn string) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return os.WriteFile(fn, data, 0644)
}

// Mean of an integer series.
func Mean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

// Percentile of a per-request series across trials: the sorted values
// at one request index are taken at position pct/100·(n−1), rounded
// down. Returns 0 if no trial reaches the index.
func Percentile(trials [][]int, idx int, pct float64) float64 {
	var vals []int
	for _, tr := range trials {
		if idx < len(tr) {
			vals = append(vals, tr[idx])
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Ints(vals)
	pos := int(pct / 100 * float64(len(vals)-1))
	return float64(vals[pos])
}
