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
	"fmt"
	"image/color"
	"math"

	"qnetsim/core"
)

// drawing field extent
const fieldSize = 100.

// nodePositions lays the nodes out on a circle.
func nodePositions(n int) []struct{ X, Y float64 } {
	pos := make([]struct{ X, Y float64 }, n)
	r := fieldSize * 0.4
	for i := range pos {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos[i].X = fieldSize/2 + r*math.Cos(a)
		pos[i].Y = fieldSize/2 + r*math.Sin(a)
	}
	return pos
}

// RenderTopology draws the network graph on a circular layout.
func RenderTopology(c Canvas, topo *core.Topology) error {
	c.Start()
	pos := nodePositions(topo.Size())
	for u := 0; u < topo.Size(); u++ {
		for _, v := range topo.Neighbors(u) {
			if v > u {
				c.Line(pos[u].X, pos[u].Y, pos[v].X, pos[v].Y, 0.15, ClrBlue)
			}
		}
	}
	drawNodes(c, pos)
	return c.End()
}

// RenderUsage draws one accumulated usage pattern: edge strength is
// the multiplicity of the pair in the pattern.
func RenderUsage(c Canvas, topo *core.Topology, pattern []core.Pair, clr *color.RGBA) error {
	c.Start()
	pos := nodePositions(topo.Size())

	// multiplicity per undirected pair
	count := make(map[core.Pair]int)
	max := 0
	for _, p := range pattern {
		if p.U > p.V {
			p.U, p.V = p.V, p.U
		}
		count[p]++
		if count[p] > max {
			max = count[p]
		}
	}
	// faint static edges below the heat-weighted ones
	for u := 0; u < topo.Size(); u++ {
		for _, v := range topo.Neighbors(u) {
			if v > u {
				c.Line(pos[u].X, pos[u].Y, pos[v].X, pos[v].Y, 0.05, ClrGray)
			}
		}
	}
	for p, n := range count {
		w := 0.6 * float64(n) / float64(max)
		c.Line(pos[p.U].X, pos[p.U].Y, pos[p.V].X, pos[p.V].Y, w, clr)
	}
	drawNodes(c, pos)
	return c.End()
}

// RenderSeries draws a per-request metric curve with its percentile
// band.
func RenderSeries(c Canvas, avg []float64, lo, hi []float64, title string) error {
	c.Start()
	n := len(avg)
	if n == 0 {
		return c.End()
	}
	top := 0.
	for i := range avg {
		if hi != nil && hi[i] > top {
			top = hi[i]
		}
		if avg[i] > top {
			top = avg[i]
		}
	}
	if top == 0 {
		top = 1
	}
	xs := func(i int) float64 {
		if n == 1 {
			return fieldSize / 2
		}
		return fieldSize * float64(i) / float64(n-1)
	}
	ys := func(v float64) float64 {
		return fieldSize * (1 - 0.9*v/top)
	}
	// axes
	c.Line(0, fieldSize, fieldSize, fieldSize, 0.1, ClrBlack)
	c.Line(0, 0, 0, fieldSize, 0.1, ClrBlack)
	c.Text(fieldSize/2, 3, 2, title)
	// percentile band
	if lo != nil && hi != nil {
		for i := 0; i < n; i++ {
			c.Line(xs(i), ys(lo[i]), xs(i), ys(hi[i]), 0.3, ClrGray)
		}
	}
	// curve
	for i := 1; i < n; i++ {
		c.Line(xs(i-1), ys(avg[i-1]), xs(i), ys(avg[i]), 0.2, ClrBlue)
	}
	return c.End()
}

func drawNodes(c Canvas, pos []struct{ X, Y float64 }) {
	for i, p := range pos {
		c.Circle(p.X, p.Y, 1.2, 0.1, ClrBlack, ClrWhite)
		c.Text(p.X, p.Y+0.6, 1.6, fmt.Sprintf("%d", i))
	}
}
