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

// Config for node-level hardware parameters
type Config struct {
	MemoSize     int     `json:"memoSize"`     // number of quantum memories per node
	MemoLifetime int     `json:"memoLifetime"` // entanglement lifetime (ticks)
	GenProb      float64 `json:"genProb"`      // success probability of entanglement generation
	SwapProb     float64 `json:"swapProb"`     // success probability of entanglement swapping
	AdaptParam   float64 `json:"adaptParam"`   // adaptation weight of the adaptive policy
}

// package-local configuration data (with default values)
var cfg = &Config{
	MemoSize:     5,
	MemoLifetime: 1000,
	GenProb:      0.01,
	SwapProb:     1,
	AdaptParam:   0.05,
}

// SetConfiguration before use
func SetConfiguration(c *Config) {
	if c.MemoSize > 0 {
		cfg.MemoSize = c.MemoSize
	}
	if c.MemoLifetime > 0 {
		cfg.MemoLifetime = c.MemoLifetime
	}
	if c.GenProb >= 0 && c.GenProb <= 1 {
		cfg.GenProb = c.GenProb
	}
	if c.SwapProb >= 0 && c.SwapProb <= 1 {
		cfg.SwapProb = c.SwapProb
	}
	if c.AdaptParam >= 0 && c.AdaptParam < 1 {
		cfg.AdaptParam = c.AdaptParam
	}
}
