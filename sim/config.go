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
	"errors"
	"fmt"
	"os"

	"qnetsim/core"
)

// Errors for configuration validation
var (
	// ErrBadNetType indicates an unknown network type.
	ErrBadNetType = errors.New("config: unknown network type")

	// ErrBadProb indicates a probability outside [0,1].
	ErrBadProb = errors.New("config: probability out of range")

	// ErrBadAdapt indicates an adaptation weight outside [0,1).
	ErrBadAdapt = errors.New("config: adaptation weight out of range")

	// ErrBadQueue indicates unusable run bounds (end tick, trial count)
	// or an unusable request arrival schedule.
	ErrBadQueue = errors.New("config: invalid request schedule")
)

// Network types
const (
	NetRing = "ring"
	NetAS   = "as_net"
)

// NetCfg holds configuration data for the network topology
type NetCfg struct {
	Size         int    `json:"size"`         // number of nodes
	Type         string `json:"type"`         // "ring" or "as_net"
	NetFile      string `json:"netFile"`      // topology JSON (empty: generate)
	TrafficFile  string `json:"trafficFile"`  // traffic matrix JSON (empty: generate)
	MemoSize     int    `json:"memoSize"`     // default memories per node
	MemoLifetime int    `json:"memoLifetime"` // entanglement lifetime (ticks)
}

// NodeCfg holds configuration data for simulated nodes
type NodeCfg struct {
	GenProb    float64 `json:"genProb"`    // entanglement generation success probability
	SwapProb   float64 `json:"swapProb"`   // entanglement swapping success probability
	Policy     string  `json:"policy"`     // "adaptive", "uniform" or "exponential"
	AdaptParam float64 `json:"adaptParam"` // adaptation weight (adaptive only)
}

// SimCfg holds configuration data for the simulation run
type SimCfg struct {
	EndTick    int   `json:"endTick"`    // tick bound per trial
	NumTrials  int   `json:"numTrials"`  // number of trials to average over
	QueueLen   int   `json:"queueLen"`   // number of requests per trial
	QueueStart int   `json:"queueStart"` // submit tick of the first request
	QueueInt   int   `json:"queueInt"`   // interval between submissions
	Seed       int64 `json:"seed"`       // base RNG seed
	FixedPair  []int `json:"fixedPair"`  // identical-request mode: [origin, destination]
}

// RenderCfg options
type RenderCfg struct {
	Mode   string `json:"mode"` // "svg" or "none"
	Prefix string `json:"prefix"`
}

// Config for simulation configuration data
type Config struct {
	Net    *NetCfg    `json:"network"`
	Node   *NodeCfg   `json:"node"`
	Sim    *SimCfg    `json:"simulation"`
	Render *RenderCfg `json:"render"`
}

// Cfg is the global configuration
var Cfg = &Config{
	Net: &NetCfg{
		Size:         8,
		Type:         NetAS,
		MemoSize:     5,
		MemoLifetime: 1000,
	},
	Node: &NodeCfg{
		GenProb:    0.01,
		SwapProb:   1,
		Policy:     core.PolicyAdaptive,
		AdaptParam: 0.05,
	},
	Sim: &SimCfg{
		EndTick:    40000,
		NumTrials:  10,
		QueueLen:   200,
		QueueStart: 200,
		QueueInt:   200,
		Seed:       0,
	},
	Render: &RenderCfg{
		Mode:   "none",
		Prefix: "",
	},
}

//----------------------------------------------------------------------

// ReadConfig to deserialize a configuration from a JSON file
func ReadConfig(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &Cfg)
}

// Validate the configuration; a run must fail before tick 0 on bad
// parameters.
func (c *Config) Validate() error {
	if c.Net.Size < 2 {
		return fmt.Errorf("config: network size %d too small", c.Net.Size)
	}
	if c.Net.Type != NetRing && c.Net.Type != NetAS {
		return fmt.Errorf("%w: %q", ErrBadNetType, c.Net.Type)
	}
	switch c.Node.Policy {
	case core.PolicyAdaptive, core.PolicyUniform, core.PolicyExponential:
	default:
		return fmt.Errorf("%w: %q", core.ErrBadPolicy, c.Node.Policy)
	}
	if c.Node.GenProb < 0 || c.Node.GenProb > 1 {
		return fmt.Errorf("%w: genProb %g", ErrBadProb, c.Node.GenProb)
	}
	if c.Node.SwapProb < 0 || c.Node.SwapProb > 1 {
		return fmt.Errorf("%w: swapProb %g", ErrBadProb, c.Node.SwapProb)
	}
	if c.Node.AdaptParam < 0 || c.Node.AdaptParam >= 1 {
		return fmt.Errorf("%w: adaptParam %g", ErrBadAdapt, c.Node.AdaptParam)
	}
	if c.Sim.EndTick < 1 || c.Sim.NumTrials < 1 {
		return fmt.Errorf("%w: endTick=%d numTrials=%d",
			ErrBadQueue, c.Sim.EndTick, c.Sim.NumTrials)
	}
	if c.Sim.QueueLen < 1 || c.Sim.QueueInt < 1 || c.Sim.QueueStart < 0 {
		return fmt.Errorf("%w: len=%d start=%d int=%d",
			ErrBadQueue, c.Sim.QueueLen, c.Sim.QueueStart, c.Sim.QueueInt)
	}
	if p := c.Sim.FixedPair; len(p) > 0 {
		if len(p) != 2 || p[0] == p[1] ||
			p[0] < 0 || p[0] >= c.Net.Size || p[1] < 0 || p[1] >= c.Net.Size {
			return fmt.Errorf("%w: fixed pair %v", ErrBadQueue, p)
		}
	}
	return nil
}
