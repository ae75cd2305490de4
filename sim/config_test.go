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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"qnetsim/core"
)

// validCfg returns a configuration that passes validation.
func validCfg() *Config {
	return &Config{
		Net: &NetCfg{
			Size:         8,
			Type:         NetRing,
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
			EndTick:    1000,
			NumTrials:  2,
			QueueLen:   10,
			QueueStart: 10,
			QueueInt:   10,
		},
		Render: &RenderCfg{Mode: "none"},
	}
}

func TestValidateDefaults(t *testing.T) {
	require.NoError(t, Cfg.Validate())
	require.NoError(t, validCfg().Validate())
}

func TestValidateRejects(t *testing.T) {
	c := validCfg()
	c.Net.Type = "mesh"
	require.ErrorIs(t, c.Validate(), ErrBadNetType)

	c = validCfg()
	c.Node.Policy = "greedy"
	require.ErrorIs(t, c.Validate(), core.ErrBadPolicy)

	c = validCfg()
	c.Node.GenProb = 1.5
	require.ErrorIs(t, c.Validate(), ErrBadProb)

	c = validCfg()
	c.Node.SwapProb = -0.1
	require.ErrorIs(t, c.Validate(), ErrBadProb)

	c = validCfg()
	c.Node.AdaptParam = 1
	require.ErrorIs(t, c.Validate(), ErrBadAdapt)

	c = validCfg()
	c.Sim.QueueLen = 0
	require.ErrorIs(t, c.Validate(), ErrBadQueue)

	c = validCfg()
	c.Sim.FixedPair = []int{3, 3}
	require.ErrorIs(t, c.Validate(), ErrBadQueue)

	c = validCfg()
	c.Sim.FixedPair = []int{0, 9}
	require.ErrorIs(t, c.Validate(), ErrBadQueue)
}

func TestReadConfig(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"network": {"size": 10, "type": "ring"},
		"node": {"genProb": 0.5, "policy": "uniform"},
		"simulation": {"endTick": 500, "numTrials": 3, "queueLen": 5, "queueStart": 1, "queueInt": 7}
	}`
	require.NoError(t, os.WriteFile(fn, []byte(data), 0644))

	// keep the global configuration intact for other tests
	saved := *Cfg
	savedNet, savedNode, savedSim := *Cfg.Net, *Cfg.Node, *Cfg.Sim
	defer func() {
		*Cfg = saved
		*Cfg.Net, *Cfg.Node, *Cfg.Sim = savedNet, savedNode, savedSim
	}()

	require.NoError(t, ReadConfig(fn))
	require.Equal(t, 10, Cfg.Net.Size)
	require.Equal(t, NetRing, Cfg.Net.Type)
	require.Equal(t, 0.5, Cfg.Node.GenProb)
	require.Equal(t, core.PolicyUniform, Cfg.Node.Policy)
	require.Equal(t, 500, Cfg.Sim.EndTick)
	require.NoError(t, Cfg.Validate())
}
