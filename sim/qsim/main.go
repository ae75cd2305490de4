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

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bfix/gospel/logger"

	"qnetsim/core"
	"qnetsim/sim"
)

func main() {
	logger.Println(logger.INFO, "Quantum network request-serving simulator")

	//------------------------------------------------------------------
	// parse arguments (explicit options win over the config file)
	var cfgFile string
	var verbose bool
	flag.StringVar(&cfgFile, "c", "", "JSON-encoded configuration file")
	flag.BoolVar(&verbose, "v", false, "log network events")
	flag.IntVar(&sim.Cfg.Net.Size, "net-size", sim.Cfg.Net.Size, "number of nodes")
	flag.StringVar(&sim.Cfg.Net.Type, "net-type", sim.Cfg.Net.Type, "network type (ring, as_net)")
	flag.StringVar(&sim.Cfg.Net.NetFile, "net", sim.Cfg.Net.NetFile, "topology JSON file (empty: generate)")
	flag.StringVar(&sim.Cfg.Net.TrafficFile, "traffic", sim.Cfg.Net.TrafficFile, "traffic matrix JSON file (empty: generate)")
	flag.IntVar(&sim.Cfg.Net.MemoSize, "memo-size", sim.Cfg.Net.MemoSize, "memories per node")
	flag.IntVar(&sim.Cfg.Net.MemoLifetime, "memo-lifetime", sim.Cfg.Net.MemoLifetime, "memory lifetime (ticks)")
	flag.Float64Var(&sim.Cfg.Node.GenProb, "gen-prob", sim.Cfg.Node.GenProb, "generation success probability")
	flag.Float64Var(&sim.Cfg.Node.SwapProb, "swap-prob", sim.Cfg.Node.SwapProb, "swapping success probability")
	flag.StringVar(&sim.Cfg.Node.Policy, "policy", sim.Cfg.Node.Policy, "generation policy (adaptive, uniform, exponential)")
	flag.Float64Var(&sim.Cfg.Node.AdaptParam, "adapt-param", sim.Cfg.Node.AdaptParam, "adaptation weight")
	flag.IntVar(&sim.Cfg.Sim.EndTick, "end-tick", sim.Cfg.Sim.EndTick, "tick bound per trial")
	flag.IntVar(&sim.Cfg.Sim.NumTrials, "num-trials", sim.Cfg.Sim.NumTrials, "number of trials")
	flag.IntVar(&sim.Cfg.Sim.QueueLen, "queue-len", sim.Cfg.Sim.QueueLen, "requests per trial")
	flag.IntVar(&sim.Cfg.Sim.QueueStart, "queue-start", sim.Cfg.Sim.QueueStart, "first submission tick")
	flag.IntVar(&sim.Cfg.Sim.QueueInt, "queue-int", sim.Cfg.Sim.QueueInt, "submission interval")
	flag.Int64Var(&sim.Cfg.Sim.Seed, "seed", sim.Cfg.Sim.Seed, "base RNG seed")
	flag.StringVar(&sim.Cfg.Render.Mode, "render", sim.Cfg.Render.Mode, "render mode (svg, none)")
	flag.StringVar(&sim.Cfg.Render.Prefix, "render-prefix", sim.Cfg.Render.Prefix, "prefix for rendered files")
	flag.Parse()

	// read configuration, then re-apply explicit options
	if len(cfgFile) > 0 {
		explicit := make(map[string]string)
		flag.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
		if err := sim.ReadConfig(cfgFile); err != nil {
			logger.Println(logger.ERROR, "config: "+err.Error())
			os.Exit(1)
		}
		for name, val := range explicit {
			_ = flag.Set(name, val)
		}
	}
	if err := sim.Cfg.Validate(); err != nil {
		logger.Println(logger.ERROR, err.Error())
		os.Exit(1)
	}
	core.SetConfiguration(&core.Config{
		MemoSize:     sim.Cfg.Net.MemoSize,
		MemoLifetime: sim.Cfg.Net.MemoLifetime,
		GenProb:      sim.Cfg.Node.GenProb,
		SwapProb:     sim.Cfg.Node.SwapProb,
		AdaptParam:   sim.Cfg.Node.AdaptParam,
	})

	//------------------------------------------------------------------
	// assemble topology and traffic
	// (separate PRNG streams for topology/traffic synthesis, pair
	// sampling and acceptance judging keep trials reproducible)
	seed := sim.Cfg.Sim.Seed
	genRng := rand.New(rand.NewSource(seed))
	pairRng := rand.New(rand.NewSource(seed + 1))
	judgeRng := rand.New(rand.NewSource(seed + 2))

	size := sim.Cfg.Net.Size
	var topo *core.Topology
	var memoSizes []int
	var err error
	if len(sim.Cfg.Net.NetFile) > 0 {
		if topo, memoSizes, err = sim.LoadNetwork(sim.Cfg.Net.NetFile, sim.Cfg.Net.MemoSize); err != nil {
			logger.Println(logger.ERROR, err.Error())
			os.Exit(1)
		}
		if topo.Size() != size {
			logger.Printf(logger.WARN, "network file has %d nodes, overriding net-size %d", topo.Size(), size)
			size = topo.Size()
		}
	} else {
		adj, err := sim.GenNetwork(size, sim.Cfg.Net.Type, genRng)
		if err != nil {
			logger.Println(logger.ERROR, err.Error())
			os.Exit(1)
		}
		if topo, err = core.NewTopology(adj); err != nil {
			logger.Println(logger.ERROR, err.Error())
			os.Exit(1)
		}
		memoSizes = make([]int, size)
		for i := range memoSizes {
			memoSizes[i] = sim.Cfg.Net.MemoSize
		}
		if err = sim.SaveNetwork("network.json", adj, memoSizes); err != nil {
			logger.Println(logger.WARN, "network.json: "+err.Error())
		} else {
			logger.Println(logger.INFO, "generated topology saved to network.json")
		}
	}

	var traffic [][]float64
	if len(sim.Cfg.Net.TrafficFile) > 0 {
		if traffic, err = sim.LoadTrafficMatrix(sim.Cfg.Net.TrafficFile, size); err != nil {
			logger.Println(logger.ERROR, err.Error())
			os.Exit(1)
		}
	} else {
		traffic = sim.GenTrafficMatrix(size, genRng)
	}

	// event listener (verbose mode only)
	var listener core.Listener
	if verbose {
		listener = func(ev *core.Event) {
			switch ev.Type {
			case core.EvSwapDone:
				logger.Printf(logger.DBG, "[%d] swap ok -> %d", ev.Node, ev.Ref)
			case core.EvSwapFailed:
				logger.Printf(logger.DBG, "[%d] swap failed (%d)", ev.Node, ev.Ref)
			case core.EvRequestServed:
				logger.Printf(logger.INFO, "request %d->%d served at t=%d", ev.Node, ev.Ref, ev.Tick)
			case core.EvRequestDropped:
				logger.Printf(logger.WARN, "request %d->%d dropped at t=%d", ev.Node, ev.Ref, ev.Tick)
			}
		}
	}

	//------------------------------------------------------------------
	// run trials
	logger.Printf(logger.INFO, "Running %d trials (%s policy, %d nodes, %s)...",
		sim.Cfg.Sim.NumTrials, sim.Cfg.Node.Policy, size, sim.Cfg.Net.Type)
	trials := make([]*sim.TrialResult, sim.Cfg.Sim.NumTrials)
	start := time.Now()
	for trial := range trials {
		// fresh nodes with per-trial seeds
		nodes := make(core.NodeTable, size)
		for i := range nodes {
			nodes[i] = core.NewNode(i, memoSizes[i], sim.Cfg.Net.MemoLifetime,
				sim.Cfg.Node.GenProb, sim.Cfg.Node.SwapProb, topo,
				seed+int64(size*trial+i))
		}
		for i, node := range nodes {
			policy, err := core.NewGenerationPolicy(sim.Cfg.Node.Policy, i, topo,
				sim.Cfg.Node.AdaptParam, node.Rng())
			if err != nil {
				logger.Println(logger.ERROR, err.Error())
				os.Exit(1)
			}
			node.Attach(nodes, policy, listener)
		}

		// request stack for this trial
		var pairs []core.Pair
		if fp := sim.Cfg.Sim.FixedPair; len(fp) == 2 {
			pairs = make([]core.Pair, sim.Cfg.Sim.QueueLen)
			for i := range pairs {
				pairs[i] = core.Pair{U: fp[0], V: fp[1]}
			}
		} else {
			pairs = sim.GenPairQueue(traffic, size, sim.Cfg.Sim.QueueLen, pairRng, judgeRng)
		}
		times := sim.GenRequestTimes(sim.Cfg.Sim.QueueStart, sim.Cfg.Sim.QueueLen, sim.Cfg.Sim.QueueInt)
		stack := sim.BuildRequestStack(times, pairs)

		// run the trial
		s := sim.NewSimulator(topo, nodes, stack, sim.Cfg.Sim.EndTick, listener)
		trials[trial] = s.Run()
		logger.Printf(logger.INFO, "Finished trial %d of %d: %d requests served, mean latency %.1f",
			trial+1, len(trials), len(trials[trial].Latencies), sim.Mean(trials[trial].Latencies))
	}
	elapsed := time.Since(start)
	logger.Printf(logger.INFO, "Total simulation time: %s (%s per trial)",
		elapsed, elapsed/time.Duration(len(trials)))

	//------------------------------------------------------------------
	// aggregate and save
	out := sim.Aggregate(trials)
	fn := fmt.Sprintf("data_%s.json", sim.Cfg.Node.Policy)
	if err := out.Write(fn); err != nil {
		logger.Println(logger.ERROR, fn+": "+err.Error())
		os.Exit(1)
	}
	logger.Printf(logger.INFO, "%d averaged requests written to %s", len(out.AverageLatencies), fn)

	//------------------------------------------------------------------
	// render
	if sim.Cfg.Render.Mode == "svg" {
		if err := render(topo, out); err != nil {
			logger.Println(logger.ERROR, "render: "+err.Error())
			os.Exit(1)
		}
	}
	logger.Println(logger.INFO, "Done.")
}

// render the topology, the usage patterns of the first/middle/last
// request and the latency/service-time curves as SVG files.
func render(topo *core.Topology, out *sim.Output) error {
	prefix := sim.Cfg.Render.Prefix
	canvas := func(name string) sim.Canvas {
		return sim.NewSVGCanvas(prefix+name, fieldSize, fieldSize, 5)
	}
	if err := sim.RenderTopology(canvas("topology.svg"), topo); err != nil {
		return err
	}
	num := len(out.AvailablePatterns)
	if num > 0 {
		picks := []struct {
			tag string
			idx int
		}{
			{"first", 0},
			{"mid", num / 2},
			{"last", num - 1},
		}
		for _, p := range picks {
			fn := fmt.Sprintf("available_%s.svg", p.tag)
			if err := sim.RenderUsage(canvas(fn), topo, out.AvailablePatterns[p.idx], sim.ClrGreen); err != nil {
				return err
			}
			fn = fmt.Sprintf("ondemand_%s.svg", p.tag)
			if err := sim.RenderUsage(canvas(fn), topo, out.OndemandPatterns[p.idx], sim.ClrRed); err != nil {
				return err
			}
		}
	}
	if len(out.AverageLatencies) > 0 {
		n := len(out.AverageLatencies)
		lo := make([]float64, n)
		hi := make([]float64, n)
		for i := 0; i < n; i++ {
			lo[i] = sim.Percentile(out.Latencies, i, 5)
			hi[i] = sim.Percentile(out.Latencies, i, 95)
		}
		if err := sim.RenderSeries(canvas("latencies.svg"),
			out.AverageLatencies, lo, hi, "average request latencies"); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			lo[i] = sim.Percentile(out.ServiceTimes, i, 5)
			hi[i] = sim.Percentile(out.ServiceTimes, i, 95)
		}
		if err := sim.RenderSeries(canvas("service_times.svg"),
			out.AverageServiceTimes, lo, hi, "average times to serve requests"); err != nil {
			return err
		}
	}
	return nil
}

// drawing extent shared with the sim renderers
const fieldSize = 100.
