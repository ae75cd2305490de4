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
	"github.com/bfix/gospel/logger"

	"qnetsim/core"
)

//----------------------------------------------------------------------
// Simulator: single-threaded integer-tick loop serving a request
// stack over the node network. Within a tick the phases (expiration
// sweep, submission, per-node actions, completion check, bookkeeping)
// run to completion in node-array order, so trials are reproducible
// from the seeds alone.
//----------------------------------------------------------------------

// Simulator is the per-trial test controller.
type Simulator struct {
	topo    *core.Topology
	nodes   core.NodeTable
	stack   []*core.Request // pending submissions, sorted by submit tick
	endTick int

	// serving state
	queue   []*core.Request // submitted, not yet completed (FIFO)
	current *core.Request   // head of the queue, or nil
	route   []int           // route of the current request

	// metric buffers
	latencies  []int
	serveTimes []int
	congestion []int
	completed  []int
	available  [][]core.Pair
	ondemand   [][]core.Pair
	availBuf   []core.Pair
	demandBuf  []core.Pair

	// Listener for simulation events
	cb core.Listener
}

// NewSimulator creates a simulator for one trial.
func NewSimulator(topo *core.Topology, nodes core.NodeTable, stack []*core.Request, endTick int, cb core.Listener) *Simulator {
	return &Simulator{
		topo:    topo,
		nodes:   nodes,
		stack:   stack,
		endTick: endTick,
		cb:      cb,
	}
}

// Run the trial and collect its results.
func (s *Simulator) Run() *TrialResult {
	for t := 0; t < s.endTick; t++ {
		// check if memories expired
		for _, node := range s.nodes {
			node.ExpireSweep(t)
		}

		// submit the requests that arrive this tick
		for len(s.stack) > 0 && s.stack[0].SubmitTick == t {
			req := s.stack[0]
			s.stack = s.stack[1:]
			s.submit(req, t)
		}

		// per-node actions: route nodes serve the current request,
		// all others run continuous generation
		for _, node := range s.nodes {
			if s.onRoute(node.Label()) {
				s.demandBuf = append(s.demandBuf, node.ServeRoute(t)...)
			} else {
				node.CreateRandomLink(t)
			}
		}

		// check if the desired end-to-end entanglement exists
		s.checkComplete(t)

		// queue-length congestion
		s.congestion = append(s.congestion, len(s.queue))

		// nothing left to submit or serve
		if len(s.stack) == 0 && len(s.queue) == 0 {
			break
		}
	}
	return &TrialResult{
		Latencies:  s.latencies,
		ServeTimes: s.serveTimes,
		Congestion: s.congestion,
		Completed:  s.completed,
		Available:  s.available,
		Ondemand:   s.ondemand,
	}
}

// onRoute returns true if the label sits on the current route.
func (s *Simulator) onRoute(label int) bool {
	if s.current == nil {
		return false
	}
	for _, v := range s.route {
		if v == label {
			return true
		}
	}
	return false
}

// submit a request: pick its route, queue it, push the path slices
// onto the route nodes and adaptively update their generation
// policies.
func (s *Simulator) submit(req *core.Request, now int) {
	route, err := req.GetPath(s.topo, s.nodes)
	if err != nil {
		logger.Printf(logger.WARN, "[sim] t=%d: dropping %s: %s", now, req, err.Error())
		if s.cb != nil {
			s.cb(&core.Event{Type: core.EvRequestDropped, Node: req.Origin, Ref: req.Destination, Tick: now})
		}
		return
	}
	req.Route = route
	s.queue = append(s.queue, req)
	if s.current == nil {
		s.current = req
		s.route = route
		req.StartTick = now
	}

	for i, label := range route {
		node := s.nodes[label]
		left := append([]int(nil), route[:i]...)
		right := append([]int(nil), route[i+1:]...)
		node.PushRoute(left, right)

		// links available on route nodes when the request arrives;
		// peers behind this node in the route are skipped so a route
		// link is only counted once
		avail := node.AvailableLinks()
		for _, other := range avail {
			prior := false
			for _, v := range left {
				if v == other {
					prior = true
					break
				}
			}
			if prior {
				continue
			}
			for k := 0; k < node.LinkCount(other); k++ {
				s.availBuf = append(s.availBuf, core.Pair{U: label, V: other})
			}
		}

		// the links this request will use at this node
		var used []int
		if i > 0 {
			used = append(used, route[i-1])
		}
		if i < len(route)-1 {
			used = append(used, route[i+1])
		}
		node.Policy().Update(avail, used)
	}

	// freeze the availability pattern of this request
	s.available = append(s.available, s.availBuf)
	s.availBuf = nil
}

// checkComplete scans the origin for a memory entangled with the
// destination and finalizes the current request if one exists.
func (s *Simulator) checkComplete(now int) {
	if s.current == nil {
		return
	}
	origin := s.nodes[s.route[0]]
	destination := s.route[len(s.route)-1]
	for _, m := range origin.Pool().Memories() {
		if !m.Entangled() || m.Entanglement().Peer != destination {
			continue
		}
		s.latencies = append(s.latencies, now-s.current.SubmitTick)
		s.serveTimes = append(s.serveTimes, now-s.current.StartTick)
		s.completed = append(s.completed, now)
		s.ondemand = append(s.ondemand, s.demandBuf)
		s.demandBuf = nil

		// drop the route bookkeeping and consume the link
		for _, label := range s.route {
			s.nodes[label].PopRoute()
		}
		origin.MemoExpire(m)
		if s.cb != nil {
			s.cb(&core.Event{Type: core.EvRequestServed, Node: s.current.Origin, Ref: destination, Tick: now})
		}

		s.queue = s.queue[1:]
		if len(s.queue) > 0 {
			s.current = s.queue[0]
			s.current.StartTick = now + 1
			s.route = s.current.Route
		} else {
			s.current = nil
			s.route = nil
		}
		break
	}
}
