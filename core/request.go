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

import (
	"errors"
	"fmt"
)

// Errors for request routing
var (
	// ErrSameEndpoints indicates a request whose origin equals its
	// destination; such requests are rejected at submission.
	ErrSameEndpoints = errors.New("request: origin equals destination")

	// ErrNoRoute indicates disconnected endpoints.
	ErrNoRoute = errors.New("request: no route between endpoints")
)

// Request for end-to-end entanglement between two nodes. A request is
// alive from submission until the simulator records its completion.
type Request struct {
	SubmitTick  int   // tick the request enters the network
	StartTick   int   // tick the simulator picks it up for service
	Origin      int   // label of the origin node
	Destination int   // label of the destination node
	Route       []int // chosen route, origin first
}

// NewRequest creates a request submitted at the given tick.
func NewRequest(submit, origin, destination int) *Request {
	return &Request{
		SubmitTick:  submit,
		StartTick:   submit,
		Origin:      origin,
		Destination: destination,
	}
}

// GetPath picks a route with a local-best-effort greedy walk. At each
// step the virtual neighbors (nodes the current hop already shares at
// least two links with) compete against the plain shortest-path next
// hop; a virtual hop is taken only if it lands strictly closer to the
// destination. Every step gets strictly closer, so the walk
// terminates.
func (r *Request) GetPath(topo *Topology, nodes NodeTable) ([]int, error) {
	if r.Origin == r.Destination {
		return nil, fmt.Errorf("%w: %d", ErrSameEndpoints, r.Origin)
	}
	if topo.Distance(r.Origin, r.Destination) < 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrNoRoute, r.Origin, r.Destination)
	}
	u := r.Origin
	path := []int{u}
	for u != r.Destination {
		next := topo.NextHop(u, r.Destination)
		best := next
		bestDist := topo.Distance(next, r.Destination)
		for v := 0; v < topo.Size(); v++ {
			if v == u || nodes[u].LinkCount(v) < 2 {
				continue
			}
			if d := topo.Distance(v, r.Destination); d >= 0 && d < bestDist {
				best, bestDist = v, d
			}
		}
		u = best
		path = append(path, u)
	}
	return path, nil
}

// String returns a human-readable representation of the request.
func (r *Request) String() string {
	return fmt.Sprintf("Request{%d->%d @%d}", r.Origin, r.Destination, r.SubmitTick)
}
