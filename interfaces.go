/*
 * interfaces.go, part of buildh.
 *
 * Copyright 2019 The buildh developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package buildh

import v3 "github.com/pierrepo/buildh/v3"

// Traj is an interface for any trajectory object, including a Molecule.
// Frames are read strictly in sequence; processing one frame fully before
// advancing is the only backpressure mechanism.
type Traj interface {

	//Is the trajectory ready to be read?
	Readable() bool

	//reads the next frame into output, or discards it if output is nil.
	//It can also fill the (optional) box with the box vectors, if present
	//in the frame.
	Next(output *v3.Matrix, box ...[]float64) error

	//Returns the number of atoms per frame
	Len() int
}

// TimedTraj is a Traj that also knows the physical time (in ps) covered by
// its frames. It is what the frame-range selection needs in order to fail
// fast on out-of-bounds requests.
type TimedTraj interface {
	Traj

	//TimeSpan returns the time of the first frame, the time of the last
	//frame and the time step between frames, all in ps.
	TimeSpan() (first, last, dt float64)
}

// Atomer is the basic interface for a topology.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the Topology. Should panic if
	//out of range.
	Atom(i int) *Atom

	Len() int
}

// TrajW is the interface for trajectory writers.
type TrajW interface {
	//WNext writes the given coordinates as the next frame of the
	//trajectory.
	WNext(towrite *v3.Matrix) error
}

// FrameComputer is one execution strategy of the reconstruction driver: it
// rebuilds the hydrogens of one frame and accumulates the order parameters.
// The two implementations (materializing and statistics-only) share the
// placement rules and must produce bit-identical order parameter values.
type FrameComputer interface {
	ComputeFrame(coords *v3.Matrix) error
}

//Errors

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows adding and retrieving info from the
// error, without changing its type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Decorate adds information when the error is passed up. Each call also returns the current decoration slice. If passed an empty string, it just returns the current value.
}

// TrajError is the interface for errors in trajectories.
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError has a useless function to distinguish the harmless errors
// (i.e. last frame) so they can be filtered in a typeswitch that looks for
// this interface.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other TrajError's
}
