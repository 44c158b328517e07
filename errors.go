/*
 * errors.go, part of buildh.
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

// ErrKind discriminates the failure modes of the reconstruction engine.
// There is no silent recovery for any of them: the computation is
// deterministic, so retrying without changed input reproduces the failure.
type ErrKind int

const (
	//NoKind is for errors that do not fit any specific failure mode.
	NoKind ErrKind = iota
	//GeometryDegenerate: zero-length or colinear helper vectors. Fatal for
	//the affected atom; garbage (NaN) coordinates are never emitted.
	GeometryDegenerate
	//MissingHelperAtom: a recipe references an atom name absent from the
	//residue. Indicates a recipe/topology mismatch.
	MissingHelperAtom
	//DomainError: an arccos argument fell outside [-1,1] beyond the
	//floating point correction threshold.
	DomainError
	//InvalidFrameRange: a begin/end selection outside the trajectory
	//bounds, or begin > end. Rejected before any processing starts.
	InvalidFrameRange
	//IncompleteRecipe: trajectory output was requested but the order
	//parameter definition table does not list every hydrogen of every
	//declared carbon.
	IncompleteRecipe
)

func (k ErrKind) String() string {
	switch k {
	case GeometryDegenerate:
		return "GeometryDegenerate"
	case MissingHelperAtom:
		return "MissingHelperAtom"
	case DomainError:
		return "DomainError"
	case InvalidFrameRange:
		return "InvalidFrameRange"
	case IncompleteRecipe:
		return "IncompleteRecipe"
	}
	return "Unspecified"
}

// CError is the concrete error type of the buildh package. It implements the
// Error interface of the library, plus a Kind method to recover the failure
// mode without string matching.
type CError struct {
	msg  string
	kind ErrKind
	deco []string
}

func (err CError) Error() string { return err.msg }

//Kind returns the failure mode of the error.
func (err CError) Kind() ErrKind { return err.kind }

//Decorate adds the dec string to the decoration slice of strings of the
//error and returns the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Kinder is satisfied by errors that carry an ErrKind.
type Kinder interface {
	Kind() ErrKind
}

// IsKind returns whether err carries the given failure mode.
func IsKind(err error, k ErrKind) bool {
	if err == nil {
		return false
	}
	ke, ok := err.(Kinder)
	return ok && ke.Kind() == k
}

//errDecorate asserts that err implements the buildh Error interface and
//decorates it with the caller's name before returning it.
//If used with any other error type it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

//lastFrameError signals the normal end of an in-memory trajectory. It
//implements LastFrameError.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "molecule" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}
