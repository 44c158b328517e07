/*
 * atoms.go, part of buildh.
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

import (
	"fmt"

	v3 "github.com/pierrepo/buildh/v3"
)

/**Note: Some functions here panic instead of returning errors. This is
 * because they are "fundamental" functions: if something goes wrong there,
 * the program is way-most likely wrong and should crash. The panics are
 * related to out-of-bounds access or nil objects**/

//Atom contains the per-atom information that is not expected to change along
//a trajectory. The coordinates are kept separately, in a v3.Matrix.
type Atom struct {
	Name    string
	ID      int //1-based serial number
	MolName string
	MolID   int
	Chain   string
	Symbol  string
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	Newat := new(Atom)
	*Newat = *A
	return Newat
}

/*****Topology type***/

//Topology contains the information about a united-atom system which is not
//expected to change in time (i.e. everything except for coordinates).
type Topology struct {
	Atoms []*Atom
}

//NewTopology makes a topology from the given atoms. It returns an error if
//the slice is nil.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, CError{"Supplied a nil atom slice", NoKind, []string{"NewTopology"}}
	}
	top := new(Topology)
	top.Atoms = ats
	return top, nil
}

//Atom returns the Atom corresponding to the index i of the Atom slice in the
//Topology. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//CopyAtoms returns a copy of the topology.
func (T *Topology) CopyAtoms() *Topology {
	Top := new(Topology)
	Top.Atoms = make([]*Atom, T.Len())
	for key, val := range T.Atoms {
		Top.Atoms[key] = val.Copy()
	}
	return Top
}

//AppendAtom appends an atom at the end of the topology.
func (T *Topology) AppendAtom(at *Atom) {
	T.Atoms = append(T.Atoms, at)
}

//ResetIDs sets the current order of atoms as their 1-based serial ID.
func (T *Topology) ResetIDs() {
	for key := range T.Atoms {
		T.Atoms[key].ID = key + 1
	}
}

/*****Residue type***/

//Residue is one instance (e.g. one lipid among many identical copies) of a
//residue type in the system. It remembers where its atoms live in the global
//topology, so their positions can be addressed by atom name on any frame.
//The mapping is built once and is stable across frames.
type Residue struct {
	Name    string
	ID      int
	indices []int
	byName  map[string]int
}

//Len returns the number of atoms in the residue.
func (R *Residue) Len() int {
	return len(R.indices)
}

//First returns the global index of the first atom of the residue.
func (R *Residue) First() int {
	return R.indices[0]
}

//Index returns the global index of the named atom, and whether the residue
//contains an atom with that name at all.
func (R *Residue) Index(atname string) (int, bool) {
	i, ok := R.byName[atname]
	return i, ok
}

//Indices returns the global indices of the atoms of the residue, in
//topology order.
func (R *Residue) Indices() []int {
	return R.indices
}

//Residues returns the residue instances with the given residue name, in
//topology order. Atoms belong to the same instance when they are consecutive
//in the topology and share MolID and Chain.
func (T *Topology) Residues(molname string) []*Residue {
	var ret []*Residue
	var cur *Residue
	for i, at := range T.Atoms {
		if at.MolName != molname {
			cur = nil
			continue
		}
		if cur == nil || at.MolID != cur.ID {
			cur = &Residue{Name: at.MolName, ID: at.MolID, byName: make(map[string]int)}
			ret = append(ret, cur)
		}
		cur.indices = append(cur.indices, i)
		cur.byName[at.Name] = i
	}
	return ret
}

/**Type Molecule**/

//Molecule contains all the info for a system in many states: a topology plus
//one coordinate set per frame, and the physical times covered by the frames.
//It implements the Traj and TimedTraj interfaces, so an in-memory molecule
//can be processed exactly like a trajectory read from a file.
type Molecule struct {
	*Topology
	Coords  []*v3.Matrix
	t0      float64
	dt      float64
	current int
}

//NewMolecule makes a molecule from a topology, a set of coordinate frames, a
//time for the first frame and a time step, all times in ps. It checks that
//every frame has one coordinate per atom.
func NewMolecule(top *Topology, coords []*v3.Matrix, t0, dt float64) (*Molecule, error) {
	if top == nil {
		return nil, CError{"Supplied a nil Topology", NoKind, []string{"NewMolecule"}}
	}
	if len(coords) == 0 {
		return nil, CError{"Supplied an empty Coords slice", NoKind, []string{"NewMolecule"}}
	}
	for i, v := range coords {
		if v.NVecs() != top.Len() {
			return nil, CError{fmt.Sprintf("Inconsistent coordinates/atoms in frame %d: Atoms %d, coords: %d", i, top.Len(), v.NVecs()), NoKind, []string{"NewMolecule"}}
		}
	}
	mol := new(Molecule)
	mol.Topology = top
	mol.Coords = coords
	mol.t0 = t0
	mol.dt = dt
	return mol, nil
}

//Coord returns the coordinate matrix of the given frame. Panics if the frame
//is out of range.
func (M *Molecule) Coord(frame int) *v3.Matrix {
	if frame >= len(M.Coords) {
		panic(fmt.Sprintf("Frame requested (%d) out of range", frame))
	}
	return M.Coords[frame]
}

//LenFrames returns the number of frames in the molecule.
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

//InitRead rewinds the molecule so it can be read again as a trajectory.
func (M *Molecule) InitRead() {
	M.current = 0
}

/******************************************
//The following implement the Traj interface
**********************************************/

//Readable returns true if the molecule has frames left to be read.
func (M *Molecule) Readable() bool {
	return M != nil && M.Coords != nil && M.current < len(M.Coords)
}

//Next copies the next frame into c, or discards it if c is nil. When the
//trajectory is over it returns a LastFrameError, which is not an actual
//error but the normal termination signal.
func (M *Molecule) Next(c *v3.Matrix, box ...[]float64) error {
	if M.current >= len(M.Coords) {
		return &lastFrameError{fileName: "", deco: []string{"Next"}}
	}
	if c != nil {
		c.Copy(M.Coords[M.current])
	}
	M.current++
	return nil
}

//TimeSpan returns the time of the first and last frames, and the time step,
//in ps. It implements the TimedTraj interface.
func (M *Molecule) TimeSpan() (first, last, dt float64) {
	return M.t0, M.t0 + M.dt*float64(len(M.Coords)-1), M.dt
}

/**End Traj interface implementation***********/
