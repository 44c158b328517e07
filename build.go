/*
 * build.go, part of buildh.
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
	"math"

	v3 "github.com/pierrepo/buildh/v3"
)

//CheckSlice converts a time window, in ps, into a frame index range for the
//given trajectory. begin and end may be negative, which selects the first
//and last frame respectively. The returned range is half-open: the first
//index is included, the second excluded. Out-of-bounds or inverted windows
//return an InvalidFrameRange error before any frame is read.
func CheckSlice(t TimedTraj, begin, end float64) (int, int, error) {
	first, last, dt := t.TimeSpan()
	if begin < 0 {
		begin = first
	}
	if end < 0 {
		end = last
	}
	if begin > end {
		return 0, 0, CError{fmt.Sprintf("Begin time (%g ps) after end time (%g ps)", begin, end), InvalidFrameRange, []string{"CheckSlice"}}
	}
	if begin < first || end > last {
		return 0, 0, CError{fmt.Sprintf("Window [%g, %g] ps outside the trajectory span [%g, %g] ps", begin, end, first, last), InvalidFrameRange, []string{"CheckSlice"}}
	}
	if dt <= 0 {
		//single-frame trajectory
		return 0, 1, nil
	}
	bi := int(math.Round((begin - first) / dt))
	ei := int(math.Round((end-first)/dt)) + 1
	return bi, ei, nil
}

//Run drives a FrameComputer over the frames [first, last) of a trajectory.
//A negative last means "until the trajectory ends". It returns the number
//of frames actually processed.
func Run(traj Traj, comp FrameComputer, first, last int) (int, error) {
	coords := v3.Zeros(traj.Len())
	framesprocessed := 0
reading:
	for i := 0; ; i++ {
		if last >= 0 && i >= last {
			break reading
		}
		var dest *v3.Matrix
		if i >= first {
			dest = coords
		}
		err := traj.Next(dest)
		switch err := err.(type) {
		case nil:
			if dest == nil {
				continue //skipped frame
			}
			if err2 := comp.ComputeFrame(coords); err2 != nil {
				return framesprocessed, errDecorate(err2, fmt.Sprintf("Run: frame %d", i))
			}
			framesprocessed++
		case LastFrameError:
			break reading
		case Error:
			return framesprocessed, errDecorate(err, "Run")
		default:
			return framesprocessed, CError{err.Error(), NoKind, []string{"Run"}}
		}
	}
	if framesprocessed == 0 {
		return 0, CError{"No frames processed: the selected window is past the end of the trajectory", InvalidFrameRange, []string{"Run"}}
	}
	return framesprocessed, nil
}

/****The construction plan, shared by both strategies****/

//bondSlot ties one requested bond to the hydrogen that satisfies it, by
//index in the construction order of its carbon.
type bondSlot struct {
	bond int
	slot int
}

//carbonPlan is the resolved reconstruction of one carbon of one residue:
//global indices of the carbon and its helpers, plus the requested bonds.
type carbonPlan struct {
	kind    Kind
	atom    int
	helpers []int
	slots   []bondSlot
}

//resPlan is the resolved reconstruction of one residue instance.
type resPlan struct {
	residue int //index into the Accumulator's residue axis
	carbons []carbonPlan
}

//resolveBonds maps every definition bond onto (carbon, hydrogen slot) pairs
//of the recipe. A bond naming a carbon the recipe does not rebuild, or a
//hydrogen its carbon does not produce, is a definition/recipe mismatch and
//is rejected.
func resolveBonds(recipe *Recipe, def *OPDef) (map[string][]bondSlot, error) {
	ret := make(map[string][]bondSlot)
	for i, b := range def.Bonds {
		if b.ResName != recipe.ResName {
			return nil, CError{fmt.Sprintf("Bond %s is for residue %s, recipe covers %s", b.Label, b.ResName, recipe.ResName), NoKind, []string{"resolveBonds"}}
		}
		rule, ok := recipe.Rule(b.Carbon)
		if !ok {
			return nil, CError{fmt.Sprintf("Bond %s names carbon %s, which the recipe does not rebuild", b.Label, b.Carbon), NoKind, []string{"resolveBonds"}}
		}
		slot := -1
		for j, h := range HydrogenNames(b.Carbon, rule.Kind) {
			if h == b.Hydrogen {
				slot = j
				break
			}
		}
		if slot < 0 {
			return nil, CError{fmt.Sprintf("Bond %s names hydrogen %s, which carbon %s (%s) does not produce", b.Label, b.Hydrogen, b.Carbon, rule.Kind), NoKind, []string{"resolveBonds"}}
		}
		ret[b.Carbon] = append(ret[b.Carbon], bondSlot{bond: i, slot: slot})
	}
	return ret, nil
}

//planResidue resolves the recipe against one residue instance, returning
//the global atom indices involved. A carbon or helper name absent from the
//residue is a recipe/topology mismatch.
func planResidue(recipe *Recipe, slots map[string][]bondSlot, res *Residue, resIdx int) (*resPlan, error) {
	ret := &resPlan{residue: resIdx}
	for _, cname := range recipe.Carbons() {
		rule, _ := recipe.Rule(cname)
		cp := carbonPlan{kind: rule.Kind, slots: slots[cname]}
		var ok bool
		cp.atom, ok = res.Index(cname)
		if !ok {
			return nil, CError{fmt.Sprintf("Residue %s %d has no atom %s", res.Name, res.ID, cname), MissingHelperAtom, []string{"planResidue"}}
		}
		for _, hname := range rule.Helpers {
			hi, ok := res.Index(hname)
			if !ok {
				return nil, CError{fmt.Sprintf("Residue %s %d has no helper atom %s (needed by %s)", res.Name, res.ID, hname, cname), MissingHelperAtom, []string{"planResidue"}}
			}
			cp.helpers = append(cp.helpers, hi)
		}
		ret.carbons = append(ret.carbons, cp)
	}
	return ret, nil
}

//buildHydrogens runs the placement rule of one carbon on the given frame
//and returns the hydrogen positions in construction order.
func buildHydrogens(coords *v3.Matrix, cp *carbonPlan) ([]*v3.Matrix, error) {
	atom := coords.VecView(cp.atom)
	switch cp.kind {
	case CH2:
		h1, h2, err := BuildCH2(atom, coords.VecView(cp.helpers[0]), coords.VecView(cp.helpers[1]))
		if err != nil {
			return nil, err
		}
		return []*v3.Matrix{h1, h2}, nil
	case CH:
		h, err := BuildCH(atom, coords.VecView(cp.helpers[0]), coords.VecView(cp.helpers[1]), coords.VecView(cp.helpers[2]))
		if err != nil {
			return nil, err
		}
		return []*v3.Matrix{h}, nil
	case CHDouble:
		h, err := BuildCHDouble(atom, coords.VecView(cp.helpers[0]), coords.VecView(cp.helpers[1]))
		if err != nil {
			return nil, err
		}
		return []*v3.Matrix{h}, nil
	case CH3:
		h1, h2, h3, err := BuildCH3(atom, coords.VecView(cp.helpers[0]), coords.VecView(cp.helpers[1]))
		if err != nil {
			return nil, err
		}
		return []*v3.Matrix{h1, h2, h3}, nil
	}
	return nil, CError{fmt.Sprintf("Unknown carbon kind %d", int(cp.kind)), NoKind, []string{"buildHydrogens"}}
}

/****The statistics-only strategy****/

//FastBuilder rebuilds hydrogens transiently: each position lives just long
//enough to contribute its order parameter, and nothing is ever written.
//This is the strategy for plain order parameter runs, where materializing
//every hydrogen of every lipid would be pure overhead.
type FastBuilder struct {
	plans []*resPlan
	acc   *Accumulator
}

//NewFast resolves the recipe and bond definitions against the topology and
//returns the statistics-only strategy. The topology must contain at least
//one residue with the recipe's residue name.
func NewFast(top *Topology, recipe *Recipe, def *OPDef) (*FastBuilder, error) {
	if err := recipe.Validate(); err != nil {
		return nil, errDecorate(err, "NewFast")
	}
	slots, err := resolveBonds(recipe, def)
	if err != nil {
		return nil, errDecorate(err, "NewFast")
	}
	residues := top.Residues(recipe.ResName)
	if len(residues) == 0 {
		return nil, CError{fmt.Sprintf("No %s residues in the topology", recipe.ResName), MissingHelperAtom, []string{"NewFast"}}
	}
	B := &FastBuilder{acc: NewAccumulator(def, len(residues))}
	for i, res := range residues {
		p, err := planResidue(recipe, slots, res, i)
		if err != nil {
			return nil, errDecorate(err, "NewFast")
		}
		B.plans = append(B.plans, p)
	}
	return B, nil
}

//OP returns the accumulator with the statistics gathered so far.
func (B *FastBuilder) OP() *Accumulator {
	return B.acc
}

//ComputeFrame implements the FrameComputer interface.
func (B *FastBuilder) ComputeFrame(coords *v3.Matrix) error {
	for _, rp := range B.plans {
		for i := range rp.carbons {
			cp := &rp.carbons[i]
			if len(cp.slots) == 0 {
				continue //nothing requested on this carbon
			}
			hs, err := buildHydrogens(coords, cp)
			if err != nil {
				return errDecorate(err, "ComputeFrame")
			}
			c := coords.VecView(cp.atom)
			for _, s := range cp.slots {
				B.acc.Add(s.bond, rp.residue, CalcOP(c, hs[s.slot]))
			}
		}
	}
	return nil
}

/****The materializing strategy****/

//FullBuilder rebuilds hydrogens into an output system: a topology with the
//hydrogens inserted right after their carbons, and one full coordinate set
//per frame, handed to a trajectory writer. It accumulates the same order
//parameters as FastBuilder, and requires the bond definitions to cover
//every hydrogen it builds, since an output trajectory with unchecked
//hydrogens is most likely a user mistake.
type FullBuilder struct {
	plans  []*resPlan
	acc    *Accumulator
	outTop *Topology
	buf    *v3.Matrix
	copies []int         //copies[outRow] = input row, or -1 for a built hydrogen
	hRows  map[int][]int //hRows[carbon input row] = output rows of its hydrogens
	out    TrajW
}

//NewFull resolves the recipe and bond definitions against the topology and
//returns the materializing strategy, writing frames to out. Coverage of the
//definitions over the recipe is checked here, eagerly, so an incomplete
//definition file fails before the first frame is read.
func NewFull(top *Topology, recipe *Recipe, def *OPDef, out TrajW) (*FullBuilder, error) {
	if err := recipe.Validate(); err != nil {
		return nil, errDecorate(err, "NewFull")
	}
	if err := def.Covers(recipe); err != nil {
		return nil, errDecorate(err, "NewFull")
	}
	slots, err := resolveBonds(recipe, def)
	if err != nil {
		return nil, errDecorate(err, "NewFull")
	}
	residues := top.Residues(recipe.ResName)
	if len(residues) == 0 {
		return nil, CError{fmt.Sprintf("No %s residues in the topology", recipe.ResName), MissingHelperAtom, []string{"NewFull"}}
	}
	B := &FullBuilder{acc: NewAccumulator(def, len(residues)), out: out, hRows: make(map[int][]int)}
	inRecipeRes := make(map[int]bool)
	for i, res := range residues {
		p, err := planResidue(recipe, slots, res, i)
		if err != nil {
			return nil, errDecorate(err, "NewFull")
		}
		B.plans = append(B.plans, p)
		for _, ai := range res.Indices() {
			inRecipeRes[ai] = true
		}
	}
	//the output topology: every input atom, with the rebuilt hydrogens of
	//each recipe carbon inserted right after it
	B.outTop = new(Topology)
	for i, at := range top.Atoms {
		B.outTop.AppendAtom(at.Copy())
		B.copies = append(B.copies, i)
		if !inRecipeRes[i] {
			continue
		}
		rule, ok := recipe.Rule(at.Name)
		if !ok {
			continue
		}
		for _, hname := range HydrogenNames(at.Name, rule.Kind) {
			h := &Atom{Name: hname, MolName: at.MolName, MolID: at.MolID, Chain: at.Chain, Symbol: "H"}
			B.outTop.AppendAtom(h)
			B.hRows[i] = append(B.hRows[i], len(B.copies))
			B.copies = append(B.copies, -1)
		}
	}
	B.outTop.ResetIDs()
	B.buf = v3.Zeros(B.outTop.Len())
	return B, nil
}

//OP returns the accumulator with the statistics gathered so far.
func (B *FullBuilder) OP() *Accumulator {
	return B.acc
}

//SetOut sets the trajectory writer. It exists because the writer usually
//needs the output atom count, which is known only after NewFull returns.
func (B *FullBuilder) SetOut(out TrajW) {
	B.out = out
}

//OutTopology returns the topology of the output system, hydrogens included.
func (B *FullBuilder) OutTopology() *Topology {
	return B.outTop
}

//OutCoords returns the frame buffer with the last computed frame. The
//buffer is overwritten on every call to ComputeFrame.
func (B *FullBuilder) OutCoords() *v3.Matrix {
	return B.buf
}

//ComputeFrame implements the FrameComputer interface.
func (B *FullBuilder) ComputeFrame(coords *v3.Matrix) error {
	for row, src := range B.copies {
		if src < 0 {
			continue
		}
		B.buf.SetMatrix(row, 0, coords.VecView(src))
	}
	for _, rp := range B.plans {
		for i := range rp.carbons {
			cp := &rp.carbons[i]
			hs, err := buildHydrogens(coords, cp)
			if err != nil {
				return errDecorate(err, "ComputeFrame")
			}
			c := coords.VecView(cp.atom)
			for _, s := range cp.slots {
				B.acc.Add(s.bond, rp.residue, CalcOP(c, hs[s.slot]))
			}
			for k, h := range hs {
				B.buf.SetMatrix(B.hRows[cp.atom][k], 0, h)
			}
		}
	}
	if B.out != nil {
		if err := B.out.WNext(B.buf); err != nil {
			return errDecorate(err, "ComputeFrame")
		}
	}
	return nil
}
