/*
 * build_test.go, part of buildh.
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
	"math"
	"testing"

	v3 "github.com/pierrepo/buildh/v3"
)

//testRecipe is a minimal two-carbon chain fragment: one methylene between
//two bare carbons.
func testRecipe() *Recipe {
	r := NewRecipe("TST")
	r.Set("C2", CarbonRecipe{Kind: CH2, Helpers: []string{"C1", "C3"}})
	return r
}

func testDef() *OPDef {
	return &OPDef{Bonds: []OPBond{
		{Label: "t1", ResName: "TST", Carbon: "C2", Hydrogen: "H21"},
		{Label: "t2", ResName: "TST", Carbon: "C2", Hydrogen: "H22"},
	}}
}

//testMolecule builds two TST residues over three frames, 10 ps apart. The
//carbon positions wiggle a little per frame and per residue so no two
//reconstructions are identical.
func testMolecule(Te *testing.T) *Molecule {
	var atoms []*Atom
	for res := 1; res <= 2; res++ {
		for _, name := range []string{"C1", "C2", "C3"} {
			atoms = append(atoms, &Atom{Name: name, MolName: "TST", MolID: res, Symbol: "C"})
		}
	}
	top, err := NewTopology(atoms)
	if err != nil {
		Te.Fatal(err)
	}
	top.ResetIDs()
	var frames []*v3.Matrix
	for f := 0; f < 3; f++ {
		w := 0.1 * float64(f)
		var data []float64
		for res := 0; res < 2; res++ {
			z := 5.0 * float64(res)
			data = append(data,
				1, 1+w, z, //C1
				0, 0, z+w/2, //C2
				-1, 1-w/3, z, //C3
			)
		}
		frame, err := v3.NewMatrix(data)
		if err != nil {
			Te.Fatal(err)
		}
		frames = append(frames, frame)
	}
	mol, err := NewMolecule(top, frames, 0, 10)
	if err != nil {
		Te.Fatal(err)
	}
	return mol
}

func TestStrategiesAgree(Te *testing.T) {
	mol := testMolecule(Te)
	recipe := testRecipe()
	def := testDef()

	fast, err := NewFast(mol.Topology, recipe, def)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := Run(mol, fast, 0, -1); err != nil {
		Te.Fatal(err)
	}

	mol.InitRead()
	full, err := NewFull(mol.Topology, recipe, def, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := Run(mol, full, 0, -1); err != nil {
		Te.Fatal(err)
	}

	for i := range def.Bonds {
		a, err := fast.OP().Stats(i)
		if err != nil {
			Te.Fatal(err)
		}
		b, err := full.OP().Stats(i)
		if err != nil {
			Te.Fatal(err)
		}
		if a != b {
			Te.Errorf("Bond %d: strategies disagree: %+v vs %+v", i, a, b)
		}
	}
}

func TestFullOutputTopology(Te *testing.T) {
	mol := testMolecule(Te)
	full, err := NewFull(mol.Topology, testRecipe(), testDef(), nil)
	if err != nil {
		Te.Fatal(err)
	}
	out := full.OutTopology()
	//two hydrogens per residue were added
	if out.Len() != mol.Len()+4 {
		Te.Fatalf("Output topology has %d atoms, wanted %d", out.Len(), mol.Len()+4)
	}
	//the hydrogens sit right after their carbon
	wantNames := []string{"C1", "C2", "H21", "H22", "C3"}
	for i, want := range wantNames {
		if got := out.Atom(i).Name; got != want {
			Te.Errorf("Atom %d named %s, wanted %s", i, got, want)
		}
	}
	//serials were renumbered
	for i := 0; i < out.Len(); i++ {
		if out.Atom(i).ID != i+1 {
			Te.Fatalf("Atom %d has serial %d", i, out.Atom(i).ID)
		}
	}
	//the built hydrogens land in the frame buffer at bond length
	if _, err := Run(mol, full, 0, -1); err != nil {
		Te.Fatal(err)
	}
	buf := full.OutCoords()
	c := buf.VecView(1)
	for _, hrow := range []int{2, 3} {
		if d := dist(buf.VecView(hrow), c); math.Abs(d-CHBondLength) > testTol {
			Te.Errorf("Hydrogen at row %d sits %f from its carbon", hrow, d)
		}
	}
}

func TestFullRequiresCoverage(Te *testing.T) {
	mol := testMolecule(Te)
	partial := &OPDef{Bonds: testDef().Bonds[:1]}
	_, err := NewFull(mol.Topology, testRecipe(), partial, nil)
	if err == nil {
		Te.Fatal("Partial definition accepted for trajectory output")
	}
	if !IsKind(err, IncompleteRecipe) {
		Te.Errorf("Wrong error kind: %v", err)
	}
	//the statistics-only strategy takes partial definitions
	if _, err := NewFast(mol.Topology, testRecipe(), partial); err != nil {
		Te.Errorf("Fast strategy rejected a partial definition: %v", err)
	}
}

func TestMissingHelper(Te *testing.T) {
	mol := testMolecule(Te)
	r := NewRecipe("TST")
	r.Set("C2", CarbonRecipe{Kind: CH2, Helpers: []string{"C1", "C9"}})
	def := &OPDef{Bonds: []OPBond{{Label: "t1", ResName: "TST", Carbon: "C2", Hydrogen: "H21"}}}
	_, err := NewFast(mol.Topology, r, def)
	if err == nil {
		Te.Fatal("A recipe with an absent helper was accepted")
	}
	if !IsKind(err, MissingHelperAtom) {
		Te.Errorf("Wrong error kind: %v", err)
	}
}

func TestCheckSlice(Te *testing.T) {
	mol := testMolecule(Te) //frames at 0, 10 and 20 ps
	first, last, err := CheckSlice(mol, -1, -1)
	if err != nil {
		Te.Fatal(err)
	}
	if first != 0 || last != 3 {
		Te.Errorf("Default window [%d, %d), wanted [0, 3)", first, last)
	}
	first, last, err = CheckSlice(mol, 10, 20)
	if err != nil {
		Te.Fatal(err)
	}
	if first != 1 || last != 3 {
		Te.Errorf("Window [%d, %d), wanted [1, 3)", first, last)
	}
	for _, bad := range [][2]float64{{30, 40}, {15, 5}, {5, 25}} {
		if _, _, err := CheckSlice(mol, bad[0], bad[1]); err == nil || !IsKind(err, InvalidFrameRange) {
			Te.Errorf("Window [%g, %g] ps: wrong error %v", bad[0], bad[1], err)
		}
	}
}

func TestRunWindow(Te *testing.T) {
	mol := testMolecule(Te)
	fast, err := NewFast(mol.Topology, testRecipe(), testDef())
	if err != nil {
		Te.Fatal(err)
	}
	n, err := Run(mol, fast, 1, 3)
	if err != nil {
		Te.Fatal(err)
	}
	if n != 2 {
		Te.Errorf("Processed %d frames, wanted 2", n)
	}
	//a window past the end of the trajectory processes nothing
	mol.InitRead()
	if _, err := Run(mol, fast, 5, -1); err == nil || !IsKind(err, InvalidFrameRange) {
		Te.Errorf("Window past the end: wrong error %v", err)
	}
}
