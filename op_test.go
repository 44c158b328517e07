/*
 * op_test.go, part of buildh.
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
	"strings"
	"testing"

	v3 "github.com/pierrepo/buildh/v3"
)

func TestCalcOP(Te *testing.T) {
	c := v3.Vec(0, 0, 0)
	//a bond along the membrane normal gives 1
	if s := CalcOP(c, v3.Vec(0, 0, 1.09)); math.Abs(s-1) > testTol {
		Te.Errorf("Parallel bond: %f", s)
	}
	//a bond in the membrane plane gives -0.5
	if s := CalcOP(c, v3.Vec(1.09, 0, 0)); math.Abs(s+0.5) > testTol {
		Te.Errorf("In-plane bond: %f", s)
	}
	//the magic angle gives 0
	ma := math.Acos(1 / math.Sqrt(3))
	h := v3.Vec(math.Sin(ma), 0, math.Cos(ma))
	if s := CalcOP(c, h); math.Abs(s) > testTol {
		Te.Errorf("Magic angle bond: %f", s)
	}
	//only the direction matters, not the bond length
	if s := CalcOP(c, v3.Vec(0, 0, 7.3)); math.Abs(s-1) > testTol {
		Te.Errorf("Long parallel bond: %f", s)
	}
}

func TestAccumulatorTwoPass(Te *testing.T) {
	def := &OPDef{Bonds: []OPBond{{Label: "b", ResName: "POPC", Carbon: "C5", Hydrogen: "H51"}}}
	acc := NewAccumulator(def, 2)
	//residue 0: values 0.2 and 0.4 over two frames, residue 1: 0.8 and 0.6.
	//The per-residue averages are 0.3 and 0.7.
	acc.Add(0, 0, 0.2)
	acc.Add(0, 1, 0.8)
	acc.Add(0, 0, 0.4)
	acc.Add(0, 1, 0.6)
	st, err := acc.Stats(0)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(st.Mean-0.5) > testTol {
		Te.Errorf("Mean %f, wanted 0.5", st.Mean)
	}
	//population std over {0.3, 0.7} is 0.2, not the frame-level spread
	if math.Abs(st.Std-0.2) > testTol {
		Te.Errorf("Std %f, wanted 0.2", st.Std)
	}
	if math.Abs(st.Stem-0.2/math.Sqrt2) > testTol {
		Te.Errorf("Stem %f, wanted %f", st.Stem, 0.2/math.Sqrt2)
	}
}

func TestAccumulatorKeepsHistory(Te *testing.T) {
	def := &OPDef{Bonds: []OPBond{{Label: "b", ResName: "POPC", Carbon: "C5", Hydrogen: "H51"}}}
	acc := NewAccumulator(def, 2)
	for _, v := range []float64{0.2, 0.4, 0.6} {
		acc.Add(0, 0, v)
		acc.Add(0, 1, -v)
	}
	got := acc.Values(0, 0)
	if len(got) != 3 || got[0] != 0.2 || got[1] != 0.4 || got[2] != 0.6 {
		Te.Errorf("Recorded values %v", got)
	}
	if len(acc.Values(0, 1)) != len(got) {
		Te.Error("Residues fed the same frames should have histories of equal length")
	}
	got[0] = 100
	if acc.Values(0, 0)[0] != 0.2 {
		Te.Error("Values should hand out a copy, not the internal storage")
	}
}

func TestByCarbonPooledAverage(Te *testing.T) {
	def := &OPDef{Bonds: []OPBond{
		{Label: "a1", ResName: "POPC", Carbon: "C2", Hydrogen: "H21"},
		{Label: "a2", ResName: "POPC", Carbon: "C2", Hydrogen: "H22"},
	}}
	acc := NewAccumulator(def, 2)
	//per-residue averages are {0, 0} for the first hydrogen and {1, 1} for
	//the second: each hydrogen alone has no spread, but pooled over the
	//carbon the std is 0.5 and the stem 0.25
	acc.Add(0, 0, 0)
	acc.Add(0, 1, 0)
	acc.Add(1, 0, 1)
	acc.Add(1, 1, 1)
	var b strings.Builder
	if err := acc.WriteByCarbon(&b); err != nil {
		Te.Fatal(err)
	}
	var avg string
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.Contains(line, "AVG") {
			avg = line
		}
	}
	if avg == "" {
		Te.Fatalf("No AVG row:\n%s", b.String())
	}
	for _, want := range []string{"0.5000", "0.2500"} {
		if !strings.Contains(avg, want) {
			Te.Errorf("AVG row %q lacks %s", avg, want)
		}
	}
}

func TestAccumulatorEmptyBond(Te *testing.T) {
	def := &OPDef{Bonds: []OPBond{{Label: "b", ResName: "POPC", Carbon: "C5", Hydrogen: "H51"}}}
	acc := NewAccumulator(def, 3)
	if _, err := acc.Stats(0); err == nil {
		Te.Error("Stats on an empty bond did not fail")
	}
}

func TestReports(Te *testing.T) {
	def := &OPDef{Bonds: []OPBond{
		{Label: "gamma1", ResName: "POPC", Carbon: "C1", Hydrogen: "H11"},
		{Label: "gamma2", ResName: "POPC", Carbon: "C1", Hydrogen: "H12"},
	}}
	acc := NewAccumulator(def, 1)
	acc.Add(0, 0, 0.25)
	acc.Add(1, 0, -0.25)
	var flat strings.Builder
	if err := acc.WriteReport(&flat); err != nil {
		Te.Fatal(err)
	}
	out := flat.String()
	if !strings.Contains(out, "gamma1") || !strings.Contains(out, "0.25000") {
		Te.Errorf("Flat report lacks expected content:\n%s", out)
	}
	var byc strings.Builder
	if err := acc.WriteByCarbon(&byc); err != nil {
		Te.Fatal(err)
	}
	out = byc.String()
	for _, want := range []string{"HR", "HS", "AVG"} {
		if !strings.Contains(out, want) {
			Te.Errorf("By-carbon report lacks %s row:\n%s", want, out)
		}
	}
	//two hydrogens at +/- 0.25 average to zero
	if !strings.Contains(out, "0.0000") {
		Te.Errorf("By-carbon report lacks the zero average:\n%s", out)
	}
}
