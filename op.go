/*
 * op.go, part of buildh.
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
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"

	v3 "github.com/pierrepo/buildh/v3"
)

//CalcOP returns the deuterium order parameter of one C-H bond,
//S = (3 cos2(theta) - 1) / 2, where theta is the angle between the bond and
//the membrane normal (the z axis). No arccos is needed: cos(theta) is the z
//component of the bond over its length.
func CalcOP(c, h *v3.Matrix) float64 {
	dx := h.At(0, 0) - c.At(0, 0)
	dy := h.At(0, 1) - c.At(0, 1)
	dz := h.At(0, 2) - c.At(0, 2)
	norm2 := dx*dx + dy*dy + dz*dz
	return 0.5 * (3.0*dz*dz/norm2 - 1.0)
}

//OPStats carries the ensemble statistics of one bond: the mean over
//residues of the per-residue time averages, their population standard
//deviation, and the standard error of the mean.
type OPStats struct {
	Mean float64
	Std  float64
	Stem float64
}

//Accumulator gathers order parameter values per bond and per residue over a
//trajectory. Every recorded value is kept, in recording order, so the full
//per-frame history stays available after the run. Averaging is two-pass:
//values of one residue are averaged over time first, and the ensemble
//statistics are taken over the per-residue averages. This way the standard
//deviation measures lipid-to-lipid spread, not frame-to-frame noise.
type Accumulator struct {
	def    *OPDef
	nres   int
	values [][][]float64
}

//NewAccumulator returns an accumulator for the given bond definitions and
//residue count.
func NewAccumulator(def *OPDef, nres int) *Accumulator {
	A := &Accumulator{def: def, nres: nres}
	A.values = make([][][]float64, len(def.Bonds))
	for i := range A.values {
		A.values[i] = make([][]float64, nres)
	}
	return A
}

//Def returns the bond definitions the accumulator was built from.
func (A *Accumulator) Def() *OPDef {
	return A.def
}

//Add records one order parameter value for the given bond and residue.
//Panics if either index is out of range.
func (A *Accumulator) Add(bond, residue int, value float64) {
	A.values[bond][residue] = append(A.values[bond][residue], value)
}

//Values returns the per-frame order parameter values recorded for one bond
//on one residue, in recording order. The returned slice is a copy; the
//recorded history cannot be altered through it.
func (A *Accumulator) Values(bond, residue int) []float64 {
	v := A.values[bond][residue]
	ret := make([]float64, len(v))
	copy(ret, v)
	return ret
}

//Series returns the per-residue time averages of one bond. Residues that
//never received a value are skipped.
func (A *Accumulator) Series(bond int) []float64 {
	ret := make([]float64, 0, A.nres)
	for r := 0; r < A.nres; r++ {
		if len(A.values[bond][r]) == 0 {
			continue
		}
		ret = append(ret, stat.Mean(A.values[bond][r], nil))
	}
	return ret
}

//Stats returns the ensemble statistics of one bond. It returns an error if
//the bond never received any value, which means the trajectory contained no
//residue with the bond's atoms.
func (A *Accumulator) Stats(bond int) (OPStats, error) {
	series := A.Series(bond)
	if len(series) == 0 {
		b := A.def.Bonds[bond]
		return OPStats{}, CError{fmt.Sprintf("No values accumulated for bond %s (%s %s-%s)", b.Label, b.ResName, b.Carbon, b.Hydrogen), NoKind, []string{"Accumulator.Stats"}}
	}
	mean := stat.Mean(series, nil)
	std := stat.PopStdDev(series, nil)
	return OPStats{Mean: mean, Std: std, Stem: std / math.Sqrt(float64(len(series)))}, nil
}

//WriteReport writes one line per defined bond with its label, residue,
//atom names and ensemble statistics, in definition order.
func (A *Accumulator) WriteReport(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# %-18s %-7s %-5s %-5s  %8s %9s %7s\n", "OP_name", "resname", "atom1", "atom2", "OP_mean", "OP_stddev", "OP_stem")
	if err != nil {
		return CError{err.Error(), NoKind, []string{"Accumulator.WriteReport"}}
	}
	fmt.Fprintln(w, "#--------------------------------------------------------------------")
	for i, b := range A.def.Bonds {
		st, err := A.Stats(i)
		if err != nil {
			return errDecorate(err, "Accumulator.WriteReport")
		}
		_, err = fmt.Fprintf(w, "%-20s %-7s %-5s %-5s %8.5f %9.5f %7.5f\n", b.Label, b.ResName, b.Carbon, b.Hydrogen, st.Mean, st.Std, st.Stem)
		if err != nil {
			return CError{err.Error(), NoKind, []string{"Accumulator.WriteReport"}}
		}
	}
	return nil
}

//hydrogenTags are the row labels of the by-carbon report, by construction
//order of the hydrogen on its carbon.
var hydrogenTags = []string{"HR", "HS", "HT"}

//WriteByCarbon writes the by-carbon report: bonds are grouped under their
//carbon, each hydrogen gets a tagged row, and an AVG row averages the
//statistics of the carbon's hydrogens.
func (A *Accumulator) WriteByCarbon(w io.Writer) error {
	//group bond indices by (resname, carbon), keeping definition order
	type group struct {
		res, carbon string
		bonds       []int
	}
	var groups []*group
	byKey := make(map[[2]string]*group)
	for i, b := range A.def.Bonds {
		key := [2]string{b.ResName, b.Carbon}
		g, ok := byKey[key]
		if !ok {
			g = &group{res: b.ResName, carbon: b.Carbon}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.bonds = append(g.bonds, i)
	}
	_, err := fmt.Fprintf(w, "%-10s %-8s %10s %10s %10s\n", "Atom_name", "Hydrogen", "OP", "STD", "STEM")
	if err != nil {
		return CError{err.Error(), NoKind, []string{"Accumulator.WriteByCarbon"}}
	}
	fmt.Fprintln(w, "=================================================")
	for _, g := range groups {
		//the AVG row pools the per-residue averages of every hydrogen on
		//the carbon and takes its statistics over the pooled values
		var pooled []float64
		for j, bi := range g.bonds {
			st, err := A.Stats(bi)
			if err != nil {
				return errDecorate(err, "Accumulator.WriteByCarbon")
			}
			tag := hydrogenTags[len(hydrogenTags)-1]
			if j < len(hydrogenTags) {
				tag = hydrogenTags[j]
			}
			_, err = fmt.Fprintf(w, "%-10s %-8s %10.4f %10.4f %10.4f\n", g.carbon, tag, st.Mean, st.Std, st.Stem)
			if err != nil {
				return CError{err.Error(), NoKind, []string{"Accumulator.WriteByCarbon"}}
			}
			pooled = append(pooled, A.Series(bi)...)
		}
		mean := stat.Mean(pooled, nil)
		std := stat.PopStdDev(pooled, nil)
		stem := std / math.Sqrt(float64(len(pooled)))
		_, err = fmt.Fprintf(w, "%-10s %-8s %10.4f %10.4f %10.4f\n\n", g.carbon, "AVG", mean, std, stem)
		if err != nil {
			return CError{err.Error(), NoKind, []string{"Accumulator.WriteByCarbon"}}
		}
	}
	return nil
}

//WriteReportFile writes both report styles next to each other: the flat
//per-bond report to base.jmelcr_style.out and the by-carbon report to
//base.apineiro_style.out.
func (A *Accumulator) WriteReportFile(base string) error {
	f, err := os.Create(base + ".jmelcr_style.out")
	if err != nil {
		return CError{err.Error(), NoKind, []string{"Accumulator.WriteReportFile"}}
	}
	defer f.Close()
	if err := A.WriteReport(f); err != nil {
		return errDecorate(err, "Accumulator.WriteReportFile")
	}
	g, err := os.Create(base + ".apineiro_style.out")
	if err != nil {
		return CError{err.Error(), NoKind, []string{"Accumulator.WriteReportFile"}}
	}
	defer g.Close()
	if err := A.WriteByCarbon(g); err != nil {
		return errDecorate(err, "Accumulator.WriteReportFile")
	}
	return nil
}
