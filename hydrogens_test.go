/*
 * hydrogens_test.go, part of buildh.
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

func dist(a, b *v3.Matrix) float64 {
	d := v3.Zeros(1)
	d.Sub(a, b)
	return d.Norm(2)
}

//angleAt returns the angle a-at-b in radians.
func angleAt(a, at, b *v3.Matrix) float64 {
	u := v3.Zeros(1)
	w := v3.Zeros(1)
	u.Sub(a, at)
	w.Sub(b, at)
	return Angle(u, w)
}

func TestBuildCH2(Te *testing.T) {
	c := v3.Vec(0, 0, 0)
	h1p := v3.Vec(1, 1, 0)  //Cn-1
	h2p := v3.Vec(-1, 1, 0) //Cn+1
	ha, hb, err := BuildCH2(c, h1p, h2p)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(dist(ha, c)-CHBondLength) > testTol || math.Abs(dist(hb, c)-CHBondLength) > testTol {
		Te.Errorf("Bond lengths %f %f, wanted %f", dist(ha, c), dist(hb, c), CHBondLength)
	}
	if ang := angleAt(ha, c, hb); math.Abs(ang-TetrahedralAngle) > testTol {
		Te.Errorf("H-C-H angle %f, wanted %f", ang, TetrahedralAngle)
	}
	//both hydrogens lie in the plane perpendicular to the helper1-helper2
	//direction, here the x axis
	if math.Abs(ha.At(0, 0)) > testTol || math.Abs(hb.At(0, 0)) > testTol {
		Te.Errorf("Hydrogens out of the perpendicular plane: %v %v", ha, hb)
	}
	//and on the far side from the helpers
	if ha.At(0, 1) >= 0 || hb.At(0, 1) >= 0 {
		Te.Errorf("Hydrogens on the helper side: %v %v", ha, hb)
	}
	//the construction is chiral: the first hydrogen must fall on a definite
	//side of the helper plane
	if ha.At(0, 2) <= 0 || hb.At(0, 2) >= 0 {
		Te.Errorf("Hydrogens swapped across the helper plane: %v %v", ha, hb)
	}
}

func TestBuildCH(Te *testing.T) {
	//three vertices of a tetrahedron around the origin; the hydrogen must
	//land on the fourth
	c := v3.Vec(0, 0, 0)
	h, err := BuildCH(c, v3.Vec(1, 1, 1), v3.Vec(1, -1, -1), v3.Vec(-1, 1, -1))
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(dist(h, c)-CHBondLength) > testTol {
		Te.Errorf("Bond length %f", dist(h, c))
	}
	want := CHBondLength / math.Sqrt(3)
	if math.Abs(h.At(0, 0)+want) > testTol || math.Abs(h.At(0, 1)+want) > testTol || math.Abs(h.At(0, 2)-want) > testTol {
		Te.Errorf("Got %v, wanted the fourth tetrahedral vertex", h)
	}
}

func TestBuildCHDouble(Te *testing.T) {
	//a flat sp2 center with 120 degree helpers
	c := v3.Vec(0, 0, 0)
	sp2 := v3.Vec(1, 0, 0)
	sp3 := v3.Vec(-0.5, math.Sqrt(3)/2, 0)
	h, err := BuildCHDouble(c, sp2, sp3)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(dist(h, c)-CHBondLength) > testTol {
		Te.Errorf("Bond length %f", dist(h, c))
	}
	if math.Abs(h.At(0, 2)) > testTol {
		Te.Errorf("Hydrogen out of the sp2 plane: %v", h)
	}
	//the helper angle is reproduced between the hydrogen and the sp2 helper
	want := angleAt(sp2, c, sp3)
	if got := angleAt(h, c, sp2); math.Abs(got-want) > 1e-7 {
		Te.Errorf("H-C=C angle %f, wanted %f", got, want)
	}
	//and the hydrogen opposes the helper bisector
	if h.At(0, 1) >= 0 || h.At(0, 0) >= 0 {
		Te.Errorf("Hydrogen on the helper side: %v", h)
	}
}

func TestBuildCH3(Te *testing.T) {
	c := v3.Vec(0, 0, 0)
	h1p := v3.Vec(0, 0, 1.5)  //Cn-1
	h2p := v3.Vec(0, 1.5, 3)  //Cn-2
	ha, hb, hc, err := BuildCH3(c, h1p, h2p)
	if err != nil {
		Te.Fatal(err)
	}
	all := []*v3.Matrix{ha, hb, hc}
	for i, h := range all {
		if math.Abs(dist(h, c)-CHBondLength) > testTol {
			Te.Errorf("Hydrogen %d: bond length %f", i, dist(h, c))
		}
		if ang := angleAt(h, c, h1p); math.Abs(ang-TetrahedralAngle) > testTol {
			Te.Errorf("Hydrogen %d: H-C-C angle %f", i, ang)
		}
	}
	//120 degree spacing at a tetrahedral tilt gives tetrahedral H-C-H angles
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if ang := angleAt(all[i], c, all[j]); math.Abs(ang-TetrahedralAngle) > 1e-7 {
				Te.Errorf("H%d-C-H%d angle %f", i, j, ang)
			}
		}
	}
	//the first hydrogen eclipses the second helper: seen down the C-C bond,
	//both project onto +y
	if ha.At(0, 1) <= 0 || math.Abs(ha.At(0, 0)) > testTol {
		Te.Errorf("First hydrogen not eclipsing the chain: %v", ha)
	}
}

func TestBuildDegenerate(Te *testing.T) {
	c := v3.Vec(0, 0, 0)
	//colinear helpers leave the methylene plane undefined
	_, _, err := BuildCH2(c, v3.Vec(1, 0, 0), v3.Vec(-1, 0, 0))
	if err == nil {
		Te.Fatal("Colinear CH2 helpers did not fail")
	}
	if !IsKind(err, GeometryDegenerate) {
		Te.Errorf("Wrong error kind: %v", err)
	}
	//a helper on top of the carbon has no direction
	_, err = BuildCHDouble(c, v3.Vec(0, 0, 0), v3.Vec(0, 1, 0))
	if !IsKind(err, GeometryDegenerate) {
		Te.Errorf("Superimposed helper: wrong error: %v", err)
	}
}
