/*
 * hydrogens.go, part of buildh.
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

	v3 "github.com/pierrepo/buildh/v3"
)

//CHBondLength is the length, in Angstroms, of every reconstructed
//carbon-hydrogen bond.
const CHBondLength = 1.09

//TetrahedralAngle is the ideal sp3 valence angle, in radians
//(acos(-1/3), about 109.47 degrees).
var TetrahedralAngle = math.Acos(-1.0 / 3.0)

//unitFrom returns the unit vector pointing from 'from' towards 'to'.
//Z-matrix style reconstructions only care about directions, so helper
//positions enter every builder through this function.
func unitFrom(from, to *v3.Matrix) (*v3.Matrix, error) {
	d := v3.Zeros(1)
	d.Sub(to, from)
	norm := d.Norm(2)
	if norm <= appzero {
		return nil, CError{"Superimposed atoms: cannot take a bond direction", GeometryDegenerate, []string{"unitFrom"}}
	}
	d.Scale(1/norm, d)
	return d, nil
}

//place returns atom + CHBondLength * dir, where dir must be a unit vector.
func place(atom, dir *v3.Matrix) *v3.Matrix {
	h := v3.Zeros(1)
	h.Scale(CHBondLength, dir)
	h.Add(h, atom)
	return h
}

//BuildCH2 reconstructs the two hydrogens of a methylene carbon. atom is the
//carbon, helper1 and helper2 are its two heavy neighbors (for an acyl chain
//carbon Cn, these are Cn-1 and Cn+1). The hydrogens lie in the plane
//perpendicular to the helper1-helper2 direction, opening the ideal
//tetrahedral angle between them.
func BuildCH2(atom, helper1, helper2 *v3.Matrix) (*v3.Matrix, *v3.Matrix, error) {
	u1, err := unitFrom(atom, helper1)
	if err != nil {
		return nil, nil, errDecorate(err, "BuildCH2")
	}
	u2, err := unitFrom(atom, helper2)
	if err != nil {
		return nil, nil, errDecorate(err, "BuildCH2")
	}
	//normal to the helper1-atom-helper2 plane
	n := v3.Zeros(1)
	n.Cross(u2, u1)
	norm := n.Norm(2)
	if norm <= appzero {
		return nil, nil, CError{"Colinear helpers: the bisecting plane is undefined", GeometryDegenerate, []string{"BuildCH2"}}
	}
	n.Scale(1/norm, n)
	//rotation axis, perpendicular to both C-H bonds
	axis := v3.Zeros(1)
	axis.Sub(u1, u2)
	axis.Scale(1/axis.Norm(2), axis)
	//unit vector opposing the helper bisector, in the helper plane
	anti := v3.Zeros(1)
	anti.Cross(n, axis)
	anti.Scale(1/anti.Norm(2), anti)
	d1, err := RotateAbout(anti, axis, -TetrahedralAngle/2)
	if err != nil {
		return nil, nil, errDecorate(err, "BuildCH2")
	}
	d2, err := RotateAbout(anti, axis, TetrahedralAngle/2)
	if err != nil {
		return nil, nil, errDecorate(err, "BuildCH2")
	}
	return place(atom, d1), place(atom, d2), nil
}

//BuildCH reconstructs the single hydrogen of a methine carbon. atom is the
//carbon and helper1-3 its three heavy neighbors. The hydrogen points along
//the negated sum of the three bond directions, which is exact for a
//tetrahedral center and the natural generalization for a distorted one.
func BuildCH(atom, helper1, helper2, helper3 *v3.Matrix) (*v3.Matrix, error) {
	sum := v3.Zeros(1)
	for _, h := range []*v3.Matrix{helper1, helper2, helper3} {
		u, err := unitFrom(atom, h)
		if err != nil {
			return nil, errDecorate(err, "BuildCH")
		}
		sum.Add(sum, u)
	}
	norm := sum.Norm(2)
	if norm <= appzero {
		return nil, CError{"Helper directions cancel out: hydrogen direction is undefined", GeometryDegenerate, []string{"BuildCH"}}
	}
	sum.Scale(-1/norm, sum)
	return place(atom, sum), nil
}

//BuildCHDouble reconstructs the single hydrogen of an sp2 carbon in a
//carbon-carbon double bond, as in the oleoyl chain of POPC. atom is the sp2
//carbon, helper1 the other sp2 carbon and helper2 the sp3 neighbor. The
//hydrogen is placed in the sp2 plane, reproducing on the helper2 side the
//angle measured between the two helpers.
func BuildCHDouble(atom, helper1, helper2 *v3.Matrix) (*v3.Matrix, error) {
	u1, err := unitFrom(atom, helper1)
	if err != nil {
		return nil, errDecorate(err, "BuildCHDouble")
	}
	u2, err := unitFrom(atom, helper2)
	if err != nil {
		return nil, errDecorate(err, "BuildCHDouble")
	}
	theta, err := ValenceAngle(helper1, atom, helper2)
	if err != nil {
		return nil, errDecorate(err, "BuildCHDouble")
	}
	n := v3.Zeros(1)
	n.Cross(u1, u2)
	if n.Norm(2) <= appzero {
		return nil, CError{"Colinear helpers: the sp2 plane is undefined", GeometryDegenerate, []string{"BuildCHDouble"}}
	}
	//rotating the sp3 bond direction by theta about the plane normal lands
	//opposite the helper bisector, still inside the sp2 plane
	d, err := RotateAbout(u2, n, theta)
	if err != nil {
		return nil, errDecorate(err, "BuildCHDouble")
	}
	return place(atom, d), nil
}

//BuildCH3 reconstructs the three hydrogens of a terminal methyl carbon.
//atom is the carbon, helper1 its heavy neighbor and helper2 the next atom
//down the chain. The first hydrogen eclipses helper2; the other two follow
//at 120 degree steps about the helper1-atom bond, so the methyl group comes
//out with ideal tetrahedral geometry.
func BuildCH3(atom, helper1, helper2 *v3.Matrix) (*v3.Matrix, *v3.Matrix, *v3.Matrix, error) {
	v2 := v3.Zeros(1)
	v2.Sub(helper1, atom)
	v3v := v3.Zeros(1)
	v3v.Sub(helper2, helper1)
	axis := v3.Zeros(1)
	axis.Cross(v2, v3v)
	if axis.Norm(2) <= appzero {
		return nil, nil, nil, CError{"Colinear chain tail: the eclipsed direction is undefined", GeometryDegenerate, []string{"BuildCH3"}}
	}
	//eclipsed hydrogen, tetrahedral angle away from the C-helper1 bond
	d1, err := RotateAbout(v2, axis, TetrahedralAngle)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "BuildCH3")
	}
	d2, err := RotateAbout(d1, v2, 2*math.Pi/3)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "BuildCH3")
	}
	d3, err := RotateAbout(d1, v2, -2*math.Pi/3)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "BuildCH3")
	}
	return place(atom, d1), place(atom, d2), place(atom, d3), nil
}
