/*
 * geometry.go, part of buildh.
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

	"gonum.org/v1/gonum/mat"

	v3 "github.com/pierrepo/buildh/v3"
)

//appzero is the absolute tolerance under which a floating point excursion
//outside a function's domain is taken as roundoff and clamped.
const appzero float64 = 0.0000001

//Angle returns the angle, in radians, between v1 and v2. Roundoff
//excursions of the arccos argument outside its domain are silently
//clamped; ValenceAngle reports them instead.
func Angle(v1, v2 *v3.Matrix) float64 {
	normproduct := v1.Norm(2) * v2.Norm(2)
	dotprod := v1.Dot(v2)
	argument := dotprod / normproduct
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0
	}
	return angle
}

//ValenceAngle returns the angle, in radians, formed at at by the atoms a and
//b. It returns a DomainError if roundoff pushes the arccos argument outside
//its domain by more than the correction threshold, which would mean the
//input coordinates are corrupted.
func ValenceAngle(a, at, b *v3.Matrix) (float64, error) {
	u := v3.Zeros(1)
	w := v3.Zeros(1)
	u.Sub(a, at)
	w.Sub(b, at)
	argument := u.Dot(w) / (u.Norm(2) * w.Norm(2))
	if math.Abs(argument)-1 > appzero {
		return 0, CError{fmt.Sprintf("Arccos argument out of range: %f", argument), DomainError, []string{"ValenceAngle"}}
	}
	return Angle(u, w), nil
}

//axisQuaternion returns the unit quaternion (w, x, y, z) for a rotation of
//angle radians about the given axis. The axis does not need to be
//normalized, but it must not be the zero vector.
func axisQuaternion(angle float64, axis *v3.Matrix) (float64, float64, float64, float64, error) {
	norm := axis.Norm(2)
	if norm <= appzero {
		return 0, 0, 0, 0, CError{"Rotation axis is the zero vector: helpers are colinear or superimposed", GeometryDegenerate, []string{"axisQuaternion"}}
	}
	w := math.Cos(angle / 2)
	s := math.Sin(angle / 2)
	x := s * axis.At(0, 0) / norm
	y := s * axis.At(0, 1) / norm
	z := s * axis.At(0, 2) / norm
	return w, x, y, z, nil
}

//RotateAbout rotates the vector vec by angle radians about axis, and returns
//the result as a fresh unit vector. The rotation follows the right hand
//rule. It returns a GeometryDegenerate error when the axis has no
//direction, i.e. when it is shorter than the roundoff threshold.
func RotateAbout(vec, axis *v3.Matrix, angle float64) (*v3.Matrix, error) {
	w, x, y, z, err := axisQuaternion(angle, axis)
	if err != nil {
		return nil, errDecorate(err, "RotateAbout")
	}
	//Rotation matrix from the unit quaternion, transposed so the row
	//vector multiplies it from the left.
	rt := v3.Dense2Matrix(mat.NewDense(3, 3, []float64{
		w*w + x*x - y*y - z*z, 2 * (x*y + w*z), 2 * (x*z - w*y),
		2 * (x*y - w*z), w*w - x*x + y*y - z*z, 2 * (y*z + w*x),
		2 * (x*z + w*y), 2 * (y*z - w*x), w*w - x*x - y*y + z*z,
	}))
	ret := v3.Zeros(1)
	ret.Mul(vec, rt)
	norm := ret.Norm(2)
	if norm <= appzero {
		return nil, CError{"Rotated a zero vector", GeometryDegenerate, []string{"RotateAbout"}}
	}
	ret.Scale(1/norm, ret)
	return ret, nil
}
