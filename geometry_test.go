/*
 * geometry_test.go, part of buildh.
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

const testTol = 1e-9

func TestValenceAngle(Te *testing.T) {
	at := v3.Vec(0, 0, 0)
	a := v3.Vec(1, 0, 0)
	b := v3.Vec(0, 1, 0)
	ang, err := ValenceAngle(a, at, b)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(ang-math.Pi/2) > testTol {
		Te.Errorf("Right angle came out as %f rad", ang)
	}
	//colinear, the arccos argument sits right at the domain edge
	ang, err = ValenceAngle(a, at, v3.Vec(2, 0, 0))
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(ang) > testTol {
		Te.Errorf("Zero angle came out as %f rad", ang)
	}
}

func TestRotateAbout(Te *testing.T) {
	x := v3.Vec(1, 0, 0)
	z := v3.Vec(0, 0, 3) //length must not matter
	r, err := RotateAbout(x, z, math.Pi/2)
	if err != nil {
		Te.Fatal(err)
	}
	//right hand rule: x rotated 90 degrees about z lands on y
	if math.Abs(r.At(0, 0)) > testTol || math.Abs(r.At(0, 1)-1) > testTol || math.Abs(r.At(0, 2)) > testTol {
		Te.Errorf("Got %v, wanted the y unit vector", r)
	}
	//the result is always normalized, whatever the input length
	long := v3.Vec(0, 5, 0)
	r, err = RotateAbout(long, z, math.Pi)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(r.Norm(2)-1) > testTol {
		Te.Errorf("Rotated vector not normalized: norm %f", r.Norm(2))
	}
	if math.Abs(r.At(0, 1)+1) > testTol {
		Te.Errorf("Got %v, wanted -y", r)
	}
}

func TestRotateAboutRoundTrip(Te *testing.T) {
	v := v3.Vec(0.3, -0.7, 0.648)
	v.Scale(1/v.Norm(2), v)
	axis := v3.Vec(1, 2, -0.5)
	fwd, err := RotateAbout(v, axis, 0.83)
	if err != nil {
		Te.Fatal(err)
	}
	back, err := RotateAbout(fwd, axis, -0.83)
	if err != nil {
		Te.Fatal(err)
	}
	for j := 0; j < 3; j++ {
		if math.Abs(back.At(0, j)-v.At(0, j)) > testTol {
			Te.Fatalf("Round trip drifted: %v vs %v", back, v)
		}
	}
}

func TestRotateAboutDegenerate(Te *testing.T) {
	x := v3.Vec(1, 0, 0)
	zero := v3.Vec(0, 0, 0)
	_, err := RotateAbout(x, zero, math.Pi/2)
	if err == nil {
		Te.Fatal("Rotation about the zero vector did not fail")
	}
	if !IsKind(err, GeometryDegenerate) {
		Te.Errorf("Wrong error kind: %v", err)
	}
}
