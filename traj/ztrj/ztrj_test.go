package ztrj

import (
	"math"
	"path/filepath"
	"testing"

	buildh "github.com/pierrepo/buildh"
	v3 "github.com/pierrepo/buildh/v3"
)

func writeTestTraj(Te *testing.T, name string, frames []*v3.Matrix, h *Header) {
	w, err := NewWriter(name, frames[0].NVecs(), h)
	if err != nil {
		Te.Fatal(err)
	}
	for _, f := range frames {
		if err := w.WNext(f); err != nil {
			Te.Fatal(err)
		}
	}
	w.Close()
}

func TestWriteRead(Te *testing.T) {
	for _, ext := range []string{".ztrj", ".gz", ".flate"} {
		name := filepath.Join(Te.TempDir(), "test"+ext)
		frames := []*v3.Matrix{
			v3.Vec(1.504, -2.25, 0),
			v3.Vec(1.6, -2.25, 0.001),
		}
		writeTestTraj(Te, name, frames, &Header{T0: 100, Dt: 10, Frames: 2, Prec: 3})
		r, h, err := New(name)
		if err != nil {
			Te.Fatal(err)
		}
		if h.T0 != 100 || h.Dt != 10 || h.Frames != 2 || h.Prec != 3 {
			Te.Fatalf("%s: header %+v", ext, h)
		}
		if r.Len() != 1 {
			Te.Fatalf("%s: %d atoms", ext, r.Len())
		}
		first, last, dt := r.TimeSpan()
		if first != 100 || last != 110 || dt != 10 {
			Te.Errorf("%s: time span %g %g %g", ext, first, last, dt)
		}
		got := v3.Zeros(1)
		for i, want := range frames {
			if err := r.Next(got); err != nil {
				Te.Fatalf("%s: frame %d: %v", ext, i, err)
			}
			for j := 0; j < 3; j++ {
				//three decimals survive the integer encoding
				if math.Abs(got.At(0, j)-want.At(0, j)) > 5e-4 {
					Te.Errorf("%s: frame %d coord %d: %f vs %f", ext, i, j, got.At(0, j), want.At(0, j))
				}
			}
		}
		err = r.Next(got)
		if err == nil {
			Te.Fatalf("%s: no termination after the last frame", ext)
		}
		if _, ok := err.(buildh.LastFrameError); !ok {
			Te.Errorf("%s: termination is a real error: %v", ext, err)
		}
		if r.Readable() {
			Te.Errorf("%s: still readable after the end", ext)
		}
	}
}

func TestSkippedFrames(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "skip.ztrj")
	frames := []*v3.Matrix{v3.Vec(1, 1, 1), v3.Vec(2, 2, 2), v3.Vec(3, 3, 3)}
	writeTestTraj(Te, name, frames, &Header{Dt: 1, Frames: 3})
	r, _, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	//nil discards a frame but still checks it
	if err := r.Next(nil); err != nil {
		Te.Fatal(err)
	}
	got := v3.Zeros(1)
	if err := r.Next(got); err != nil {
		Te.Fatal(err)
	}
	if math.Abs(got.At(0, 0)-2) > 1e-6 {
		Te.Errorf("Second frame reads %f", got.At(0, 0))
	}
}

func TestWrongAtomCount(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "bad.ztrj")
	w, err := NewWriter(name, 2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer w.Close()
	if err := w.WNext(v3.Vec(1, 1, 1)); err == nil {
		Te.Error("A one-atom frame was accepted by a two-atom writer")
	}
}
