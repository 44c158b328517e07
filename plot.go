/*
 * plot.go, part of buildh.
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
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//opPoints couples the profile points with their error bars, as the
//error bar plotter wants both behind one value.
type opPoints struct {
	plotter.XYs
	plotter.YErrors
}

//OPProfile plots the order parameter of every defined bond, in definition
//order, with the standard error of the mean as error bars, and saves the
//figure to filename. The format is taken from the extension (png, pdf, svg
//and the other formats gonum/plot supports).
func OPProfile(acc *Accumulator, title, filename string) error {
	bonds := acc.Def().Bonds
	data := opPoints{
		XYs:     make(plotter.XYs, len(bonds)),
		YErrors: make(plotter.YErrors, len(bonds)),
	}
	labels := make([]string, len(bonds))
	for i := range bonds {
		st, err := acc.Stats(i)
		if err != nil {
			return errDecorate(err, "OPProfile")
		}
		data.XYs[i].X = float64(i)
		data.XYs[i].Y = st.Mean
		data.YErrors[i].Low = st.Stem
		data.YErrors[i].High = st.Stem
		labels[i] = bonds[i].Label
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "C-H bond"
	p.Y.Label.Text = "S_CH"
	p.NominalX(labels...)
	line, points, err := plotter.NewLinePoints(data.XYs)
	if err != nil {
		return CError{err.Error(), NoKind, []string{"OPProfile"}}
	}
	bars, err := plotter.NewYErrorBars(data)
	if err != nil {
		return CError{err.Error(), NoKind, []string{"OPProfile"}}
	}
	p.Add(line, points, bars)
	if err := p.Save(10*vg.Inch, 4*vg.Inch, filename); err != nil {
		return CError{err.Error(), NoKind, []string{"OPProfile"}}
	}
	return nil
}
