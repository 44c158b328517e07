/*
 * doc.go, part of buildh.
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

/*Package buildh reconstructs hydrogen atoms on united-atom lipid trajectories
and calculates the deuterium order parameter of each rebuilt C-H bond.


	**buildh Capabilities**

    Rebuilds 1 to 3 hydrogens around a carbon from the positions of 2 or 3
	neighboring heavy atoms, by closed-form geometric constructions
	(CH, CH2, CH3 and sp2 CH), using quaternion-based rotations.

    Calculates the order parameter of every rebuilt C-H bond against the
	bilayer normal (the z axis), accumulated per residue and per frame.

    Averages the order parameter first over the frames of each residue, then
	over residues, and reports mean, standard deviation and standard error
	of the mean for each bond of an order parameter definition table.

    Works in two modes: a trajectory-materializing mode which also emits
	the full reconstructed system (all heavy atoms plus the new hydrogens)
	frame by frame for serialization, and a faster statistics-only mode
	which uses precomputed per-residue index templates.

    Reads/writes PDB files, reads and writes ztrj compressed trajectories,
	and loads reconstruction recipes for additional lipids from YAML files.

    Plots the per-carbon order parameter profile.


buildh uses its own matrix type for coordinates, v3.Matrix, based on
gonum.org/v1/gonum/mat. Each row of a v3.Matrix represents one point in
space.*/
package buildh
