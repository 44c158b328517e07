/*
 * pdb.go, part of buildh.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/pierrepo/buildh/v3"
)

//read_pdb_line parses one ATOM/HETATM record. PDB is a fixed-column format,
//so this is all substring slicing; short lines (no element column) are
//tolerated.
func read_pdb_line(line string) (*Atom, float64, float64, float64, error) {
	if len(line) < 54 {
		return nil, 0, 0, 0, CError{fmt.Sprintf("Malformed ATOM record, too short: %q", line), NoKind, []string{"read_pdb_line"}}
	}
	at := new(Atom)
	var err error
	at.ID, err = strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return nil, 0, 0, 0, CError{err.Error(), NoKind, []string{"read_pdb_line"}}
	}
	at.Name = strings.TrimSpace(line[12:16])
	at.MolName = strings.TrimSpace(line[17:21])
	at.Chain = strings.TrimSpace(line[21:22])
	at.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, 0, 0, 0, CError{err.Error(), NoKind, []string{"read_pdb_line"}}
	}
	var coords [3]float64
	for i := 0; i < 3; i++ {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return nil, 0, 0, 0, CError{err.Error(), NoKind, []string{"read_pdb_line"}}
		}
	}
	if len(line) >= 78 {
		at.Symbol = strings.TrimSpace(line[76:78])
	}
	if at.Symbol == "" && at.Name != "" {
		//first letter of the name, the united-atom convention here never
		//uses two-letter elements
		at.Symbol = at.Name[:1]
	}
	return at, coords[0], coords[1], coords[2], nil
}

//PDBRead reads a molecule from PDB-formatted text. MODEL/ENDMDL records
//separate frames; the topology is taken from the first frame and later
//frames must match its atom count. PDB carries no time information, so the
//returned molecule reports frame times of 0, 1, 2... ps.
func PDBRead(r io.Reader) (*Molecule, error) {
	var atoms []*Atom
	var frames []*v3.Matrix
	var cur []float64
	firstFrame := true
	push := func() error {
		if cur == nil {
			return nil
		}
		frame, err := v3.NewMatrix(cur)
		if err != nil {
			return errDecorate(err, "PDBRead")
		}
		frames = append(frames, frame)
		cur = nil
		firstFrame = false
		return nil
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}
		switch strings.TrimSpace(line[0:6]) {
		case "ATOM", "HETATM":
			at, x, y, z, err := read_pdb_line(line)
			if err != nil {
				return nil, errDecorate(err, "PDBRead")
			}
			if firstFrame {
				atoms = append(atoms, at)
			}
			cur = append(cur, x, y, z)
		case "ENDMDL":
			if err := push(); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{err.Error(), NoKind, []string{"PDBRead"}}
	}
	if err := push(); err != nil {
		return nil, err
	}
	if len(atoms) == 0 {
		return nil, CError{"No ATOM records found", NoKind, []string{"PDBRead"}}
	}
	top, err := NewTopology(atoms)
	if err != nil {
		return nil, errDecorate(err, "PDBRead")
	}
	return NewMolecule(top, frames, 0, 1)
}

//PDBFileRead reads a molecule from the named PDB file.
func PDBFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{err.Error(), NoKind, []string{"PDBFileRead"}}
	}
	defer f.Close()
	mol, err := PDBRead(f)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead: "+name)
	}
	return mol, nil
}

//pdbName pads an atom name the PDB way: names shorter than 4 characters
//get a leading space so the element lines up in column 14.
func pdbName(name string) string {
	if len(name) < 4 {
		return " " + name
	}
	return name
}

//PDBWrite writes one frame of a topology as PDB-formatted text. Occupancy
//and B-factor carry no information for reconstructed systems and are
//written as 1.00 and 0.00.
func PDBWrite(w io.Writer, top *Topology, coords *v3.Matrix) error {
	if top.Len() != coords.NVecs() {
		return CError{fmt.Sprintf("Inconsistent atoms (%d) and coordinates (%d)", top.Len(), coords.NVecs()), NoKind, []string{"PDBWrite"}}
	}
	for i := 0; i < top.Len(); i++ {
		at := top.Atom(i)
		_, err := fmt.Fprintf(w, "ATOM  %5d %-4s %-4s%1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
			at.ID, pdbName(at.Name), at.MolName, at.Chain, at.MolID,
			coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), 1.0, 0.0, at.Symbol)
		if err != nil {
			return CError{err.Error(), NoKind, []string{"PDBWrite"}}
		}
	}
	_, err := fmt.Fprintln(w, "END")
	if err != nil {
		return CError{err.Error(), NoKind, []string{"PDBWrite"}}
	}
	return nil
}

//PDBFileWrite writes one frame of a topology to the named file.
func PDBFileWrite(name string, top *Topology, coords *v3.Matrix) error {
	f, err := os.Create(name)
	if err != nil {
		return CError{err.Error(), NoKind, []string{"PDBFileWrite"}}
	}
	defer f.Close()
	return PDBWrite(f, top, coords)
}
