/*
 * recipe.go, part of buildh.
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
	"strings"

	"gopkg.in/yaml.v3"
)

//Kind classifies a united carbon by the hydrogens it must regrow.
type Kind int

const (
	//CH is a methine carbon: one hydrogen, three heavy neighbors.
	CH Kind = iota + 1
	//CH2 is a methylene carbon: two hydrogens, two heavy neighbors.
	CH2
	//CH3 is a terminal methyl carbon: three hydrogens, one heavy neighbor
	//plus the next atom down the chain as second helper.
	CH3
	//CHDouble is an sp2 carbon of a C=C bond: one in-plane hydrogen.
	CHDouble
)

//kindNames are the spellings used in recipe files.
var kindNames = map[string]Kind{
	"CH":           CH,
	"CH2":          CH2,
	"CH3":          CH3,
	"CHdoublebond": CHDouble,
}

func (k Kind) String() string {
	for s, v := range kindNames {
		if v == k {
			return s
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

//NHydrogens returns the number of hydrogens the kind regrows.
func (k Kind) NHydrogens() int {
	switch k {
	case CH, CHDouble:
		return 1
	case CH2:
		return 2
	case CH3:
		return 3
	}
	return 0
}

//NHelpers returns the number of helper atoms the kind requires.
func (k Kind) NHelpers() int {
	if k == CH {
		return 3
	}
	return 2
}

//UnmarshalYAML reads a kind from its recipe file spelling.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	kind, ok := kindNames[s]
	if !ok {
		return CError{fmt.Sprintf("Unknown carbon type %q", s), NoKind, []string{"Kind.UnmarshalYAML"}}
	}
	*k = kind
	return nil
}

//MarshalYAML writes a kind in its recipe file spelling.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

//CarbonRecipe says how to rebuild the hydrogens of one carbon: what kind of
//carbon it is and which atoms of the same residue serve as helpers, in the
//order the geometric construction consumes them.
type CarbonRecipe struct {
	Kind    Kind     `yaml:"type"`
	Helpers []string `yaml:"helpers"`
}

//Recipe maps each reconstructable carbon name of one residue type to its
//CarbonRecipe. Iteration over carbons must be deterministic, so the names
//are kept in a separate ordered slice.
type Recipe struct {
	ResName string
	carbons []string
	rules   map[string]CarbonRecipe
}

//NewRecipe returns an empty recipe for the given residue name.
func NewRecipe(resname string) *Recipe {
	return &Recipe{ResName: resname, rules: make(map[string]CarbonRecipe)}
}

//Set adds or replaces the rule for one carbon, preserving insertion order.
func (R *Recipe) Set(carbon string, rule CarbonRecipe) {
	if _, ok := R.rules[carbon]; !ok {
		R.carbons = append(R.carbons, carbon)
	}
	R.rules[carbon] = rule
}

//Carbons returns the carbon names in insertion order.
func (R *Recipe) Carbons() []string {
	return R.carbons
}

//Rule returns the rule for the given carbon name, and whether one exists.
func (R *Recipe) Rule(carbon string) (CarbonRecipe, bool) {
	r, ok := R.rules[carbon]
	return r, ok
}

//Len returns the number of carbons in the recipe.
func (R *Recipe) Len() int {
	return len(R.carbons)
}

//Validate checks that every rule carries the helper count its kind needs.
func (R *Recipe) Validate() error {
	for _, name := range R.carbons {
		rule := R.rules[name]
		if _, ok := kindNames[rule.Kind.String()]; !ok {
			return CError{fmt.Sprintf("Carbon %s of %s has an unknown type", name, R.ResName), NoKind, []string{"Recipe.Validate"}}
		}
		if want := rule.Kind.NHelpers(); len(rule.Helpers) != want {
			return CError{fmt.Sprintf("Carbon %s of %s: type %s needs %d helpers, got %d", name, R.ResName, rule.Kind, want, len(rule.Helpers)), NoKind, []string{"Recipe.Validate"}}
		}
	}
	return nil
}

//HydrogenNames returns the names of the hydrogens rebuilt on the given
//carbon, in construction order. The leading "C" of the carbon name is
//replaced by "H" and a 1-based index is appended, so C18 of a CH3 carbon
//yields H181, H182 and H183.
func HydrogenNames(carbon string, k Kind) []string {
	stem := "H" + strings.TrimPrefix(carbon, "C")
	names := make([]string, k.NHydrogens())
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", stem, i+1)
	}
	return names
}

//yamlRecipe is the on-disk layout of a recipe file.
type yamlRecipe struct {
	ResName string    `yaml:"resname"`
	Carbons yaml.Node `yaml:"carbons"`
}

//ReadRecipe parses a recipe from YAML. The carbons mapping keeps its file
//order, so reports and output topologies come out in the order the user
//wrote. The recipe is validated before being returned.
func ReadRecipe(r io.Reader) (*Recipe, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, CError{err.Error(), NoKind, []string{"ReadRecipe"}}
	}
	var raw yamlRecipe
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, CError{err.Error(), NoKind, []string{"ReadRecipe"}}
	}
	if raw.ResName == "" {
		return nil, CError{"Recipe file lacks a resname field", NoKind, []string{"ReadRecipe"}}
	}
	ret := NewRecipe(raw.ResName)
	//a yaml.Node mapping alternates key and value nodes
	if raw.Carbons.Kind != yaml.MappingNode {
		return nil, CError{"Recipe file lacks a carbons mapping", NoKind, []string{"ReadRecipe"}}
	}
	for i := 0; i < len(raw.Carbons.Content); i += 2 {
		var name string
		if err := raw.Carbons.Content[i].Decode(&name); err != nil {
			return nil, CError{err.Error(), NoKind, []string{"ReadRecipe"}}
		}
		var rule CarbonRecipe
		if err := raw.Carbons.Content[i+1].Decode(&rule); err != nil {
			return nil, CError{err.Error(), NoKind, []string{"ReadRecipe"}}
		}
		ret.Set(name, rule)
	}
	if err := ret.Validate(); err != nil {
		return nil, errDecorate(err, "ReadRecipe")
	}
	return ret, nil
}

//ReadRecipeFile parses and validates a recipe from the named YAML file.
func ReadRecipeFile(name string) (*Recipe, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{err.Error(), NoKind, []string{"ReadRecipeFile"}}
	}
	defer f.Close()
	return ReadRecipe(f)
}

//BergerPOPC returns the builtin recipe for Berger united-atom POPC. The
//palmitoyl chain (C1x) is saturated; the oleoyl chain (C2x) carries the
//C29=C210 double bond. Glycerol and headgroup carbons are included too.
func BergerPOPC() *Recipe {
	R := NewRecipe("POPC")
	set := func(c string, k Kind, helpers ...string) {
		R.Set(c, CarbonRecipe{Kind: k, Helpers: helpers})
	}
	//choline
	set("C1", CH3, "N4", "C5")
	set("C2", CH3, "N4", "C5")
	set("C3", CH3, "N4", "C5")
	set("C5", CH2, "N4", "C6")
	set("C6", CH2, "C5", "O7")
	//glycerol
	set("C12", CH2, "C13", "O11")
	set("C13", CH, "C12", "C32", "O14")
	set("C32", CH2, "C13", "O33")
	//palmitoyl (sn-1)
	set("C36", CH2, "C35", "C37")
	set("C37", CH2, "C36", "C38")
	set("C38", CH2, "C37", "C39")
	set("C39", CH2, "C38", "C40")
	set("C40", CH2, "C39", "C41")
	set("C41", CH2, "C40", "C42")
	set("C42", CH2, "C41", "C43")
	set("C43", CH2, "C42", "C44")
	set("C44", CH2, "C43", "C45")
	set("C45", CH2, "C44", "C46")
	set("C46", CH2, "C45", "C47")
	set("C47", CH2, "C46", "C48")
	set("C48", CH2, "C47", "C49")
	set("C49", CH2, "C48", "C50")
	set("C50", CH3, "C49", "C48")
	//oleoyl (sn-2)
	set("C17", CH2, "C16", "C18")
	set("C18", CH2, "C17", "C19")
	set("C19", CH2, "C18", "C20")
	set("C20", CH2, "C19", "C21")
	set("C21", CH2, "C20", "C22")
	set("C22", CH2, "C21", "C23")
	set("C23", CH2, "C22", "C24")
	set("C24", CHDouble, "C25", "C23")
	set("C25", CHDouble, "C24", "C26")
	set("C26", CH2, "C25", "C27")
	set("C27", CH2, "C26", "C28")
	set("C28", CH2, "C27", "C29")
	set("C29", CH2, "C28", "C30")
	set("C30", CH2, "C29", "C31")
	set("C31", CH3, "C30", "C29")
	return R
}

//Recipes returns the builtin recipe table, keyed by lipid name.
func Recipes() map[string]*Recipe {
	return map[string]*Recipe{
		"POPC": BergerPOPC(),
	}
}

/***Order parameter definitions***/

//OPBond is one carbon-hydrogen bond whose order parameter is requested: a
//free-form label plus the residue, carbon and hydrogen names identifying it.
type OPBond struct {
	Label    string
	ResName  string
	Carbon   string
	Hydrogen string
}

//OPDef is an ordered list of requested bonds, as read from a definition
//file. Order matters: reports list bonds the way the file does.
type OPDef struct {
	Bonds []OPBond
}

//ReadOPDef parses an order parameter definition file: one bond per line,
//four whitespace-separated columns (label, residue name, carbon name,
//hydrogen name). Blank lines and lines starting with # are skipped.
func ReadOPDef(r io.Reader) (*OPDef, error) {
	ret := new(OPDef)
	scanner := bufio.NewScanner(r)
	nline := 0
	for scanner.Scan() {
		nline++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, CError{fmt.Sprintf("Line %d: expected 4 columns, got %d", nline, len(fields)), NoKind, []string{"ReadOPDef"}}
		}
		ret.Bonds = append(ret.Bonds, OPBond{Label: fields[0], ResName: fields[1], Carbon: fields[2], Hydrogen: fields[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{err.Error(), NoKind, []string{"ReadOPDef"}}
	}
	if len(ret.Bonds) == 0 {
		return nil, CError{"Definition file contains no bonds", NoKind, []string{"ReadOPDef"}}
	}
	return ret, nil
}

//ReadOPDefFile parses an order parameter definition from the named file.
func ReadOPDefFile(name string) (*OPDef, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{err.Error(), NoKind, []string{"ReadOPDefFile"}}
	}
	defer f.Close()
	return ReadOPDef(f)
}

//Covers checks that the definition requests every hydrogen of every carbon
//the recipe rebuilds. Writing a trajectory with reconstructed hydrogens
//requires full coverage, otherwise some rebuilt atoms would be silently
//meaningless to the user. It returns an IncompleteRecipe error naming the
//number of missing bonds and the first few of them.
func (D *OPDef) Covers(R *Recipe) error {
	have := make(map[[2]string]bool)
	for _, b := range D.Bonds {
		have[[2]string{b.Carbon, b.Hydrogen}] = true
	}
	var missing []string
	for _, c := range R.Carbons() {
		rule, _ := R.Rule(c)
		for _, h := range HydrogenNames(c, rule.Kind) {
			if !have[[2]string{c, h}] {
				missing = append(missing, c+"-"+h)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	shown := missing
	if len(shown) > 5 {
		shown = shown[:5]
	}
	return CError{fmt.Sprintf("Definition covers too few bonds: %d missing (e.g. %s)", len(missing), strings.Join(shown, ", ")), IncompleteRecipe, []string{"OPDef.Covers"}}
}
