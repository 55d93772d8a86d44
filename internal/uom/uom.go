// Package uom translates between internal unit-of-measure and tax
// enumerations and their user-facing and SAT (tax authority) forms.
package uom

import (
	"fmt"
	"strings"
)

// Unit is the internal unit-of-measure enumeration.
type Unit string

const (
	KG    Unit = "KG"
	Piece Unit = "PIECE"
	Pack  Unit = "PACK"
	Dozen Unit = "DOZEN"
	Dome  Unit = "DOME"
	Liter Unit = "LITER"
	Gram  Unit = "GRAM"
	Box   Unit = "BOX"
)

type unitInfo struct {
	label   string
	sat     string
	integer bool
	aliases []string
}

var units = map[Unit]unitInfo{
	KG:    {label: "Kg", sat: "KGM", aliases: []string{"kg", "kgs", "kilo", "kilos", "kilogramo", "kilogramos", "kilogram"}},
	Piece: {label: "Pieza", sat: "H87", integer: true, aliases: []string{"pieza", "piezas", "pza", "pz", "piece", "pieces"}},
	Pack:  {label: "Paquete", sat: "XPK", integer: true, aliases: []string{"paquete", "paquetes", "paq", "pack", "package"}},
	Dozen: {label: "Docena", sat: "DZN", integer: true, aliases: []string{"docena", "docenas", "dozen"}},
	Dome:  {label: "Domo", sat: "XDM", integer: true, aliases: []string{"domo", "domos", "dome"}},
	Liter: {label: "Litro", sat: "LTR", aliases: []string{"litro", "litros", "lt", "l", "liter", "litre"}},
	Gram:  {label: "Gramo", sat: "GRM", aliases: []string{"gramo", "gramos", "gr", "g", "gram"}},
	Box:   {label: "Caja", sat: "XBX", aliases: []string{"caja", "cajas", "box"}},
}

// order fixes the enumeration order used in messages.
var order = []Unit{KG, Piece, Pack, Dozen, Dome, Liter, Gram, Box}

var (
	byAlias = map[string]Unit{}
	bySAT   = map[string]Unit{}
)

func init() {
	for u, info := range units {
		byAlias[strings.ToLower(string(u))] = u
		byAlias[strings.ToLower(info.label)] = u
		for _, a := range info.aliases {
			byAlias[a] = u
		}
		bySAT[info.sat] = u
	}
}

// Parse decodes user text into a Unit. Matching is case-insensitive and
// accepts the internal code, the label and the known aliases.
func Parse(s string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := byAlias[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unidad %q no válida, valores aceptados: %s", s, strings.Join(Accepted(), ", "))
}

// Accepted lists the user-facing values Parse accepts, one per unit.
func Accepted() []string {
	out := make([]string, 0, len(order))
	for _, u := range order {
		out = append(out, units[u].aliases[0])
	}
	return out
}

// FromSATCode maps a SAT "clave de unidad" back to a Unit.
func FromSATCode(code string) (Unit, error) {
	if u, ok := bySAT[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return u, nil
	}
	return "", fmt.Errorf("clave de unidad SAT %q no reconocida", code)
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	_, ok := units[u]
	return ok
}

func (u Unit) String() string { return string(u) }

// Label returns the user-facing name.
func (u Unit) Label() string { return units[u].label }

// SATCode returns the tax authority unit key.
func (u Unit) SATCode() string { return units[u].sat }

// IsInteger reports whether quantities in this unit must be whole numbers.
func (u Unit) IsInteger() bool { return units[u].integer }
