// Package molparse parses connection-table ("molfile", V2000) text into an
// in-memory molecular graph: atoms as nodes, bonds as edges.
//
// Recoverable irregularities in the input (missing M END terminator, unknown
// property lines, charge entries pointing at unknown atoms) are reported
// through a process-global, swappable logger rather than returned inline,
// matching the logging model of the C++-backed toolkits this package stands
// in for. Callers that need per-parse diagnostics install a capturing logger
// via SetLogger; see search.CaptureParser.
package molparse

import (
	"fmt"
	"sort"
	"strings"
)

// Atom is one node of the molecular graph.
type Atom struct {
	Symbol  string
	X, Y, Z float64
	Charge  int
}

// Bond is one edge of the molecular graph. From and To are zero-based atom
// indices; Order is the bond order as encoded in the connection table
// (1 single, 2 double, 3 triple, 4 aromatic).
type Bond struct {
	From, To int
	Order    int
}

// Molecule is a parsed connection table.
type Molecule struct {
	Name  string
	Atoms []Atom
	Bonds []Bond
}

// NumAtoms returns the number of atoms.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumBonds returns the number of bonds.
func (m *Molecule) NumBonds() int { return len(m.Bonds) }

// Formula returns the explicit-atom molecular formula in Hill order (carbon,
// then hydrogen, then the remaining elements alphabetically). Implicit
// hydrogens are not modeled, so the formula covers only atoms present in the
// connection table.
func (m *Molecule) Formula() string {
	counts := map[string]int{}
	for _, a := range m.Atoms {
		counts[a.Symbol]++
	}

	var rest []string
	for sym := range counts {
		if sym != "C" && sym != "H" {
			rest = append(rest, sym)
		}
	}
	sort.Strings(rest)

	var b strings.Builder
	write := func(sym string) {
		n := counts[sym]
		if n == 0 {
			return
		}
		b.WriteString(sym)
		if n > 1 {
			fmt.Fprintf(&b, "%d", n)
		}
	}
	write("C")
	write("H")
	for _, sym := range rest {
		write(sym)
	}
	return b.String()
}

// String renders a compact one-line summary, e.g. "C6H6 atoms=12 bonds=12".
func (m *Molecule) String() string {
	return fmt.Sprintf("%s atoms=%d bonds=%d", m.Formula(), len(m.Atoms), len(m.Bonds))
}
