package molparse

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Parse reads a V2000 connection table and returns the molecular graph.
//
// A nil Molecule with a non-nil error is returned for structurally unusable
// input (truncated block, unreadable counts line, malformed atom or bond
// line, bond referencing a nonexistent atom). Recoverable issues yield a
// valid Molecule and a warning on the package logger.
func Parse(text string) (*Molecule, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 4 {
		return nil, fmt.Errorf("molparse: connection table truncated: %d lines", len(lines))
	}

	mol := &Molecule{Name: strings.TrimSpace(lines[0])}

	counts := lines[3]
	nAtoms, nBonds, err := parseCounts(counts)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(counts, "V2000") {
		warnLogger().Warn("counts line missing V2000 version tag",
			zap.String("counts", strings.TrimSpace(counts)))
	}

	atomEnd := 4 + nAtoms
	bondEnd := atomEnd + nBonds
	if len(lines) < bondEnd {
		return nil, fmt.Errorf("molparse: counts declare %d atoms and %d bonds but block has %d lines",
			nAtoms, nBonds, len(lines))
	}

	mol.Atoms = make([]Atom, 0, nAtoms)
	for i := 4; i < atomEnd; i++ {
		a, err := parseAtomLine(lines[i])
		if err != nil {
			return nil, fmt.Errorf("molparse: atom %d: %w", i-4+1, err)
		}
		mol.Atoms = append(mol.Atoms, a)
	}

	mol.Bonds = make([]Bond, 0, nBonds)
	for i := atomEnd; i < bondEnd; i++ {
		b, err := parseBondLine(lines[i])
		if err != nil {
			return nil, fmt.Errorf("molparse: bond %d: %w", i-atomEnd+1, err)
		}
		if b.From < 0 || b.From >= nAtoms || b.To < 0 || b.To >= nAtoms {
			return nil, fmt.Errorf("molparse: bond %d references atom outside 1..%d", i-atomEnd+1, nAtoms)
		}
		mol.Bonds = append(mol.Bonds, b)
	}

	if err := parseProperties(mol, lines[bondEnd:]); err != nil {
		return nil, err
	}
	return mol, nil
}

// parseCounts reads the fixed-width atom and bond counts ("aaabbb...").
// Blocks written by whitespace-happy exporters are accepted via a field-split
// fallback.
func parseCounts(line string) (atoms, bonds int, err error) {
	if len(line) >= 6 {
		a, errA := strconv.Atoi(strings.TrimSpace(line[0:3]))
		b, errB := strconv.Atoi(strings.TrimSpace(line[3:6]))
		if errA == nil && errB == nil {
			return a, b, nil
		}
	}
	f := strings.Fields(line)
	if len(f) >= 2 {
		a, errA := strconv.Atoi(f[0])
		b, errB := strconv.Atoi(f[1])
		if errA == nil && errB == nil {
			return a, b, nil
		}
	}
	return 0, 0, fmt.Errorf("molparse: unreadable counts line %q", strings.TrimSpace(line))
}

func parseAtomLine(line string) (Atom, error) {
	f := strings.Fields(line)
	if len(f) < 4 {
		return Atom{}, fmt.Errorf("short atom line %q", strings.TrimSpace(line))
	}
	x, errX := strconv.ParseFloat(f[0], 64)
	y, errY := strconv.ParseFloat(f[1], 64)
	z, errZ := strconv.ParseFloat(f[2], 64)
	if errX != nil || errY != nil || errZ != nil {
		return Atom{}, fmt.Errorf("unreadable coordinates in %q", strings.TrimSpace(line))
	}
	sym := f[3]
	if sym == "" || len(sym) > 3 {
		return Atom{}, fmt.Errorf("bad element symbol %q", sym)
	}
	a := Atom{Symbol: sym, X: x, Y: y, Z: z}

	// Legacy charge column (field 6 in the atom block). Nonzero values are
	// superseded by M  CHG but old writers still emit them.
	if len(f) >= 6 {
		if cc, err := strconv.Atoi(f[5]); err == nil && cc != 0 {
			warnLogger().Warn("deprecated atom-block charge code present",
				zap.String("symbol", sym), zap.Int("code", cc))
			// 4 means doublet radical, otherwise charge = 4 - code.
			if cc != 4 {
				a.Charge = 4 - cc
			}
		}
	}
	return a, nil
}

func parseBondLine(line string) (Bond, error) {
	f := strings.Fields(line)
	if len(f) < 3 {
		return Bond{}, fmt.Errorf("short bond line %q", strings.TrimSpace(line))
	}
	from, errF := strconv.Atoi(f[0])
	to, errT := strconv.Atoi(f[1])
	order, errO := strconv.Atoi(f[2])
	if errF != nil || errT != nil || errO != nil {
		return Bond{}, fmt.Errorf("unreadable bond line %q", strings.TrimSpace(line))
	}
	if order < 1 || order > 4 {
		warnLogger().Warn("unusual bond order", zap.Int("order", order))
	}
	return Bond{From: from - 1, To: to - 1, Order: order}, nil
}

// parseProperties consumes the property block following the bonds. Only
// M  CHG is interpreted; other property lines are skipped with a warning.
// A missing M  END terminator is tolerated but reported.
func parseProperties(mol *Molecule, lines []string) error {
	terminated := false
	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		switch {
		case line == "" || terminated:
			continue
		case strings.HasPrefix(line, "M  END"):
			terminated = true
		case strings.HasPrefix(line, "M  CHG"):
			if err := applyChargeLine(mol, line); err != nil {
				return err
			}
		case strings.HasPrefix(line, "M  "):
			warnLogger().Warn("skipping unsupported property line",
				zap.String("line", strings.TrimSpace(line)))
		default:
			// Data (SDF $$$$ etc.) or garbage past the table; ignore.
		}
	}
	if !terminated {
		warnLogger().Warn("connection table not terminated by M  END",
			zap.String("name", mol.Name))
	}
	return nil
}

// applyChargeLine reads "M  CHG nn8 aaa vvv ..." pairs. A pair naming an
// unknown atom is reported and skipped; the remaining pairs still apply.
func applyChargeLine(mol *Molecule, line string) error {
	f := strings.Fields(line)
	if len(f) < 3 {
		return fmt.Errorf("molparse: malformed charge line %q", line)
	}
	n, err := strconv.Atoi(f[2])
	if err != nil || len(f) != 3+2*n {
		return fmt.Errorf("molparse: malformed charge line %q", line)
	}
	for i := 0; i < n; i++ {
		idx, errI := strconv.Atoi(f[3+2*i])
		chg, errC := strconv.Atoi(f[4+2*i])
		if errI != nil || errC != nil {
			return fmt.Errorf("molparse: malformed charge line %q", line)
		}
		if idx < 1 || idx > len(mol.Atoms) {
			warnLogger().Warn("charge entry references unknown atom",
				zap.Int("atom", idx), zap.Int("atoms", len(mol.Atoms)))
			continue
		}
		mol.Atoms[idx-1].Charge = chg
	}
	return nil
}
