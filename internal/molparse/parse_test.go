package molparse

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const benzeneCT = `benzene
  chemsearch

  6  6  0  0  0  0  0  0  0  0999 V2000
    0.0000    1.3860    0.0000 C   0  0
    1.2003    0.6930    0.0000 C   0  0
    1.2003   -0.6930    0.0000 C   0  0
    0.0000   -1.3860    0.0000 C   0  0
   -1.2003   -0.6930    0.0000 C   0  0
   -1.2003    0.6930    0.0000 C   0  0
  1  2  2  0
  2  3  1  0
  3  4  2  0
  4  5  1  0
  5  6  2  0
  6  1  1  0
M  END
`

// withObservedLogger installs an observer core as the package logger for the
// duration of one test and returns the captured logs.
func withObservedLogger(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	prev := SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

// TestParse_Benzene verifies a clean connection table parses without warnings
// and yields the expected graph.
func TestParse_Benzene(t *testing.T) {
	logs := withObservedLogger(t)

	mol, err := Parse(benzeneCT)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if mol.Name != "benzene" {
		t.Errorf("Name = %q, want benzene", mol.Name)
	}
	if mol.NumAtoms() != 6 || mol.NumBonds() != 6 {
		t.Fatalf("graph = %d atoms / %d bonds, want 6/6", mol.NumAtoms(), mol.NumBonds())
	}
	if got := mol.Formula(); got != "C6" {
		t.Errorf("Formula = %q, want C6", got)
	}
	if b := mol.Bonds[0]; b.From != 0 || b.To != 1 || b.Order != 2 {
		t.Errorf("Bonds[0] = %+v, want 1-2 double (zero-based)", b)
	}
	if n := logs.Len(); n != 0 {
		t.Errorf("unexpected warnings: %v", logs.All())
	}
}

// TestParse_ChargeProperty verifies M  CHG entries override atom charges.
func TestParse_ChargeProperty(t *testing.T) {
	ct := `acetate


  4  3  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
    1.0000    0.0000    0.0000 C   0  0
    2.0000    1.0000    0.0000 O   0  0
    2.0000   -1.0000    0.0000 O   0  0
  1  2  1  0
  2  3  2  0
  2  4  1  0
M  CHG  1   4  -1
M  END
`
	mol, err := Parse(ct)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := mol.Atoms[3].Charge; got != -1 {
		t.Errorf("Atoms[3].Charge = %d, want -1", got)
	}
	if got := mol.Formula(); got != "C2O2" {
		t.Errorf("Formula = %q, want C2O2", got)
	}
}

// TestParse_MissingEndWarns verifies a block without M  END still parses but
// reports a warning through the package logger.
func TestParse_MissingEndWarns(t *testing.T) {
	logs := withObservedLogger(t)

	ct := strings.Replace(benzeneCT, "M  END\n", "", 1)
	mol, err := Parse(ct)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if mol.NumAtoms() != 6 {
		t.Fatalf("atoms = %d, want 6", mol.NumAtoms())
	}
	if logs.FilterMessageSnippet("not terminated").Len() == 0 {
		t.Fatalf("expected missing-M END warning, got %v", logs.All())
	}
}

// TestParse_HardFailures covers inputs that must return an error, not a
// molecule.
func TestParse_HardFailures(t *testing.T) {
	cases := []struct {
		name string
		ct   string
	}{
		{"empty", ""},
		{"not a molblock", "COMAS-12345\nplain text\n"},
		{"bad counts", "x\n\n\nnot a counts line\n"},
		{"truncated atoms", "x\n\n\n  3  0  0  0  0  0  0  0  0  0999 V2000\n    0.0 0.0 0.0 C\n"},
		{"bond out of range", `x


  1  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0
  1  9  1  0
M  END
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mol, err := Parse(tc.ct)
			if err == nil {
				t.Fatalf("expected error, got molecule %v", mol)
			}
			if mol != nil {
				t.Fatalf("molecule must be nil on failure")
			}
		})
	}
}
