package eval

import "testing"

// TestFuzzAgainstReferenceFindsNoMismatch drives FuzzAgainstReference, the
// differential-testing harness spec.md §1/§8 designates as the primary
// basis for functional-correctness validation, over a modest number of
// random single-block messages against the synthesized circuit.
func TestFuzzAgainstReferenceFindsNoMismatch(t *testing.T) {
	g := buildCircuit(t)

	report, err := FuzzAgainstReference(g, FuzzConfig{Trials: 200, Workers: 4})
	if err != nil {
		t.Fatalf("FuzzAgainstReference: %v", err)
	}
	if report.Trials < 200 {
		t.Fatalf("expected at least 200 trials to run, got %d", report.Trials)
	}
	if report.Mismatch != nil {
		t.Fatalf("circuit disagreed with the reference: message=%x got=%s want=%s",
			report.Mismatch.Message, report.Mismatch.Got, report.Mismatch.Want)
	}
}
