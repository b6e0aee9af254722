package seqprofile

import (
	"bytes"
	"testing"
)

func TestAnalyzeEmpty(t *testing.T) {
	p := Analyze(nil)
	if p.Kind != Generic {
		t.Fatalf("empty input: got %v, want Generic", p.Kind)
	}
}

func TestAnalyzeBaseCalls(t *testing.T) {
	data := bytes.Repeat([]byte("ACGTACGTNACGTACGTACGT"), 50)
	p := Analyze(data)
	if p.Kind != BaseCalls {
		t.Fatalf("got %v, want BaseCalls (profile=%+v)", p.Kind, p)
	}
	if p.SuggestedOrder != 1 {
		t.Fatalf("base calls: suggested order %d, want 1", p.SuggestedOrder)
	}
}

func TestAnalyzeQualityScores(t *testing.T) {
	// A narrow, Phred+33-ish band clustered around 'I' (73), as a real
	// instrument's quality line would look.
	line := []byte("IIIHIIIGIIIHIIIIJIIHIIIIGIIIHIIII")
	data := bytes.Repeat(line, 50)
	p := Analyze(data)
	if p.Kind != QualityScores {
		t.Fatalf("got %v, want QualityScores (profile=%+v)", p.Kind, p)
	}
	if p.SuggestedOrder != 1 {
		t.Fatalf("quality scores: suggested order %d, want 1", p.SuggestedOrder)
	}
}

func TestAnalyzeGeneric(t *testing.T) {
	data := []byte("SRR062634.1 HWI-EAS110:1:1:1:1000 length=36\n")
	data = bytes.Repeat(data, 20)
	p := Analyze(data)
	if p.Kind != Generic {
		t.Fatalf("got %v, want Generic (profile=%+v)", p.Kind, p)
	}
	if p.SuggestedOrder != 0 {
		t.Fatalf("generic: suggested order %d, want 0", p.SuggestedOrder)
	}
}

func TestAnalyzeCapsSampleSize(t *testing.T) {
	big := bytes.Repeat([]byte("ACGT"), 100000) // far larger than sampleCap
	p := Analyze(big)
	if p.Kind != BaseCalls {
		t.Fatalf("got %v, want BaseCalls on large input", p.Kind)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Generic:       "generic",
		BaseCalls:     "base-calls",
		QualityScores: "quality-scores",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
