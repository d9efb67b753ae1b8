package symbol

import "testing"

func TestParseDeterministic(t *testing.T) {
	inputs := []string{
		"NIFTY 28 NOV 2024 FUT",
		"BANKNIFTY 25000 CE 28NOV2024",
		"weird — symbol / 42",
		"",
	}
	for _, raw := range inputs {
		first := Parse(raw)
		second := Parse(raw)
		if first != second {
			t.Errorf("Parse(%q) not deterministic: %+v vs %+v", raw, first, second)
		}
	}
}

func TestEquivalentFormatsShareBaseKey(t *testing.T) {
	variants := []string{
		"NIFTY 28 NOV 2024 FUT",
		"NIFTY-NOV2024-FUT",
		"NIFTY NOV 2024",
	}
	want := "NIFTY-NOV2024"
	for _, raw := range variants {
		if got := Key(raw, KeyOptions{}); got != want {
			t.Errorf("Key(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestKeyIncludeKind(t *testing.T) {
	if got := Key("NIFTY NOV 2024 FUT", KeyOptions{IncludeKind: true}); got != "NIFTY-NOV2024-FUT" {
		t.Errorf("Key with kind = %q", got)
	}
	if got := Key("NIFTY 24000 CE NOV 2024", KeyOptions{IncludeKind: true}); got != "NIFTY24000-NOV2024-OPT" {
		t.Errorf("Key with kind = %q", got)
	}
}

func TestOptionClassification(t *testing.T) {
	p := Parse("BANKNIFTY 25000 CE 28NOV2024")
	if p.Kind != KindOption {
		t.Errorf("kind = %q, want OPT", p.Kind)
	}
	if p.Month != "NOV" || p.Year != "2024" {
		t.Errorf("expiry = %q %q", p.Month, p.Year)
	}

	if got := Parse("NIFTY NOV 2024 FUT").Kind; got != KindFuture {
		t.Errorf("kind = %q, want FUT", got)
	}
	// CELESTIAL contains CE as a prefix but is not a CE token.
	if got := Parse("CELESTIAL NOV 2024").Kind; got != KindFuture {
		t.Errorf("kind = %q, want FUT for non-flag token", got)
	}
}

func TestDetachedDayNotFoldedIntoUnderlying(t *testing.T) {
	p := Parse("RELIANCE 28 NOV 2024 FUT")
	if p.Underlying != "RELIANCE" {
		t.Errorf("underlying = %q, want RELIANCE", p.Underlying)
	}
	// A multi-digit strike is not a day token and stays in the underlying.
	p = Parse("BANKNIFTY 25000 CE 28NOV2024")
	if p.Underlying != "BANKNIFTY25000" {
		t.Errorf("underlying = %q, want BANKNIFTY25000", p.Underlying)
	}
}

func TestMonthVariantsNormalize(t *testing.T) {
	p := Parse("NIFTY 28 SEPT 2025 FUT")
	if p.Month != "SEP" || p.Year != "2025" {
		t.Errorf("expiry = %q %q, want SEP 2025", p.Month, p.Year)
	}
	p = Parse("NIFTY MARCH 2025")
	if p.Month != "MAR" || p.Year != "2025" {
		t.Errorf("expiry = %q %q, want MAR 2025", p.Month, p.Year)
	}
}

func TestUnparsedFallbackKey(t *testing.T) {
	p := Parse("PNB EQ")
	if p.Month != "" || p.Year != "" {
		t.Errorf("expected absent expiry, got %q %q", p.Month, p.Year)
	}
	if got := Key("PNB EQ", KeyOptions{}); got != "PNBEQ" {
		t.Errorf("fallback key = %q, want PNBEQ", got)
	}
	// Differently formatted unparsed symbols need not collide.
	if Key("PNB-EQ-110666", KeyOptions{}) != "PNBEQ110666" {
		t.Errorf("fallback key should be the sanitized literal")
	}
}

func TestNormalizationOfDashesAndSpaces(t *testing.T) {
	// em-dash and no-break space variants collapse to the same key
	if got := Key("NIFTY NOV—2024", KeyOptions{}); got != "NIFTY-NOV2024" {
		t.Errorf("Key = %q, want NIFTY-NOV2024", got)
	}
}

func TestEmptyAndWhitespaceInput(t *testing.T) {
	p := Parse("   ")
	if p.Underlying != "" || p.Month != "" || p.Year != "" || p.Kind != KindFuture {
		t.Errorf("Parse(blank) = %+v", p)
	}
	if got := Key("", KeyOptions{IncludeKind: true}); got != "-FUT" {
		t.Errorf("Key(empty, kind) = %q", got)
	}
}

func TestMonthCode(t *testing.T) {
	if !MonthCode("nov") || !MonthCode(" DEC ") {
		t.Error("expected valid month codes")
	}
	if MonthCode("NOVEMBER") || MonthCode("XYZ") {
		t.Error("expected invalid month codes to be rejected")
	}
}
