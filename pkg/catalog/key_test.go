package catalog

import "testing"

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name   string
		f1, f2 string
		f3     string
		want   Key
	}{
		{
			name: "normalizes case and whitespace",
			f1:   "  Linen ", f2: "Blockout", f3: " CHARCOAL",
			want: Key("linen||blockout||charcoal"),
		},
		{
			name: "empty middle field",
			f1:   "Linen", f2: "", f3: "White",
			want: Key("linen||||white"),
		},
		{
			name: "all empty is degenerate",
			f1:   "", f2: " ", f3: "",
			want: Key("||||"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildKey(tt.f1, tt.f2, tt.f3); got != tt.want {
				t.Errorf("BuildKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyEquality(t *testing.T) {
	// Two variants differing only in case and padding are the same product.
	a := BuildKey("Linen", "Blockout", "Charcoal")
	b := BuildKey(" LINEN", "blockout ", " charcoal ")
	if a != b {
		t.Errorf("expected equal keys, got %q and %q", a, b)
	}
}

func TestKeyIsZero(t *testing.T) {
	if !BuildKey("", "", "").IsZero() {
		t.Error("expected all-empty key to be zero")
	}
	if BuildKey("Linen", "", "").IsZero() {
		t.Error("expected partially-filled key to be non-zero")
	}
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`="ROLL10001"`, "ROLL10001"},
		{"\uFEFFLinen", "Linen"},
		{"  Blockout \x1f", "Blockout"},
		{`plain`, "plain"},
	}

	for _, tt := range tests {
		if got := CleanValue(tt.in); got != tt.want {
			t.Errorf("CleanValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVariantIsBlank(t *testing.T) {
	blank := SupplyVariant{Category: "Roller"}
	if !blank.IsBlank() {
		t.Error("expected variant with empty descriptor fields to be blank")
	}

	v := SupplyVariant{Field1: "Linen"}
	if v.IsBlank() {
		t.Error("expected variant with a descriptor field to be non-blank")
	}
}
