package identity

import "testing"

func TestKeyFormat(t *testing.T) {
	id := AssetIdentity{BaseUID: "k3x9b2m7q", Variant: "AB", Version: 7}
	key := id.Key()
	if len(key) != KeyLength {
		t.Fatalf("key length = %d, want %d", len(key), KeyLength)
	}
	if key != "k3x9b2m7qAB007" {
		t.Fatalf("key = %q", key)
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	id := AssetIdentity{BaseUID: "a1b2c3d4e", Variant: "ZQ", Version: 123}
	parsed, err := ParseKey(id.Key())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != id {
		t.Fatalf("parsed = %+v, want %+v", parsed, id)
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"short",
		"a1b2c3d4eaa001", // lowercase variant
		"a1b2c3d4eAAx01", // non-numeric version
		"a1b2c3d4eAA000", // version zero
		"a-b2c3d4eAA001", // non-alnum uid
	}
	for _, key := range cases {
		if _, err := ParseKey(key); err == nil {
			t.Fatalf("expected parse failure for %q", key)
		}
	}
}

func TestNextVariant(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"AA", "AB", true},
		{"AZ", "BA", true},
		{"ZY", "ZZ", true},
		{"ZZ", "", false},
		{"a1", "", false},
	}
	for _, tc := range cases {
		got, ok := NextVariant(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("NextVariant(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFolderName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"old oak table", "OldOakTable"},
		{"brick_wall-02", "BrickWall02"},
		{"   ", "Asset"},
		{"Chair", "Chair"},
	}
	for _, tc := range cases {
		if got := FolderName(tc.in); got != tc.want {
			t.Fatalf("FolderName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("  old   oak table "); got != "Old Oak Table" {
		t.Fatalf("DisplayName = %q", got)
	}
}
