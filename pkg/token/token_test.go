package token

import "testing"

// TestGenerate tests random value generation.
func TestGenerate(t *testing.T) {
	t.Run("uniqueness", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			v, err := Generate()
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if seen[v] {
				t.Fatal("duplicate value generated")
			}
			seen[v] = true
		}
	})

	t.Run("length", func(t *testing.T) {
		v, err := GenerateWithLength(16)
		if err != nil {
			t.Fatalf("GenerateWithLength failed: %v", err)
		}
		// 16 bytes -> 22 chars Base64 RawURL
		if len(v) != 22 {
			t.Errorf("len = %d, want 22", len(v))
		}
	})
}

// TestEqual tests credential comparison.
func TestEqual(t *testing.T) {
	if !Equal("abc123", "abc123") {
		t.Error("identical values should be equal")
	}
	if Equal("abc123", "abc124") {
		t.Error("different values should not be equal")
	}
	if Equal("abc", "abc123") {
		t.Error("prefix should not be equal")
	}
	if !Equal("", "") {
		t.Error("empty values are equal")
	}
}
