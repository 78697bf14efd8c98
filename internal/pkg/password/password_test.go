package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Secret123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "Secret123" {
		t.Fatal("password stored in plain text")
	}
	if !Verify("Secret123", hash) {
		t.Error("Verify rejected the correct password")
	}
	if Verify("secret123", hash) {
		t.Error("Verify accepted a wrong password")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")
	if a == b {
		t.Error("different tokens produced the same hash")
	}
	if a != HashToken("token-a") {
		t.Error("token hash is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Secret123", true},
		{"abcdefg1", true},
		{"short1", false},
		{"onlyletters", false},
		{"12345678", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidatePassword(tt.password); got != tt.valid {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.valid)
		}
	}
}
