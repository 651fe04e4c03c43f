package security

import "testing"

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(4) // minimum cost, tests only
	hash, err := h.Hash([]byte("s3cret"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash equals plaintext")
	}
	if err := h.Compare(hash, []byte("s3cret")); err != nil {
		t.Errorf("Compare(correct): %v", err)
	}
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Error("Compare(wrong) should fail")
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10},  // bcrypt.DefaultCost
		{-5, 10}, // bcrypt.DefaultCost
		{2, 4},   // bcrypt.MinCost
		{40, 31}, // bcrypt.MaxCost
		{12, 12},
	}
	for _, tt := range tests {
		if got := NewHasher(tt.in).Cost; got != tt.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tt.in, got, tt.want)
		}
	}
}
