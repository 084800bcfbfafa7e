package pow

import "testing"

func TestSearchDifficultyZeroFastPath(t *testing.T) {
	nonce := Search([]byte("seed"), 0)
	if nonce != 0 {
		t.Fatalf("difficulty 0 should accept nonce 0 immediately, got %d", nonce)
	}
	if err := Verify([]byte("seed"), 0, nonce); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSearchFindsACheckableNonce(t *testing.T) {
	seed := []byte("grinding-seed")
	const difficulty = 8
	nonce := Search(seed, difficulty)
	if err := Verify(seed, difficulty, nonce); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !Check(seed, difficulty, nonce) {
		t.Fatal("Check disagrees with the nonce Search itself returned")
	}
}

func TestVerifyRejectsInsufficientNonce(t *testing.T) {
	if err := Verify([]byte("another-seed"), 32, 0); err == nil {
		t.Fatal("expected nonce 0 to fail a high-difficulty check")
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	const difficulty = 8
	seed := []byte("deterministic-seed")
	if Search(seed, difficulty) != Search(seed, difficulty) {
		t.Fatal("Search returned different nonces for the same seed and difficulty")
	}
}
