package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct-horse-1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("correct-horse-1", hash) {
		t.Fatal("correct password should verify")
	}
	if CheckPassword("wrong-password-2", hash) {
		t.Fatal("wrong password should not verify")
	}
}

func TestCheckPasswordRejectsMalformedHash(t *testing.T) {
	if CheckPassword("anything1", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash should not verify")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"longenough1", true},
		{"Short1", false},
		{"nodigitshere", false},
		{"1234567890", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if (err == nil) != tc.ok {
			t.Fatalf("%q: unexpected result %v", tc.password, err)
		}
	}
}
