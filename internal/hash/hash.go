package hash

import "golang.org/x/crypto/bcrypt"

// Password returns a salted bcrypt digest. Two calls with the same input
// produce different digests.
func Password(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Check reports whether password matches digest. A malformed digest is
// treated as a mismatch, never an error.
func Check(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
