package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the user does not exist so that unknown
// usernames cost as much as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("callbook-dummy-password"), bcrypt.DefaultCost)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// BurnComparison performs a throwaway comparison.
func BurnComparison(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
