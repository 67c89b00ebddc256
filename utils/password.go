package utils

import "golang.org/x/crypto/bcrypt"

// dummyHash lets CheckPassword spend bcrypt time even when no account matched.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("arz-dummy-password"), bcrypt.MinCost)

// HashPassword returns the bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
// An empty hash is compared against a dummy so unknown accounts take about as long as known ones.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
