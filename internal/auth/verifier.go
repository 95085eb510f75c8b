package auth

import "golang.org/x/crypto/bcrypt"

// BcryptVerifier checks plaintext passwords against stored bcrypt hashes.
// It satisfies session.PasswordVerifier.
type BcryptVerifier struct{}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

func (BcryptVerifier) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
