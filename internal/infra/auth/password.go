package auth

import "golang.org/x/crypto/bcrypt"

type BcryptVerifier struct{}

func (BcryptVerifier) Verify(hash string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// HashPassword はシードやテスト用。平文は保存しない。
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
