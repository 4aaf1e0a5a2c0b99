package util

import (
	"crypto/sha256"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const _BCRYPT_COST = 10

func GetSHA256(str string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(str)))
}

// GetBcrypt pre-digests with sha256 because bcrypt only reads the first
// 72 bytes, the password policy allows up to 128.
func GetBcrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(GetSHA256(password)), _BCRYPT_COST)
	if err != nil {
		return "", errors.Wrap(err, "generate from password failed")
	}
	return string(hash), nil
}

// CompareBcrypt returns an error for a mismatch or a malformed digest,
// never panics.
func CompareBcrypt(hashPassword, password []byte) error {
	if err := bcrypt.CompareHashAndPassword(hashPassword, []byte(GetSHA256(string(password)))); err != nil {
		return errors.Wrap(err, "compare hash and password failed")
	}
	return nil
}
