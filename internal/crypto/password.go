package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost стоимость bcrypt хеширования.
// Стандартная стоимость: ~100ms на современном CPU.
const BcryptCost = 12

// HashPassword хеширует пароль с использованием bcrypt.
// Соль генерируется внутри bcrypt и хранится в самом хеше.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword проверяет, соответствует ли пароль сохраненному хешу.
// Порядок аргументов повторяет bcrypt.CompareHashAndPassword: сначала хеш.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("invalid password")
	}

	return nil
}
