package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashAuthKey хеширует auth_key с использованием SHA256.
// Auth key уже защищен через Argon2id, на сервер уходит только
// детерминированный хеш.
func HashAuthKey(authKey []byte) (string, error) {
	if len(authKey) == 0 {
		return "", fmt.Errorf("auth key cannot be empty")
	}

	hash := sha256.Sum256(authKey)

	// Возвращаем hex-encoded строку
	return hex.EncodeToString(hash[:]), nil
}
