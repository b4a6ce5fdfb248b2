package storage

import "context"

// AuthData хранит данные сессии пользователя на этом устройстве
type AuthData struct {
	Username    string `json:"username"`     // Username имя пользователя
	AccessToken string `json:"access_token"` // AccessToken JWT токен доступа
	ExpiresAt   int64  `json:"expires_at"`   // ExpiresAt unix время истечения токена
}

// AuthStorage defines interface for storing authentication data
type AuthStorage interface {
	// SaveAuth stores or replaces authentication data
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves authentication data.
	// Returns ErrAuthNotFound if no data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data
	DeleteAuth(ctx context.Context) error
}
