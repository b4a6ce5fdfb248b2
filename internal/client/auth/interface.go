package auth

import "context"

//go:generate moq -out provider_mock.go . TokenProvider

// TokenProvider выдает действующий access token для запросов к серверу.
// Движок синхронизации запрашивает токен на каждый проход и сам его
// не кеширует.
type TokenProvider interface {
	// GetToken returns a valid access token.
	// Возвращает ошибку если сессии нет или токен истек
	GetToken(ctx context.Context) (string, error)
}
