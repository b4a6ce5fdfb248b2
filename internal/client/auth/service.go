package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ledgerkeep/ledgerkeep/internal/client/api"
	"github.com/ledgerkeep/ledgerkeep/internal/client/storage"
	"github.com/ledgerkeep/ledgerkeep/internal/crypto"
	"github.com/ledgerkeep/ledgerkeep/internal/validation"
	pkgapi "github.com/ledgerkeep/ledgerkeep/pkg/api"
)

// ErrTokenExpired indicates the stored access token is no longer valid
var ErrTokenExpired = errors.New("access token has expired, please login again")

// Service предоставляет функции авторизации и реализует TokenProvider
type Service struct {
	apiClient api.ClientAPI
	storage   storage.AuthStorage
	logger    *slog.Logger
}

// Compile-time check that Service implements TokenProvider
var _ TokenProvider = (*Service)(nil)

// NewService создает новый сервис авторизации
func NewService(apiClient api.ClientAPI, authStorage storage.AuthStorage, logger *slog.Logger) *Service {
	return &Service{
		apiClient: apiClient,
		storage:   authStorage,
		logger:    logger,
	}
}

// Login выполняет аутентификацию пользователя и сохраняет сессию.
// Пароль не покидает устройство: на сервер отправляется SHA256 хеш
// ключа, производного от пароля через Argon2id.
func (s *Service) Login(ctx context.Context, username, password string) error {
	// Валидация входных данных
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	// 1. Получаем public_salt с сервера
	saltResp, err := s.apiClient.GetSalt(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get salt: %w", err)
	}

	// 2. Деривируем auth key из пароля
	authKey, err := crypto.DeriveAuthKeyFromBase64Salt(password, username, saltResp.PublicSalt)
	if err != nil {
		return fmt.Errorf("failed to derive auth key: %w", err)
	}

	// 3. Хешируем auth key для отправки на сервер
	authKeyHash, err := crypto.HashAuthKey(authKey)
	if err != nil {
		return fmt.Errorf("failed to hash auth key: %w", err)
	}

	// 4. Отправляем запрос на логин
	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{
		Username:    username,
		AuthKeyHash: authKeyHash,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// 5. Определяем срок действия токена: exp claim надежнее, чем
	// expires_in относительно локальных часов
	expiresAt := tokenExpiry(resp.AccessToken, resp.ExpiresIn)

	// 6. Сохраняем сессию
	auth := &storage.AuthData{
		Username:    username,
		AccessToken: resp.AccessToken,
		ExpiresAt:   expiresAt,
	}
	if err := s.storage.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Logged in", "username", username)

	return nil
}

// Logout выполняет выход из системы.
// Сервер уведомляется best effort, локальная сессия удаляется всегда.
func (s *Service) Logout(ctx context.Context) error {
	auth, err := s.storage.GetAuth(ctx)
	if err != nil {
		s.logger.Debug("No auth data found during logout", "error", err)
	} else {
		if logoutErr := s.apiClient.Logout(ctx, auth.AccessToken); logoutErr != nil {
			// Не прерываем процесс, если сервер недоступен
			s.logger.Warn("Failed to logout on server", "error", logoutErr)
		}
	}

	if err := s.storage.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local session: %w", err)
	}

	return nil
}

// GetToken returns a valid access token for server requests
func (s *Service) GetToken(ctx context.Context) (string, error) {
	auth, err := s.storage.GetAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	if time.Now().Unix() >= auth.ExpiresAt {
		return "", ErrTokenExpired
	}

	return auth.AccessToken, nil
}

// IsAuthenticated проверяет наличие действующей сессии
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	_, err := s.storage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Session возвращает данные текущей сессии
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	return s.storage.GetAuth(ctx)
}

// tokenExpiry извлекает срок действия из exp claim токена.
// Подпись не проверяется - её проверяет сервер; клиенту нужен только
// срок. Если claim отсутствует, считаем от expires_in и локальных часов.
func tokenExpiry(accessToken string, expiresIn int64) int64 {
	parser := jwt.NewParser()

	token, _, err := parser.ParseUnverified(accessToken, jwt.MapClaims{})
	if err == nil {
		if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Unix()
		}
	}

	return time.Now().Add(time.Duration(expiresIn) * time.Second).Unix()
}
