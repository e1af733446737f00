package profileservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с ProfileService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ProfileService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetProfile получает профиль мастера по идентификатору
func (c *Client) GetProfile(ctx context.Context, profileID int64) (*Profile, error) {
	url := fmt.Sprintf("%s/internal/profiles/%d", c.baseURL, profileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid profile ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrProfileNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &profile, nil
}

// IsOwner проверяет, что пользователь владеет профилем мастера.
// При недоступности ProfileService возвращает ошибку: операции управления
// расписанием без проверки владения не выполняются.
func (c *Client) IsOwner(ctx context.Context, profileID, userID int64) (bool, error) {
	profile, err := c.GetProfile(ctx, profileID)
	if err != nil {
		if err == ErrProfileNotFound {
			c.log.Info("Profile %d not found during ownership check", profileID)
			return false, err
		}
		c.log.Error("ProfileService unavailable during ownership check for profile_id=%d: %v", profileID, err)
		return false, err
	}

	return profile.OwnerID == userID, nil
}
