package profileservice

// Profile модель профиля мастера из ProfileService
type Profile struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `json:"is_active"`
}

// ErrorResponse модель ошибки от ProfileService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
