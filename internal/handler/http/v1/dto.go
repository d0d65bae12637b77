package v1

import (
	"time"
)

// SignUpRequest DTO для регистрации
// @Description DTO для регистрации по email и паролю
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignInRequest DTO для входа
// @Description DTO для входа по email и паролю
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse DTO с данными пользователя
// @Description DTO с данными пользователя
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionResponse DTO с активной сессией
// @Description DTO с активной сессией пользователя
type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// MediaResponse DTO для одного вложения ленты
// @Description DTO для одного вложения с режимом отображения
type MediaResponse struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Media       []MediaResponse `json:"media"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SubmitIncidentResponse DTO для ответа на отправку отчета. В rejected
// перечислены имена файлов, отброшенных на стейджинге из-за неподдерживаемого
// MIME-типа: клиент показывает их пользователю.
// @Description DTO для ответа на отправку отчета
type SubmitIncidentResponse struct {
	IncidentResponse
	Rejected []string `json:"rejected,omitempty"`
}

// ResolveLocationRequest DTO для обратного геокодирования координат.
// Ноль - легитимная координата (экватор, нулевой меридиан), поэтому здесь
// только диапазонные проверки, без required.
// @Description DTO для обратного геокодирования координат
type ResolveLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// ResolveLocationResponse DTO с результатом геокодирования
// @Description DTO с результатом геокодирования
type ResolveLocationResponse struct {
	Location string `json:"location"`
	Resolved bool   `json:"resolved"`
}
