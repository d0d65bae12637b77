package models

// User представляет аутентифицированного пользователя внешнего identity provider
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session - активная сессия пользователя, выданная identity provider-ом
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}
