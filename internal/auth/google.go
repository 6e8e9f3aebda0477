package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// InitGoogleOAuthConfig собирает конфиг Google OAuth из переменных окружения.
// Scopes нам нужны минимальные: email и профиль (имя + аватарка).
func InitGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}
