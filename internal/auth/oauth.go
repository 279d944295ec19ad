package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/yandex"
)

// YandexUser is the portion of the Yandex userinfo response we care
// about. Yandex returns a larger object; we only unmarshal what we need.
//
// API docs: https://yandex.com/dev/id/doc/en/user-information
type YandexUser struct {
	ID           string `json:"id"`            // Yandex's user ID, stable across logins
	DefaultEmail string `json:"default_email"` // primary email (empty if the login:email scope was denied)
	DisplayName  string `json:"display_name"`  // public display name, may be empty
	RealName     string `json:"real_name"`     // "First Last", may be empty
	Login        string `json:"login"`         // Yandex login, e.g. "ivan.petrov"
}

// Username picks the best available display name from the profile:
// display name, then real name, then the Yandex login. Falls back to an
// empty string when the profile carries none of them.
func (u *YandexUser) Username() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.RealName != "":
		return u.RealName
	default:
		return u.Login
	}
}

const yandexUserInfoURL = "https://login.yandex.ru/info?format=json"

// YandexProvider wraps golang.org/x/oauth2 for the Yandex Authorization
// Code flow. The code-for-token exchange happens server-to-server using
// the client secret; the access token never reaches the browser.
//
// The provider is constructed once at startup and injected into the
// handlers that need it; there is no package-level instance.
type YandexProvider struct {
	config *oauth2.Config
}

// NewYandexProvider creates a YandexProvider with the given credentials.
//
// ClientID and ClientSecret come from registering an app at
// https://oauth.yandex.com. redirectURL must match the registered
// callback exactly, e.g. "http://localhost:8080/auth/yandex/callback".
//
// Scopes requested:
//   - "login:email": the user's default email address
//   - "login:info":  basic profile (id, login, display name)
func NewYandexProvider(clientID, clientSecret, redirectURL string) *YandexProvider {
	return &YandexProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"login:email", "login:info"},
			Endpoint:     yandex.Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// state is a random value we store in a cookie before redirecting and
// compare on callback, so a forged callback cannot complete the flow.
func (p *YandexProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// Yandex user profile.
//
// A profile without an email is a hard failure: the account record
// requires one, and it only goes missing when the user denied the
// login:email scope.
func (p *YandexProvider) Exchange(ctx context.Context, code string) (*YandexUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// "Authorization: OAuth <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(yandexUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Yandex userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Yandex userinfo API returned status %d", resp.StatusCode)
	}

	var yaUser YandexUser
	if err := json.NewDecoder(resp.Body).Decode(&yaUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Yandex userinfo response: %w", err)
	}

	if yaUser.ID == "" {
		return nil, fmt.Errorf("auth: Yandex returned an invalid user (empty id)")
	}
	if yaUser.DefaultEmail == "" {
		return nil, fmt.Errorf("auth: email not received from Yandex")
	}

	return &yaUser, nil
}
