package auth

import (
	"fmt"

	"golang.org/x/oauth2/clientcredentials"
)

// Conf selects how outgoing requests are authorised. A static Token wins
// over client credentials; with neither, requests are sent as they are.
type Conf struct {
	Token        string   `json:"token"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURL      string   `json:"auth_url"`
	Scopes       []string `json:"scopes"`
}

// Validate rejects half-configured client credentials.
func (c Conf) Validate() error {
	if c.Token != "" {
		return nil
	}
	set := 0
	for _, v := range []string{c.ClientID, c.ClientSecret, c.AuthURL} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("auth: client_id, client_secret and auth_url must be set together")
	}
	return nil
}

func (c Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.AuthURL,
		Scopes:       c.Scopes,
	}
}
