package model

// AuthMethods lists the authentication options of an auth collection.
type AuthMethods struct {
	UsernamePassword bool               `json:"usernamePassword"`
	EmailPassword    bool               `json:"emailPassword"`
	AuthProviders    []AuthProviderInfo `json:"authProviders"`
}

// AuthProviderInfo carries what a client needs to start an OAuth2 flow.
type AuthProviderInfo struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	CodeVerifier        string `json:"codeVerifier"`
	CodeChallenge       string `json:"codeChallenge"`
	CodeChallengeMethod string `json:"codeChallengeMethod"`
	AuthURL             string `json:"authUrl"`
}

// Provider returns the named provider, if enabled.
func (m *AuthMethods) Provider(name string) (AuthProviderInfo, bool) {
	for _, p := range m.AuthProviders {
		if p.Name == name {
			return p, true
		}
	}
	return AuthProviderInfo{}, false
}
