package entity

// AuthTokens paquete de credenciales emitido por el backend en login/refresh.
// En un refresh exitoso rotan access/id token y expiración, pero el refresh
// token se conserva (el endpoint de refresh no lo devuelve).
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // segundos de vida del access token
	TokenType    string `json:"tokenType"` // normalmente "Bearer"
}

// TokenPatch actualización parcial de AuthTokens: solo los campos no nil se
// aplican (merge superficial).
type TokenPatch struct {
	AccessToken  *string
	IDToken      *string
	RefreshToken *string
	ExpiresIn    *int
	TokenType    *string
}

// Apply mezcla el patch sobre los tokens. No toca los campos nil del patch.
func (t *AuthTokens) Apply(p TokenPatch) {
	if p.AccessToken != nil {
		t.AccessToken = *p.AccessToken
	}
	if p.IDToken != nil {
		t.IDToken = *p.IDToken
	}
	if p.RefreshToken != nil {
		t.RefreshToken = *p.RefreshToken
	}
	if p.ExpiresIn != nil {
		t.ExpiresIn = *p.ExpiresIn
	}
	if p.TokenType != nil {
		t.TokenType = *p.TokenType
	}
}
