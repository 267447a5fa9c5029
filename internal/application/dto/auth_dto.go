package dto

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse paquete de tokens emitido en login. El backend usa
// snake_case en el wire (estilo OAuth2/Cognito).
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest cuerpo de POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse respuesta de POST /auth/refresh. El endpoint NO devuelve
// refresh_token: el cliente sigue reutilizando el original.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// ProfileResponse sub-objeto de perfil de la respuesta "me". Todos los
// campos son opcionales.
type ProfileResponse struct {
	Phone              string `json:"phone,omitempty"`
	InstitutionName    string `json:"institution_name,omitempty"`
	InstitutionType    string `json:"institution_type,omitempty"`
	TaxID              string `json:"tax_id,omitempty"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	Country            string `json:"country,omitempty"`
	RepresentativeName string `json:"representative_name,omitempty"`
}

// MeResponse respuesta de GET /auth/me con los datos del usuario autenticado.
type MeResponse struct {
	ID      string           `json:"id"`
	Email   string           `json:"email"`
	Name    string           `json:"name"`
	Role    string           `json:"role,omitempty"`
	Groups  []string         `json:"groups,omitempty"`
	Profile *ProfileResponse `json:"profile,omitempty"`
}
