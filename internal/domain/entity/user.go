package entity

// Roles válidos para User.
const (
	RoleSeller = "seller"
	RoleClient = "client"
)

// UserProfile datos opcionales de perfil. Todos los campos son strings
// opcionales; un perfil sin ningún campo no vacío no debe existir (se
// representa como puntero nil en User).
type UserProfile struct {
	Phone              string `json:"phone,omitempty"`
	InstitutionName    string `json:"institutionName,omitempty"`
	InstitutionType    string `json:"institutionType,omitempty"`
	TaxID              string `json:"taxId,omitempty"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	Country            string `json:"country,omitempty"`
	RepresentativeName string `json:"representativeName,omitempty"`
}

// IsEmpty indica si ningún campo del perfil tiene valor.
func (p UserProfile) IsEmpty() bool {
	return p == UserProfile{}
}

// User representa el usuario autenticado de la app. Se construye desde la
// respuesta "me" del backend, se reemplaza completo en login/refresh de
// perfil, y se parcha campo a campo vía UpdateUser del AuthStore.
// Los tags JSON en camelCase mantienen compatibilidad con los snapshots
// persistidos por la app móvil original.
type User struct {
	ID      string       `json:"id"`
	Email   string       `json:"email"`
	Name    string       `json:"name"`
	Role    string       `json:"role,omitempty"` // seller | client
	Groups  []string     `json:"groups,omitempty"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// UserPatch actualización parcial de User: solo los campos no nil se aplican
// (merge superficial, equivalente a Partial<User>).
type UserPatch struct {
	Email   *string
	Name    *string
	Role    *string
	Groups  *[]string
	Profile *UserProfile
}

// Apply mezcla el patch sobre el usuario. No toca los campos nil del patch.
func (u *User) Apply(p UserPatch) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Groups != nil {
		u.Groups = *p.Groups
	}
	if p.Profile != nil {
		u.Profile = p.Profile
	}
}
