package models

import (
	"time"

	"github.com/google/uuid"
)

// Role names of the fixed catalog, lowest tier first.
const (
	RoleIngresante = "Ingresante"
	RoleUsuario    = "Usuario"
	RoleStaff      = "Staff"
)

// RoleCatalog lists the roles ensured at startup.
var RoleCatalog = []Role{
	{Name: RoleIngresante, Description: "Cuenta nueva pendiente de aprobación."},
	{Name: RoleUsuario, Description: "Puede administrar el contenido del sitio."},
	{Name: RoleStaff, Description: "Acceso al panel de administración."},
}

// Role is a named permission tier assigned through a user profile.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// Validate checks the role name.
func (r *Role) Validate() error {
	var v ValidationError
	v.required("name", r.Name, RoleNameMax)
	return v.Err()
}

// Account is a login identity. IsStaff is kept in sync with the profile
// role; IsSuperuser is set only by other superusers or the seed command.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile extends an account with its role. RoleID is nil only for
// accounts created before the role catalog existed.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	RoleID    *uuid.UUID `json:"role_id,omitempty"`
}

// Identity is the per-request view of the authenticated account used by
// authorization decisions. A nil *Identity is an anonymous request.
type Identity struct {
	Account Account `json:"account"`
	// RoleName is empty when the account has no profile or no role.
	RoleName string `json:"role,omitempty"`
}

// IsSuperuser reports whether the identity belongs to a superuser.
func (i *Identity) IsSuperuser() bool {
	return i != nil && i.Account.IsSuperuser
}

// IsStaff reports whether the identity carries the staff flag.
func (i *Identity) IsStaff() bool {
	return i != nil && i.Account.IsStaff
}
