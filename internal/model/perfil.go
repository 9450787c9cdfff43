package model

import (
	"time"

	"github.com/google/uuid"
)

// Rol is the access tier of a user profile.
type Rol string

const (
	RolAdministrador    Rol = "Administrador"
	RolSubadministrador Rol = "Subadministrador"
	RolCajero           Rol = "Cajero"
	RolSupervisor       Rol = "Supervisor"
)

// Valido reports whether r is one of the four known roles.
func (r Rol) Valido() bool {
	switch r {
	case RolAdministrador, RolSubadministrador, RolCajero, RolSupervisor:
		return true
	}
	return false
}

// EsAdministrativo reports whether the role carries the implicit
// all-sucursales grant.
func (r Rol) EsAdministrativo() bool {
	return r == RolAdministrador || r == RolSubadministrador
}

// Perfil associates a Usuario with a Rol and the set of sucursales the user
// may operate on. Administrador/Subadministrador ignore the set and see every
// sucursal. A Perfil is created automatically with each Usuario, defaulting to
// Cajero with no sucursales assigned.
type Perfil struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Rol       Rol       `gorm:"type:varchar(20);not null;default:'Cajero'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Sucursales []Sucursal `gorm:"many2many:perfil_sucursales"`
}
