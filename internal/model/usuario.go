package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is an authenticated identity. Authorization data (rol + sucursales)
// lives in the associated Perfil, created together with the Usuario.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Perfil *Perfil `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE"`
}
