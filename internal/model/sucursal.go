package model

import (
	"github.com/google/uuid"
)

// Sucursal is a physical store location. Each sucursal owns its own product
// catalog and its daily cash registers (cajas).
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Direccion *string
	Telefono  *string `gorm:"type:varchar(20)"`

	Productos []Producto `gorm:"foreignKey:SucursalID;constraint:OnDelete:CASCADE"`
	Cajas     []Caja     `gorm:"foreignKey:SucursalID;constraint:OnDelete:CASCADE"`
}
