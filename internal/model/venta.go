package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is an append-only sale line inside a caja. PrecioUnitario is a
// snapshot of the product price at sale time and never tracks later price
// changes. The producto FK is RESTRICT: a product with ventas cannot be
// deleted. Ventas are cascade-deleted with their caja.
type Venta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}
