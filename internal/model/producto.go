package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto belongs to exactly one sucursal. Stock is only decremented by the
// sale recorder (atomically, floored at zero) and adjusted by administrative
// edits. Products referenced by ventas cannot be deleted.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	Precio      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	// StockMinimo triggers the async low-stock alert when crossed by a sale.
	StockMinimo int       `gorm:"not null;default:5"`
	SucursalID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}
