package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caja estados. The lifecycle has a single edge: ABIERTA → CERRADA.
const (
	CajaAbierta = "ABIERTA"
	CajaCerrada = "CERRADA"
)

// Caja is one sucursal's daily cash-register session. At most one caja per
// (sucursal, fecha) may be ABIERTA — enforced by a partial unique index at the
// storage layer, not by application checks (see infra.applySchemaPatches).
// CierreMonto and CierreUsuarioID stay NULL until the close transition.
type Caja struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Fecha             time.Time       `gorm:"type:date;not null;index"`
	AperturaMonto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AperturaUsuarioID uuid.UUID       `gorm:"type:uuid;not null"`
	Estado            string          `gorm:"type:varchar(10);not null;default:'ABIERTA'"`
	CierreMonto       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CierreUsuarioID   *uuid.UUID       `gorm:"type:uuid"`
	CreatedAt         time.Time
	CerradaEn         *time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
	Ventas   []Venta   `gorm:"foreignKey:CajaID;constraint:OnDelete:CASCADE"`
}
