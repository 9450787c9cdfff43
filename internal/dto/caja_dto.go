package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	SucursalID    string          `json:"sucursal_id"    validate:"required,uuid"`
	Fecha         string          `json:"fecha"          validate:"omitempty,datetime=2006-01-02"`
	AperturaMonto decimal.Decimal `json:"apertura_monto" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID              string           `json:"id"`
	SucursalID      string           `json:"sucursal_id"`
	Sucursal        string           `json:"sucursal,omitempty"`
	Fecha           string           `json:"fecha"`
	AperturaMonto   decimal.Decimal  `json:"apertura_monto"`
	CierreMonto     *decimal.Decimal `json:"cierre_monto"`
	Estado          string           `json:"estado"`
	AperturaUsuario string           `json:"apertura_usuario_id"`
	CierreUsuario   *string          `json:"cierre_usuario_id"`
	CreadaEn        string           `json:"creada_en"`
	CerradaEn       *string          `json:"cerrada_en"`
}

type CajaDetalleResponse struct {
	Caja   CajaResponse    `json:"caja"`
	Ventas []VentaResponse `json:"ventas"`
}

// CierrePrevioResponse is the read-only "expected so far" preview shown on
// the pre-close confirmation screen. Producing it mutates nothing.
type CierrePrevioResponse struct {
	CajaID        string          `json:"caja_id"`
	Estado        string          `json:"estado"`
	AperturaMonto decimal.Decimal `json:"apertura_monto"`
	TotalVendido  decimal.Decimal `json:"total_vendido"`
	Esperado      decimal.Decimal `json:"esperado"`
}
