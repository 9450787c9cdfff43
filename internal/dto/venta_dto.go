package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// VentaFilter bounds the read-only report listing. Desde/Hasta are
// YYYY-MM-DD; Sucursal restricts to one sucursal when set.
type VentaFilter struct {
	Desde    string
	Hasta    string
	Sucursal string
	Page     int
	Limit    int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	ID             string          `json:"id"`
	CajaID         string          `json:"caja_id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	UsuarioID      string          `json:"usuario_id"`
	CreadaEn       string          `json:"creada_en"`
	// AdvertenciaStock flags an oversell: the venta succeeded but the
	// requested cantidad exceeded the available stock.
	AdvertenciaStock bool   `json:"advertencia_stock,omitempty"`
	Advertencia      string `json:"advertencia,omitempty"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
