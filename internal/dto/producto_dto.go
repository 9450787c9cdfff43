package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"       validate:"required,min=2,max=120"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"       validate:"min=0"`
	Stock       int             `json:"stock"        validate:"min=0"`
	StockMinimo *int            `json:"stock_minimo" validate:"omitempty,min=0"`
	SucursalID  string          `json:"sucursal_id"  validate:"required,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre      string          `json:"nombre"       validate:"required,min=2,max=120"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"       validate:"min=0"`
	Stock       int             `json:"stock"        validate:"min=0"`
	StockMinimo *int            `json:"stock_minimo" validate:"omitempty,min=0"`
}

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	SucursalID  string          `json:"sucursal_id"`
	CreadoEn    string          `json:"creado_en"`
}

// PrecioResponse is the redis-cached price lookup payload.
type PrecioResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
}
