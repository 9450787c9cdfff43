package dto

type SucursalRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=100"`
	Direccion *string `json:"direccion" validate:"omitempty,max=200"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=20"`
}

type SucursalResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Direccion *string `json:"direccion"`
	Telefono  *string `json:"telefono"`
}
