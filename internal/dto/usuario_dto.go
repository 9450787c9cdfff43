package dto

type CrearUsuarioRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=60"`
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=120"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=8"`
}

// ActualizarPerfilRequest reassigns a user's rol and permitted sucursales.
type ActualizarPerfilRequest struct {
	Rol         string   `json:"rol"          validate:"required,oneof=Administrador Subadministrador Cajero Supervisor"`
	SucursalIDs []string `json:"sucursal_ids" validate:"dive,uuid"`
}

type UsuarioResponse struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Nombre     string   `json:"nombre"`
	Email      *string  `json:"email,omitempty"`
	Rol        string   `json:"rol"`
	Sucursales []string `json:"sucursales,omitempty"`
	Activo     bool     `json:"activo"`
}
