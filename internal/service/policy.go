package service

import "sucursalpos/internal/model"

// Operacion identifies a role-gated caja operation.
type Operacion string

const (
	OpAbrirCaja      Operacion = "abrir_caja"
	OpRegistrarVenta Operacion = "registrar_venta"
	OpCerrarCaja     Operacion = "cerrar_caja"
)

// PoliticaRoles maps each operation to the roles allowed to perform it.
// Injected into CajaService and VentaService so deployments can widen or
// narrow the gate without touching business code.
type PoliticaRoles map[Operacion][]model.Rol

// PoliticaPorDefecto is the canonical policy: only the Cajero role opens,
// sells and closes. Administrativos keep their universal sucursal grant for
// reads but do not operate the register themselves.
func PoliticaPorDefecto() PoliticaRoles {
	return PoliticaRoles{
		OpAbrirCaja:      {model.RolCajero},
		OpRegistrarVenta: {model.RolCajero},
		OpCerrarCaja:     {model.RolCajero},
	}
}

// Permite reports whether rol may perform op under this policy.
func (p PoliticaRoles) Permite(op Operacion, rol model.Rol) bool {
	for _, r := range p[op] {
		if r == rol {
			return true
		}
	}
	return false
}
