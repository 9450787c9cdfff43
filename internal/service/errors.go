package service

import "errors"

// Sentinel errors for the caja/venta core. Services wrap these with
// fmt.Errorf("%w: ...") to add detail; handlers map them to HTTP statuses
// with errors.Is. Every failure is terminal for its operation — the core
// never retries on its own.
var (
	// ErrValidacion: malformed or out-of-range input (negative amounts,
	// bad dates, cantidad < 1).
	ErrValidacion = errors.New("datos inválidos")

	// ErrPermisoDenegado: role or sucursal authorization failure.
	ErrPermisoDenegado = errors.New("permisos insuficientes")

	// ErrNoEncontrado: the referenced entity does not exist.
	ErrNoEncontrado = errors.New("recurso no encontrado")

	// ErrEstadoInvalido: operation not valid for the caja's current estado,
	// e.g. closing a CERRADA caja or selling against one.
	ErrEstadoInvalido = errors.New("operación no válida para el estado de la caja")

	// ErrCajaDuplicada: a caja already exists for that sucursal and fecha.
	ErrCajaDuplicada = errors.New("ya existe una caja para esa sucursal y fecha")

	// ErrSucursalDistinta: the producto does not belong to the caja's sucursal.
	ErrSucursalDistinta = errors.New("el producto no pertenece a la sucursal de la caja")

	// ErrProductoReferenciado: the producto has ventas and cannot be deleted.
	ErrProductoReferenciado = errors.New("el producto tiene ventas registradas y no puede eliminarse")

	// ErrCredenciales: login or token verification failure. Deliberately
	// opaque, it never distinguishes unknown user from wrong password.
	ErrCredenciales = errors.New("credenciales inválidas")
)
