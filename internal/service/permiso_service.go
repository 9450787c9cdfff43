package service

import (
	"context"

	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"

	"github.com/google/uuid"
)

// Permisos is the resolved authorization context for one user. The zero value
// denies everything (no profile → no role → no sucursales).
type Permisos struct {
	Rol model.Rol
	// Todas marks the implicit all-sucursales grant of administrative roles.
	// It is evaluated at use time, so sucursales created after resolution are
	// covered without re-resolving.
	Todas       bool
	SucursalIDs []uuid.UUID
}

// PuedeOperarEn reports whether the user may act on the given sucursal.
func (p Permisos) PuedeOperarEn(sucursalID uuid.UUID) bool {
	if p.Todas {
		return true
	}
	for _, id := range p.SucursalIDs {
		if id == sucursalID {
			return true
		}
	}
	return false
}

// PermisoService derives (rol, sucursales permitidas) for a user. It is
// side-effect-free and idempotent; every operation in the core resolves
// through it instead of re-reading the perfil ad hoc.
type PermisoService interface {
	Resolver(ctx context.Context, usuarioID uuid.UUID) (Permisos, error)
}

type permisoService struct {
	usuarios repository.UsuarioRepository
}

func NewPermisoService(usuarios repository.UsuarioRepository) PermisoService {
	return &permisoService{usuarios: usuarios}
}

func (s *permisoService) Resolver(ctx context.Context, usuarioID uuid.UUID) (Permisos, error) {
	perfil, err := s.usuarios.FindPerfilByUsuarioID(ctx, usuarioID)
	if err != nil || perfil == nil {
		// Missing profile is not an error path: it resolves to a Permisos
		// value that denies every downstream operation.
		return Permisos{}, nil
	}

	if perfil.Rol.EsAdministrativo() {
		return Permisos{Rol: perfil.Rol, Todas: true}, nil
	}

	ids := make([]uuid.UUID, 0, len(perfil.Sucursales))
	for _, suc := range perfil.Sucursales {
		ids = append(ids, suc.ID)
	}
	return Permisos{Rol: perfil.Rol, SucursalIDs: ids}, nil
}
