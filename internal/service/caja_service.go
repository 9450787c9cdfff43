package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const fechaLayout = "2006-01-02"

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Detalle(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.CajaDetalleResponse, error)
	PrevisualizarCierre(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.CierrePrevioResponse, error)
	Cerrar(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.CajaResponse, error)
	DelDia(ctx context.Context, usuarioID uuid.UUID, fecha string) ([]dto.CajaResponse, error)
}

type cajaService struct {
	repo         repository.CajaRepository
	ventaRepo    repository.VentaRepository
	sucursalRepo repository.SucursalRepository
	permisos     PermisoService
	politica     PoliticaRoles
	// permitirReapertura allows opening a new caja for a (sucursal, fecha)
	// that already has a CERRADA one. At most one ABIERTA caja per
	// (sucursal, fecha) is still enforced by the partial unique index
	// regardless of this flag.
	permitirReapertura bool
}

func NewCajaService(
	repo repository.CajaRepository,
	ventaRepo repository.VentaRepository,
	sucursalRepo repository.SucursalRepository,
	permisos PermisoService,
	politica PoliticaRoles,
	permitirReapertura bool,
) CajaService {
	return &cajaService{
		repo:               repo,
		ventaRepo:          ventaRepo,
		sucursalRepo:       sucursalRepo,
		permisos:           permisos,
		politica:           politica,
		permitirReapertura: permitirReapertura,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// hoy is the server's local calendar day at date resolution. Formatting and
// re-parsing keeps the fecha on the local business day; truncating to UTC
// midnight would shift it in non-UTC deployments.
func hoy() time.Time {
	d, _ := time.Parse(fechaLayout, time.Now().Format(fechaLayout))
	return d
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, fmt.Errorf("%w: sucursal_id mal formado", ErrValidacion)
	}

	fecha := hoy()
	if req.Fecha != "" {
		fecha, err = time.Parse(fechaLayout, req.Fecha)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha mal formada, use AAAA-MM-DD", ErrValidacion)
		}
	}

	if req.AperturaMonto.IsNegative() {
		return nil, fmt.Errorf("%w: el monto de apertura no puede ser negativo", ErrValidacion)
	}

	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !s.politica.Permite(OpAbrirCaja, perms.Rol) {
		return nil, fmt.Errorf("%w: el rol %s no puede abrir cajas", ErrPermisoDenegado, perms.Rol)
	}
	if !perms.PuedeOperarEn(sucursalID) {
		return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
	}

	if _, err := s.sucursalRepo.FindByID(ctx, sucursalID); err != nil {
		return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
	}

	if !s.permitirReapertura {
		existe, err := s.repo.ExistePorFecha(ctx, sucursalID, fecha)
		if err != nil {
			return nil, err
		}
		if existe {
			return nil, ErrCajaDuplicada
		}
	}

	caja := &model.Caja{
		SucursalID:        sucursalID,
		Fecha:             fecha,
		AperturaMonto:     req.AperturaMonto,
		AperturaUsuarioID: usuarioID,
		Estado:            model.CajaAbierta,
	}
	if err := s.repo.Create(ctx, caja); err != nil {
		// The partial unique index is the authoritative guard: two
		// concurrent aperturas resolve here, not in the pre-check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCajaDuplicada
		}
		return nil, err
	}

	return cajaToResponse(caja), nil
}

// ── Detalle ───────────────────────────────────────────────────────────────────

func (s *cajaService) Detalle(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.CajaDetalleResponse, error) {
	caja, err := s.repo.FindByIDConVentas(ctx, cajaID)
	if err != nil {
		return nil, fmt.Errorf("%w: caja", ErrNoEncontrado)
	}

	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !perms.PuedeOperarEn(caja.SucursalID) {
		return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
	}

	ventas := make([]dto.VentaResponse, 0, len(caja.Ventas))
	for i := range caja.Ventas {
		ventas = append(ventas, *ventaToResponse(&caja.Ventas[i]))
	}
	return &dto.CajaDetalleResponse{Caja: *cajaToResponse(caja), Ventas: ventas}, nil
}

// ── PrevisualizarCierre ───────────────────────────────────────────────────────
// Read-only: computes esperado = apertura + Σ(total) without touching state,
// for the pre-close confirmation screen.

func (s *cajaService) PrevisualizarCierre(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.CierrePrevioResponse, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, fmt.Errorf("%w: caja", ErrNoEncontrado)
	}

	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !perms.PuedeOperarEn(caja.SucursalID) {
		return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
	}

	total, err := s.ventaRepo.SumTotalByCaja(ctx, cajaID)
	if err != nil {
		return nil, err
	}

	return &dto.CierrePrevioResponse{
		CajaID:        caja.ID.String(),
		Estado:        caja.Estado,
		AperturaMonto: caja.AperturaMonto,
		TotalVendido:  total,
		Esperado:      caja.AperturaMonto.Add(total),
	}, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// One transaction: take the caja row lock, sum sale totals, then transition
// ABIERTA→CERRADA with a conditional UPDATE. Under N concurrent closes
// exactly one wins; the rest fail with ErrEstadoInvalido.

func (s *cajaService) Cerrar(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, fmt.Errorf("%w: caja", ErrNoEncontrado)
	}

	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !s.politica.Permite(OpCerrarCaja, perms.Rol) {
		return nil, fmt.Errorf("%w: el rol %s no puede cerrar cajas", ErrPermisoDenegado, perms.Rol)
	}
	if !perms.PuedeOperarEn(caja.SucursalID) {
		return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
	}

	cerradaEn := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Exclusive row lock first: the sum must wait for in-flight ventas
		// holding a shared lock on this caja to commit.
		if _, err := s.repo.FindAbiertaTx(tx, cajaID, repository.BloqueoExclusivo); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: la caja ya está cerrada", ErrEstadoInvalido)
			}
			return err
		}

		total, err := s.ventaRepo.SumTotalByCajaTx(tx, cajaID)
		if err != nil {
			return err
		}
		cierre := caja.AperturaMonto.Add(total)

		rows, err := s.repo.CerrarTx(tx, cajaID, cierre, usuarioID, cerradaEn)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: la caja ya está cerrada", ErrEstadoInvalido)
		}

		caja.Estado = model.CajaCerrada
		caja.CierreMonto = &cierre
		caja.CierreUsuarioID = &usuarioID
		caja.CerradaEn = &cerradaEn
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return cajaToResponse(caja), nil
}

// ── DelDia ────────────────────────────────────────────────────────────────────

func (s *cajaService) DelDia(ctx context.Context, usuarioID uuid.UUID, fecha string) ([]dto.CajaResponse, error) {
	dia := hoy()
	if fecha != "" {
		var err error
		dia, err = time.Parse(fechaLayout, fecha)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha mal formada, use AAAA-MM-DD", ErrValidacion)
		}
	}

	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if perms.Rol == "" {
		return nil, fmt.Errorf("%w: usuario sin perfil", ErrPermisoDenegado)
	}

	var sucursalIDs []uuid.UUID
	if !perms.Todas {
		sucursalIDs = perms.SucursalIDs
		if sucursalIDs == nil {
			sucursalIDs = []uuid.UUID{}
		}
	}

	cajas, err := s.repo.ListByFecha(ctx, sucursalIDs, dia)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		out = append(out, *cajaToResponse(&cajas[i]))
	}
	return out, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func cajaToResponse(c *model.Caja) *dto.CajaResponse {
	resp := &dto.CajaResponse{
		ID:              c.ID.String(),
		SucursalID:      c.SucursalID.String(),
		Fecha:           c.Fecha.Format(fechaLayout),
		AperturaMonto:   c.AperturaMonto,
		CierreMonto:     c.CierreMonto,
		Estado:          c.Estado,
		AperturaUsuario: c.AperturaUsuarioID.String(),
		CreadaEn:        c.CreatedAt.Format(time.RFC3339),
	}
	if c.Sucursal != nil {
		resp.Sucursal = c.Sucursal.Nombre
	}
	if c.CierreUsuarioID != nil {
		u := c.CierreUsuarioID.String()
		resp.CierreUsuario = &u
	}
	if c.CerradaEn != nil {
		t := c.CerradaEn.Format(time.RFC3339)
		resp.CerradaEn = &t
	}
	return resp
}
