package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"
	"sucursalpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, usuarioID, cajaID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Listar(ctx context.Context, usuarioID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	cajaRepo     repository.CajaRepository
	productoRepo repository.ProductoRepository
	permisos     PermisoService
	politica     PoliticaRoles
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	productoRepo repository.ProductoRepository,
	permisos PermisoService,
	politica PoliticaRoles,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		cajaRepo:     cajaRepo,
		productoRepo: productoRepo,
		permisos:     permisos,
		politica:     politica,
		dispatcher:   dispatcher,
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Appends one sale line to an ABIERTA caja:
//  1. caja exists, estado ABIERTA
//  2. rol + sucursal gate
//  3. producto exists and belongs to the caja's sucursal
//  4. snapshot unit price, total = precio × cantidad (decimal-exact)
//  5. TX: create venta, atomic stock decrement floored at zero
//
// An oversell (cantidad > stock) is recorded in full and reported back as an
// advisory warning — it is never an error and never blocks the sale.

func (s *ventaService) Registrar(ctx context.Context, usuarioID, cajaID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	caja, err := s.cajaRepo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, fmt.Errorf("%w: caja", ErrNoEncontrado)
	}
	if caja.Estado != model.CajaAbierta {
		return nil, fmt.Errorf("%w: la caja no está abierta", ErrEstadoInvalido)
	}

	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !s.politica.Permite(OpRegistrarVenta, perms.Rol) {
		return nil, fmt.Errorf("%w: el rol %s no puede registrar ventas", ErrPermisoDenegado, perms.Rol)
	}
	if !perms.PuedeOperarEn(caja.SucursalID) {
		return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
	}

	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto_id mal formado", ErrValidacion)
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto", ErrNoEncontrado)
	}
	// The product list shown to the cajero may span every permitted
	// sucursal; only the caja's own sucursal is valid for a sale line.
	if producto.SucursalID != caja.SucursalID {
		return nil, ErrSucursalDistinta
	}

	if req.Cantidad < 1 {
		return nil, fmt.Errorf("%w: la cantidad debe ser al menos 1", ErrValidacion)
	}

	// Price snapshot: the venta keeps this value even if the product price
	// changes later.
	precio := producto.Precio
	total := precio.Mul(decimal.NewFromInt(int64(req.Cantidad)))
	advertencia := req.Cantidad > producto.Stock

	venta := &model.Venta{
		CajaID:         cajaID,
		ProductoID:     productoID,
		Cantidad:       req.Cantidad,
		PrecioUnitario: precio,
		Total:          total,
		UsuarioID:      usuarioID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Re-check estado under a shared row lock: a close committing after
		// the read above must not absorb this venta into its cierre.
		if _, err := s.cajaRepo.FindAbiertaTx(tx, cajaID, repository.BloqueoCompartido); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: la caja no está abierta", ErrEstadoInvalido)
			}
			return err
		}
		if err := s.repo.CreateTx(ctx, tx, venta); err != nil {
			return err
		}
		return s.productoRepo.DescontarStockTx(tx, productoID, req.Cantidad)
	})
	if txErr != nil {
		return nil, txErr
	}

	stockNuevo := producto.Stock - req.Cantidad
	if stockNuevo < 0 {
		stockNuevo = 0
	}
	if s.dispatcher != nil && stockNuevo <= producto.StockMinimo {
		// Best-effort: a failed enqueue never fails the sale.
		if err := s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{
			ProductoID: producto.ID.String(),
			Producto:   producto.Nombre,
			SucursalID: producto.SucursalID.String(),
			Stock:      stockNuevo,
		}); err != nil {
			log.Warn().Err(err).Str("producto_id", producto.ID.String()).Msg("no se pudo encolar alerta de stock")
		}
	}

	resp := ventaToResponse(venta)
	resp.Producto = producto.Nombre
	if advertencia {
		resp.AdvertenciaStock = true
		resp.Advertencia = "Stock insuficiente. Se registró la venta, revise inventario."
	}
	return resp, nil
}

// ── Listar ────────────────────────────────────────────────────────────────────
// Read access for reporting: date range + optional sucursal, always
// intersected with the caller's permitted sucursales.

func (s *ventaService) Listar(ctx context.Context, usuarioID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if perms.Rol == "" {
		return nil, fmt.Errorf("%w: usuario sin perfil", ErrPermisoDenegado)
	}

	hoy := time.Now().Format(fechaLayout)
	if filter.Desde == "" {
		filter.Desde = hoy
	}
	if filter.Hasta == "" {
		filter.Hasta = hoy
	}
	if _, err := time.Parse(fechaLayout, filter.Desde); err != nil {
		return nil, fmt.Errorf("%w: desde mal formada, use AAAA-MM-DD", ErrValidacion)
	}
	if _, err := time.Parse(fechaLayout, filter.Hasta); err != nil {
		return nil, fmt.Errorf("%w: hasta mal formada, use AAAA-MM-DD", ErrValidacion)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}

	var sucursalIDs []uuid.UUID
	if filter.Sucursal != "" {
		sucID, err := uuid.Parse(filter.Sucursal)
		if err != nil {
			return nil, fmt.Errorf("%w: sucursal mal formada", ErrValidacion)
		}
		if !perms.PuedeOperarEn(sucID) {
			return nil, fmt.Errorf("%w: sucursal no permitida", ErrPermisoDenegado)
		}
		sucursalIDs = []uuid.UUID{sucID}
	} else if !perms.Todas {
		sucursalIDs = perms.SucursalIDs
		if sucursalIDs == nil {
			sucursalIDs = []uuid.UUID{}
		}
	}

	ventas, total, err := s.repo.List(ctx, filter, sucursalIDs)
	if err != nil {
		return nil, err
	}

	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:             v.ID.String(),
		CajaID:         v.CajaID.String(),
		ProductoID:     v.ProductoID.String(),
		Cantidad:       v.Cantidad,
		PrecioUnitario: v.PrecioUnitario,
		Total:          v.Total,
		UsuarioID:      v.UsuarioID.String(),
		CreadaEn:       v.CreatedAt.Format(time.RFC3339),
	}
	if v.Producto != nil {
		resp.Producto = v.Producto.Nombre
	}
	return resp
}
