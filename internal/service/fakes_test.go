package service

import (
	"context"
	"sync"
	"time"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory fakes reproducing the storage semantics the services rely on:
// the partial unique index on open cajas, the conditional close UPDATE and
// the floored stock decrement. All guarded by mutexes so concurrency tests
// exercise the same race the database would see.

// ── Caja ──────────────────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	mu     sync.Mutex
	cajas  map[uuid.UUID]*model.Caja
	ventas *fakeVentaRepo
	// antesDeBloquear, when set, runs before FindAbiertaTx acquires its lock.
	// Tests use it to interleave a close between a venta's estado read and
	// its transaction, the way a real lock wait would.
	antesDeBloquear func()
}

func newFakeCajaRepo(ventas *fakeVentaRepo) *fakeCajaRepo {
	return &fakeCajaRepo{cajas: make(map[uuid.UUID]*model.Caja), ventas: ventas}
}

func (r *fakeCajaRepo) Create(_ context.Context, c *model.Caja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cajas {
		if existing.SucursalID == c.SucursalID &&
			existing.Fecha.Equal(c.Fecha) &&
			existing.Estado == model.CajaAbierta {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cp := *c
	r.cajas[c.ID] = &cp
	return nil
}

func (r *fakeCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCajaRepo) FindByIDConVentas(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.ventas != nil {
		r.ventas.mu.Lock()
		for i := range r.ventas.ventas {
			if r.ventas.ventas[i].CajaID == id {
				c.Ventas = append(c.Ventas, r.ventas.ventas[i])
			}
		}
		r.ventas.mu.Unlock()
	}
	return c, nil
}

func (r *fakeCajaRepo) ExistePorFecha(_ context.Context, sucursalID uuid.UUID, fecha time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cajas {
		if c.SucursalID == sucursalID && c.Fecha.Equal(fecha) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCajaRepo) ListByFecha(_ context.Context, sucursalIDs []uuid.UUID, fecha time.Time) ([]model.Caja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Caja
	for _, c := range r.cajas {
		if !c.Fecha.Equal(fecha) {
			continue
		}
		if sucursalIDs != nil && !containsID(sucursalIDs, c.SucursalID) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCajaRepo) FindAbiertaTx(_ *gorm.DB, id uuid.UUID, _ string) (*model.Caja, error) {
	if r.antesDeBloquear != nil {
		r.antesDeBloquear()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cajas[id]
	if !ok || c.Estado != model.CajaAbierta {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCajaRepo) CerrarTx(_ *gorm.DB, id uuid.UUID, cierreMonto decimal.Decimal, usuarioID uuid.UUID, cerradaEn time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cajas[id]
	if !ok || c.Estado != model.CajaAbierta {
		return 0, nil
	}
	c.Estado = model.CajaCerrada
	c.CierreMonto = &cierreMonto
	c.CierreUsuarioID = &usuarioID
	c.CerradaEn = &cerradaEn
	return 1, nil
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

// ── Venta ─────────────────────────────────────────────────────────────────────

type fakeVentaRepo struct {
	mu     sync.Mutex
	ventas []model.Venta
}

func newFakeVentaRepo() *fakeVentaRepo { return &fakeVentaRepo{} }

func (r *fakeVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas = append(r.ventas, *v)
	return nil
}

func (r *fakeVentaRepo) SumTotalByCaja(_ context.Context, cajaID uuid.UUID) (decimal.Decimal, error) {
	return r.sum(cajaID), nil
}

func (r *fakeVentaRepo) SumTotalByCajaTx(_ *gorm.DB, cajaID uuid.UUID) (decimal.Decimal, error) {
	return r.sum(cajaID), nil
}

func (r *fakeVentaRepo) sum(cajaID uuid.UUID) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for i := range r.ventas {
		if r.ventas[i].CajaID == cajaID {
			total = total.Add(r.ventas[i].Total)
		}
	}
	return total
}

func (r *fakeVentaRepo) List(_ context.Context, _ dto.VentaFilter, _ []uuid.UUID) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Venta, len(r.ventas))
	copy(out, r.ventas)
	return out, int64(len(out)), nil
}

func (r *fakeVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*fakeVentaRepo)(nil)

// ── Producto ──────────────────────────────────────────────────────────────────

type fakeProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
	// referenciados marks products with ventas; Delete fails on them the way
	// the RESTRICT foreign key would.
	referenciados map[uuid.UUID]bool
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{
		productos:     make(map[uuid.UUID]*model.Producto),
		referenciados: make(map[uuid.UUID]bool),
	}
}

func (r *fakeProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductoRepo) List(_ context.Context, sucursalIDs []uuid.UUID) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Producto
	for _, p := range r.productos {
		if sucursalIDs != nil && !containsID(sucursalIDs, p.SucursalID) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *fakeProductoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.referenciados[id] {
		return gorm.ErrForeignKeyViolated
	}
	delete(r.productos, id)
	return nil
}

func (r *fakeProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock -= cantidad
	if p.Stock < 0 {
		p.Stock = 0
	}
	r.referenciados[id] = true
	return nil
}

func (r *fakeProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*fakeProductoRepo)(nil)

// ── Sucursal ──────────────────────────────────────────────────────────────────

type fakeSucursalRepo struct {
	mu         sync.Mutex
	sucursales map[uuid.UUID]*model.Sucursal
}

func newFakeSucursalRepo() *fakeSucursalRepo {
	return &fakeSucursalRepo{sucursales: make(map[uuid.UUID]*model.Sucursal)}
}

func (r *fakeSucursalRepo) agregar(nombre string) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.sucursales[id] = &model.Sucursal{ID: id, Nombre: nombre}
	r.mu.Unlock()
	return id
}

func (r *fakeSucursalRepo) Create(_ context.Context, s *model.Sucursal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sucursales {
		if existing.Nombre == s.Nombre {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sucursales[s.ID] = &cp
	return nil
}

func (r *fakeSucursalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sucursal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sucursales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSucursalRepo) List(_ context.Context) ([]model.Sucursal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sucursal
	for _, s := range r.sucursales {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSucursalRepo) Update(_ context.Context, s *model.Sucursal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sucursales[s.ID] = &cp
	return nil
}

func (r *fakeSucursalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sucursales, id)
	return nil
}

var _ repository.SucursalRepository = (*fakeSucursalRepo)(nil)

// ── Usuario ───────────────────────────────────────────────────────────────────

type fakeUsuarioRepo struct {
	mu       sync.Mutex
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.usuarios {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Perfil != nil {
		u.Perfil.UsuarioID = u.ID
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUsuarioRepo) FindPerfilByUsuarioID(_ context.Context, usuarioID uuid.UUID) (*model.Perfil, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[usuarioID]
	if !ok || u.Perfil == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return u.Perfil, nil
}

func (r *fakeUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUsuarioRepo) ActualizarPerfil(_ context.Context, perfil *model.Perfil, sucursales []model.Sucursal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[perfil.UsuarioID]
	if !ok || u.Perfil == nil {
		return gorm.ErrRecordNotFound
	}
	u.Perfil.Rol = perfil.Rol
	u.Perfil.Sucursales = sucursales
	return nil
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

// ── Permisos stub ─────────────────────────────────────────────────────────────

// stubPermisos resolves from a plain map, letting tests mutate grants between
// calls without a usuario repo.
type stubPermisos struct {
	mu    sync.Mutex
	porID map[uuid.UUID]Permisos
}

func newStubPermisos() *stubPermisos {
	return &stubPermisos{porID: make(map[uuid.UUID]Permisos)}
}

func (s *stubPermisos) conceder(usuarioID uuid.UUID, p Permisos) {
	s.mu.Lock()
	s.porID[usuarioID] = p
	s.mu.Unlock()
}

func (s *stubPermisos) Resolver(_ context.Context, usuarioID uuid.UUID) (Permisos, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.porID[usuarioID], nil
}

var _ PermisoService = (*stubPermisos)(nil)

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
