package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cajaFixture struct {
	svc        CajaService
	cajaRepo   *fakeCajaRepo
	ventaRepo  *fakeVentaRepo
	sucRepo    *fakeSucursalRepo
	permisos   *stubPermisos
	sucursalID uuid.UUID
	cajeroID   uuid.UUID
}

func newCajaFixture(t *testing.T, permitirReapertura bool) *cajaFixture {
	t.Helper()
	ventaRepo := newFakeVentaRepo()
	cajaRepo := newFakeCajaRepo(ventaRepo)
	sucRepo := newFakeSucursalRepo()
	permisos := newStubPermisos()

	sucursalID := sucRepo.agregar("Centro")
	cajeroID := uuid.New()
	permisos.conceder(cajeroID, Permisos{
		Rol:         model.RolCajero,
		SucursalIDs: []uuid.UUID{sucursalID},
	})

	return &cajaFixture{
		svc:        NewCajaService(cajaRepo, ventaRepo, sucRepo, permisos, PoliticaPorDefecto(), permitirReapertura),
		cajaRepo:   cajaRepo,
		ventaRepo:  ventaRepo,
		sucRepo:    sucRepo,
		permisos:   permisos,
		sucursalID: sucursalID,
		cajeroID:   cajeroID,
	}
}

func (f *cajaFixture) abrir(t *testing.T, monto string) *dto.CajaResponse {
	t.Helper()
	resp, err := f.svc.Abrir(context.Background(), f.cajeroID, dto.AbrirCajaRequest{
		SucursalID:    f.sucursalID.String(),
		Fecha:         "2026-08-30",
		AperturaMonto: decimal.RequireFromString(monto),
	})
	require.NoError(t, err)
	return resp
}

func TestAbrirCaja(t *testing.T) {
	f := newCajaFixture(t, false)

	resp := f.abrir(t, "100.00")

	assert.Equal(t, model.CajaAbierta, resp.Estado)
	assert.Equal(t, "2026-08-30", resp.Fecha)
	assert.Equal(t, "100", resp.AperturaMonto.String())
	assert.Nil(t, resp.CierreMonto)
}

func TestAbrirCajaFechaPorDefecto(t *testing.T) {
	f := newCajaFixture(t, false)

	// Without fecha the caja opens on the server's local business day, not
	// the UTC one.
	resp, err := f.svc.Abrir(context.Background(), f.cajeroID, dto.AbrirCajaRequest{
		SucursalID:    f.sucursalID.String(),
		AperturaMonto: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), resp.Fecha)
}

func TestAbrirCajaDuplicada(t *testing.T) {
	f := newCajaFixture(t, false)
	f.abrir(t, "100.00")

	_, err := f.svc.Abrir(context.Background(), f.cajeroID, dto.AbrirCajaRequest{
		SucursalID:    f.sucursalID.String(),
		Fecha:         "2026-08-30",
		AperturaMonto: decimal.RequireFromString("50.00"),
	})
	assert.ErrorIs(t, err, ErrCajaDuplicada)
}

func TestAbrirCajaConcurrente(t *testing.T) {
	// With reapertura enabled the application pre-check is skipped and the
	// unique-index error path decides the race: exactly one apertura wins.
	f := newCajaFixture(t, true)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Abrir(context.Background(), f.cajeroID, dto.AbrirCajaRequest{
				SucursalID:    f.sucursalID.String(),
				Fecha:         "2026-08-30",
				AperturaMonto: decimal.RequireFromString("100.00"),
			})
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, err := range errs {
		if err == nil {
			exitos++
		} else {
			assert.ErrorIs(t, err, ErrCajaDuplicada)
		}
	}
	assert.Equal(t, 1, exitos)
}

func TestAbrirCajaRolNoAutorizado(t *testing.T) {
	f := newCajaFixture(t, false)
	supervisorID := uuid.New()
	f.permisos.conceder(supervisorID, Permisos{
		Rol:         model.RolSupervisor,
		SucursalIDs: []uuid.UUID{f.sucursalID},
	})

	_, err := f.svc.Abrir(context.Background(), supervisorID, dto.AbrirCajaRequest{
		SucursalID:    f.sucursalID.String(),
		Fecha:         "2026-08-30",
		AperturaMonto: decimal.RequireFromString("100.00"),
	})
	assert.ErrorIs(t, err, ErrPermisoDenegado)
}

func TestAbrirCajaSucursalAjena(t *testing.T) {
	f := newCajaFixture(t, false)
	otraSucursal := f.sucRepo.agregar("Norte")

	_, err := f.svc.Abrir(context.Background(), f.cajeroID, dto.AbrirCajaRequest{
		SucursalID:    otraSucursal.String(),
		Fecha:         "2026-08-30",
		AperturaMonto: decimal.RequireFromString("100.00"),
	})
	assert.ErrorIs(t, err, ErrPermisoDenegado)
}

func TestAbrirCajaSinPerfil(t *testing.T) {
	f := newCajaFixture(t, false)

	// Unknown user resolves to zero-value Permisos: everything denied.
	_, err := f.svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		SucursalID:    f.sucursalID.String(),
		Fecha:         "2026-08-30",
		AperturaMonto: decimal.RequireFromString("100.00"),
	})
	assert.ErrorIs(t, err, ErrPermisoDenegado)
}

func TestAbrirCajaMontoNegativo(t *testing.T) {
	f := newCajaFixture(t, false)

	_, err := f.svc.Abrir(context.Background(), f.cajeroID, dto.AbrirCajaRequest{
		SucursalID:    f.sucursalID.String(),
		Fecha:         "2026-08-30",
		AperturaMonto: decimal.RequireFromString("-1.00"),
	})
	assert.ErrorIs(t, err, ErrValidacion)
}

func TestCerrarCajaExacto(t *testing.T) {
	f := newCajaFixture(t, false)
	caja := f.abrir(t, "100.00")
	cajaID := uuid.MustParse(caja.ID)

	// Sale totals live in the venta repo; 3 × 9.99 = 29.97
	require.NoError(t, f.ventaRepo.CreateTx(context.Background(), nil, &model.Venta{
		CajaID:         cajaID,
		ProductoID:     uuid.New(),
		Cantidad:       3,
		PrecioUnitario: decimal.RequireFromString("9.99"),
		Total:          decimal.RequireFromString("29.97"),
		UsuarioID:      f.cajeroID,
	}))

	resp, err := f.svc.Cerrar(context.Background(), f.cajeroID, cajaID)
	require.NoError(t, err)

	assert.Equal(t, model.CajaCerrada, resp.Estado)
	require.NotNil(t, resp.CierreMonto)
	assert.Equal(t, "129.97", resp.CierreMonto.String())
}

func TestCerrarCajaSinVentas(t *testing.T) {
	f := newCajaFixture(t, false)
	caja := f.abrir(t, "250.50")

	resp, err := f.svc.Cerrar(context.Background(), f.cajeroID, uuid.MustParse(caja.ID))
	require.NoError(t, err)
	require.NotNil(t, resp.CierreMonto)
	assert.Equal(t, "250.5", resp.CierreMonto.String())
}

func TestCerrarCajaYaCerrada(t *testing.T) {
	f := newCajaFixture(t, false)
	caja := f.abrir(t, "100.00")
	cajaID := uuid.MustParse(caja.ID)

	_, err := f.svc.Cerrar(context.Background(), f.cajeroID, cajaID)
	require.NoError(t, err)

	_, err = f.svc.Cerrar(context.Background(), f.cajeroID, cajaID)
	assert.ErrorIs(t, err, ErrEstadoInvalido)
}

func TestCerrarCajaConcurrente(t *testing.T) {
	f := newCajaFixture(t, false)
	caja := f.abrir(t, "100.00")
	cajaID := uuid.MustParse(caja.ID)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Cerrar(context.Background(), f.cajeroID, cajaID)
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, err := range errs {
		if err == nil {
			exitos++
		} else {
			assert.ErrorIs(t, err, ErrEstadoInvalido)
		}
	}
	assert.Equal(t, 1, exitos)
}

func TestPrevisualizarCierreNoMuta(t *testing.T) {
	f := newCajaFixture(t, false)
	caja := f.abrir(t, "100.00")
	cajaID := uuid.MustParse(caja.ID)

	require.NoError(t, f.ventaRepo.CreateTx(context.Background(), nil, &model.Venta{
		CajaID: cajaID, ProductoID: uuid.New(), Cantidad: 1,
		PrecioUnitario: decimal.RequireFromString("29.97"),
		Total:          decimal.RequireFromString("29.97"),
		UsuarioID:      f.cajeroID,
	}))

	prev, err := f.svc.PrevisualizarCierre(context.Background(), f.cajeroID, cajaID)
	require.NoError(t, err)
	assert.Equal(t, model.CajaAbierta, prev.Estado)
	assert.Equal(t, "29.97", prev.TotalVendido.String())
	assert.Equal(t, "129.97", prev.Esperado.String())

	// The caja itself is untouched: still ABIERTA, no cierre recorded.
	actual, err := f.cajaRepo.FindByID(context.Background(), cajaID)
	require.NoError(t, err)
	assert.Equal(t, model.CajaAbierta, actual.Estado)
	assert.Nil(t, actual.CierreMonto)
}

func TestDetalleCaja(t *testing.T) {
	f := newCajaFixture(t, false)
	caja := f.abrir(t, "100.00")
	cajaID := uuid.MustParse(caja.ID)

	require.NoError(t, f.ventaRepo.CreateTx(context.Background(), nil, &model.Venta{
		CajaID: cajaID, ProductoID: uuid.New(), Cantidad: 2,
		PrecioUnitario: decimal.RequireFromString("5.00"),
		Total:          decimal.RequireFromString("10.00"),
		UsuarioID:      f.cajeroID,
	}))

	det, err := f.svc.Detalle(context.Background(), f.cajeroID, cajaID)
	require.NoError(t, err)
	assert.Equal(t, caja.ID, det.Caja.ID)
	require.Len(t, det.Ventas, 1)
	assert.Equal(t, 2, det.Ventas[0].Cantidad)
}

func TestDelDiaFiltraPorPermisos(t *testing.T) {
	f := newCajaFixture(t, false)
	f.abrir(t, "100.00")

	// A caja in another sucursal, opened by an admin-like grant.
	otraSucursal := f.sucRepo.agregar("Norte")
	otroCajero := uuid.New()
	f.permisos.conceder(otroCajero, Permisos{
		Rol:         model.RolCajero,
		SucursalIDs: []uuid.UUID{otraSucursal},
	})
	_, err := f.svc.Abrir(context.Background(), otroCajero, dto.AbrirCajaRequest{
		SucursalID:    otraSucursal.String(),
		Fecha:         "2026-08-30",
		AperturaMonto: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)

	// The original cajero only sees their own sucursal.
	cajas, err := f.svc.DelDia(context.Background(), f.cajeroID, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, cajas, 1)
	assert.Equal(t, f.sucursalID.String(), cajas[0].SucursalID)

	// An administrative grant sees both.
	adminID := uuid.New()
	f.permisos.conceder(adminID, Permisos{Rol: model.RolAdministrador, Todas: true})
	cajas, err = f.svc.DelDia(context.Background(), adminID, "2026-08-30")
	require.NoError(t, err)
	assert.Len(t, cajas, 2)
}

func TestCerrarCajaSucursalAjena(t *testing.T) {
	f := newCajaFixture(t, false)
	caja := f.abrir(t, "100.00")

	ajeno := uuid.New()
	f.permisos.conceder(ajeno, Permisos{
		Rol:         model.RolCajero,
		SucursalIDs: []uuid.UUID{uuid.New()},
	})

	_, err := f.svc.Cerrar(context.Background(), ajeno, uuid.MustParse(caja.ID))
	assert.ErrorIs(t, err, ErrPermisoDenegado)
}
