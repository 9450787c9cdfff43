package router

import (
	"time"

	"sucursalpos/internal/config"
	"sucursalpos/internal/handler"
	"sucursalpos/internal/middleware"
	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"
	"sucursalpos/internal/service"
	"sucursalpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	permisoSvc := service.NewPermisoService(usuarioRepo)
	politica := service.PoliticaPorDefecto()

	authSvc := service.NewAuthService(usuarioRepo, sucursalRepo, permisoSvc, cfg)
	sucursalSvc := service.NewSucursalService(sucursalRepo, permisoSvc)
	productoSvc := service.NewProductoService(productoRepo, sucursalRepo, permisoSvc)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo, sucursalRepo, permisoSvc, politica, cfg.CajaPermitirReapertura)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, productoRepo, permisoSvc, politica, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	sucursalesH := handler.NewSucursalesHandler(sucursalSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, ventaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/precio/:id", consultaH.GetPrecio)

	// Protected routes. RequireRole is the coarse JWT gate; services re-check
	// against the perfil so sucursal scoping and live grants hold.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	adminRoles := middleware.RequireRole(string(model.RolAdministrador), string(model.RolSubadministrador))
	v1 := r.Group("/v1", jwtMW)
	{
		cajas := v1.Group("/cajas")
		{
			cajas.POST("", cajaH.Abrir)
			cajas.GET("", cajaH.DelDia)
			cajas.GET("/:id", cajaH.Detalle)
			cajas.GET("/:id/cierre-previo", cajaH.CierrePrevio)
			cajas.POST("/:id/cerrar", cajaH.Cerrar)
			cajas.POST("/:id/ventas", cajaH.RegistrarVenta)
		}

		v1.GET("/ventas", ventasH.Listar)

		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id", productosH.Obtener)
		prods := v1.Group("/productos", adminRoles)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Eliminar)
		}

		v1.GET("/sucursales", sucursalesH.Listar)
		v1.GET("/sucursales/:id", sucursalesH.Obtener)
		sucs := v1.Group("/sucursales", adminRoles)
		{
			sucs.POST("", sucursalesH.Crear)
			sucs.PUT("/:id", sucursalesH.Actualizar)
			sucs.DELETE("/:id", sucursalesH.Eliminar)
		}

		usuarios := v1.Group("/usuarios", adminRoles)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id/perfil", authH.ActualizarPerfil)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
