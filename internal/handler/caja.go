package handler

import (
	"net/http"

	"sucursalpos/internal/apierror"
	"sucursalpos/internal/dto"
	"sucursalpos/internal/middleware"
	"sucursalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct {
	svc      service.CajaService
	ventaSvc service.VentaService
}

func NewCajaHandler(svc service.CajaService, ventaSvc service.VentaService) *CajaHandler {
	return &CajaHandler{svc: svc, ventaSvc: ventaSvc}
}

// Abrir godoc
// @Summary Abre la caja del día para una sucursal
// @Tags cajas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.CajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cajas [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DelDia godoc
// @Summary Lista las cajas de una fecha en las sucursales permitidas
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Param fecha query string false "Fecha AAAA-MM-DD, por defecto hoy"
// @Success 200 {array} dto.CajaResponse
// @Router /v1/cajas [get]
func (h *CajaHandler) DelDia(c *gin.Context) {
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.DelDia(c.Request.Context(), usuarioID, c.Query("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle godoc
// @Summary Detalle de una caja con sus ventas
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Success 200 {object} dto.CajaDetalleResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cajas/{id} [get]
func (h *CajaHandler) Detalle(c *gin.Context) {
	usuarioID, cajaID, ok := userAndCajaID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Detalle(c.Request.Context(), usuarioID, cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CierrePrevio godoc
// @Summary Previsualiza el cierre sin modificar la caja
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Success 200 {object} dto.CierrePrevioResponse
// @Router /v1/cajas/{id}/cierre-previo [get]
func (h *CajaHandler) CierrePrevio(c *gin.Context) {
	usuarioID, cajaID, ok := userAndCajaID(c)
	if !ok {
		return
	}
	resp, err := h.svc.PrevisualizarCierre(c.Request.Context(), usuarioID, cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra una caja abierta
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Success 200 {object} dto.CajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cajas/{id}/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	usuarioID, cajaID, ok := userAndCajaID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarVenta godoc
// @Summary Registra una venta en una caja abierta
// @Tags cajas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Param body body dto.RegistrarVentaRequest true "Línea de venta"
// @Success 201 {object} dto.VentaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cajas/{id}/ventas [post]
func (h *CajaHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, cajaID, ok := userAndCajaID(c)
	if !ok {
		return
	}
	resp, err := h.ventaSvc.Registrar(c.Request.Context(), usuarioID, cajaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Param helpers ─────────────────────────────────────────────────────────────

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return uuid.Nil, false
	}
	return id, true
}

func userAndCajaID(c *gin.Context) (usuarioID, cajaID uuid.UUID, ok bool) {
	usuarioID, ok = currentUserID(c)
	if !ok {
		return
	}
	cajaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return usuarioID, uuid.Nil, false
	}
	return usuarioID, cajaID, true
}
