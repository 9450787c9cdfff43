package handler

import (
	"net/http"
	"strconv"

	"sucursalpos/internal/dto"
	"sucursalpos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler {
	return &VentasHandler{svc: svc}
}

// Listar godoc
// @Summary Reporte de ventas por rango de fechas
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param desde query string false "Fecha inicial AAAA-MM-DD, por defecto hoy"
// @Param hasta query string false "Fecha final AAAA-MM-DD, por defecto hoy"
// @Param sucursal query string false "Restringe a una sucursal"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} dto.VentaListResponse
// @Router /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter := dto.VentaFilter{
		Desde:    c.Query("desde"),
		Hasta:    c.Query("hasta"),
		Sucursal: c.Query("sucursal"),
		Page:     page,
		Limit:    limit,
	}

	resp, err := h.svc.Listar(c.Request.Context(), usuarioID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
