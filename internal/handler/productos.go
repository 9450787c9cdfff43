package handler

import (
	"net/http"

	"sucursalpos/internal/apierror"
	"sucursalpos/internal/dto"
	"sucursalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductosHandler) Obtener(c *gin.Context) {
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), usuarioID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Listar(c *gin.Context) {
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), usuarioID, c.Query("sucursal"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), usuarioID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Eliminar(c *gin.Context) {
	usuarioID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), usuarioID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
