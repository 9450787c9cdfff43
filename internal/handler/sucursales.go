package handler

import (
	"net/http"

	"sucursalpos/internal/apierror"
	"sucursalpos/internal/dto"
	"sucursalpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SucursalesHandler struct{ svc service.SucursalService }

func NewSucursalesHandler(svc service.SucursalService) *SucursalesHandler {
	return &SucursalesHandler{svc: svc}
}

func (h *SucursalesHandler) Crear(c *gin.Context) {
	var req dto.SucursalRequest
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

func (h *SucursalesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SucursalesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SucursalesHandler) Actualizar(c *gin.Context) {
	var req dto.SucursalRequest
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

func (h *SucursalesHandler) Eliminar(c *gin.Context) {
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
