package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"sucursalpos/internal/apierror"
	"sucursalpos/internal/dto"
	"sucursalpos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const precioCacheTTL = 4 * time.Hour

// ConsultaPreciosHandler serves the public price check endpoint.
// No authentication required and no side effects.
type ConsultaPreciosHandler struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewConsultaPreciosHandler(repo repository.ProductoRepository, rdb *redis.Client) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{repo: repo, rdb: rdb}
}

// GetPrecio godoc
// @Summary Consulta de precio por ID de producto (sin autenticación)
// @Tags precio
// @Produce json
// @Param id path string true "ID de producto"
// @Success 200 {object} dto.PrecioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{id} [get]
func (h *ConsultaPreciosHandler) GetPrecio(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	ctx := c.Request.Context()
	cacheKey := "precio:" + id.String()

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PrecioResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	producto, err := h.repo.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}

	resp := dto.PrecioResponse{
		ProductoID: producto.ID.String(),
		Nombre:     producto.Nombre,
		Precio:     producto.Precio,
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, precioCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
