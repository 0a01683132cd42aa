package handler

import (
	"net/http"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// Listar godoc
// @Summary Lista o log de vendas deletadas
// @Description Registros com payload corrompido continuam listados, marcados como não restauráveis.
// @Tags auditoria
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.VendaDeletadaResponse
// @Router /v1/vendas/deletadas [get]
func (h *AuditoriaHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarDeletadas(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Restaurar godoc
// @Summary Restaura uma venda deletada sob o ID original
// @Tags auditoria
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do registro de auditoria"
// @Success 201 {object} dto.VendaResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/vendas/deletadas/{id}/restaurar [post]
func (h *AuditoriaHandler) Restaurar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Restaurar(c.Request.Context(), id, identidade(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
