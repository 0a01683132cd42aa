package handler

import (
	"net/http"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VendasHandler struct{ svc service.VendaService }

func NewVendasHandler(svc service.VendaService) *VendasHandler { return &VendasHandler{svc: svc} }

// Registrar godoc
// @Summary Registra uma venda finalizada
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVendaRequest true "Venda"
// @Success 201 {object} dto.VendaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/vendas [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenda(c.Request.Context(), identidade(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Buscar godoc
// @Summary Busca uma venda pelo ID
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 200 {object} dto.VendaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/vendas/{id} [get]
func (h *VendasHandler) Buscar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.BuscarVenda(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista vendas do dia (ou de uma data específica)
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param data query string false "YYYY-MM-DD; vazio = hoje"
// @Param page query int false "Página (1-based)"
// @Param limit query int false "Tamanho da página (máx 200)"
// @Success 200 {object} dto.VendaListResponse
// @Router /v1/vendas [get]
func (h *VendasHandler) Listar(c *gin.Context) {
	var filter dto.VendaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarVendas(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deletar godoc
// @Summary Exclui uma venda, gravando o snapshot de auditoria
// @Description A exclusão e o registro de auditoria acontecem na mesma transação. Não existe estado em que a venda sumiu sem rastro.
// @Tags vendas
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 204
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/vendas/{id} [delete]
func (h *VendasHandler) Deletar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.DeletarVenda(c.Request.Context(), id, identidade(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
