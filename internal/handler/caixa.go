package handler

import (
	"net/http"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CaixaHandler struct {
	svc    service.CaixaService
	reconc service.ReconciliacaoService
}

func NewCaixaHandler(svc service.CaixaService, reconc service.ReconciliacaoService) *CaixaHandler {
	return &CaixaHandler{svc: svc, reconc: reconc}
}

// Abrir godoc
// @Summary Abre uma nova sessão de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.SessaoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/sessoes [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	resp, err := h.svc.AbrirSessao(c.Request.Context(), identidade(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary Fecha a sessão de caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.SessaoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/sessoes/{id}/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.FecharSessao(c.Request.Context(), id, identidade(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atual godoc
// @Summary Retorna a sessão de caixa aberta no momento
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessaoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/sessoes/atual [get]
func (h *CaixaHandler) Atual(c *gin.Context) {
	resp, err := h.svc.SessaoAtual(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("Nenhuma sessão de caixa aberta"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista sessões de caixa com filtros e paginação
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param periodo_inicio query string false "YYYY-MM-DD"
// @Param periodo_fim query string false "YYYY-MM-DD (inclusive)"
// @Param mes query string false "YYYY-MM"
// @Param aberto_por query string false "Substring do nome do operador"
// @Param fechado_por query string false "Substring do nome do operador"
// @Param status query string false "aberta | fechada"
// @Param page query int false "Página (1-based)"
// @Param size query int false "Tamanho da página (máx 100)"
// @Success 200 {object} dto.SessaoListResponse
// @Router /v1/caixa/sessoes [get]
func (h *CaixaHandler) Listar(c *gin.Context) {
	var filter dto.SessaoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarSessoes(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deletar godoc
// @Summary Exclui uma sessão de caixa (administrativo)
// @Tags caixa
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 204
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/sessoes/{id} [delete]
func (h *CaixaHandler) Deletar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.DeletarSessao(c.Request.Context(), id, identidade(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegistrarMovimentacao godoc
// @Summary Registra uma entrada ou retirada manual de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimentacaoRequest true "Movimentação"
// @Success 201 {object} dto.MovimentacaoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/caixa/movimentacoes [post]
func (h *CaixaHandler) RegistrarMovimentacao(c *gin.Context) {
	var req dto.MovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimentacao(c.Request.Context(), identidade(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMovimentacoes godoc
// @Summary Lista as movimentações de uma sessão
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {array} dto.MovimentacaoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/sessoes/{id}/movimentacoes [get]
func (h *CaixaHandler) ListarMovimentacoes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListarMovimentacoes(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconciliacao godoc
// @Summary Reconciliação financeira da sessão
// @Description Derivada sob demanda a partir das vendas na janela da sessão e das movimentações manuais. Nunca é persistida.
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Param contagem query number false "Contagem física da gaveta"
// @Success 200 {object} dto.ReconciliacaoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/sessoes/{id}/reconciliacao [get]
func (h *CaixaHandler) Reconciliacao(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	contagem, ok := parseContagem(c)
	if !ok {
		return
	}
	resp, err := h.reconc.Reconciliar(c.Request.Context(), id, contagem)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReconciliacaoCSV godoc
// @Summary Exporta a reconciliação da sessão em CSV
// @Tags caixa
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Param contagem query number false "Contagem física da gaveta"
// @Success 200 {string} string "CSV"
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/sessoes/{id}/reconciliacao.csv [get]
func (h *CaixaHandler) ReconciliacaoCSV(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	contagem, ok := parseContagem(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="reconciliacao-`+id.String()+`.csv"`)
	if err := h.reconc.ExportarCSV(c.Request.Context(), id, contagem, c.Writer); err != nil {
		writeError(c, err)
	}
}

func parseContagem(c *gin.Context) (*decimal.Decimal, bool) {
	raw := c.Query("contagem")
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		c.JSON(http.StatusBadRequest, apierror.New("contagem inválida"))
		return nil, false
	}
	return &d, true
}
