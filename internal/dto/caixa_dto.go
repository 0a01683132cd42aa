package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MovimentacaoRequest records a manual cash adjustment against the currently
// open session (or an explicit session when sessao_id is given).
type MovimentacaoRequest struct {
	SessaoID  string          `json:"sessao_id"  validate:"omitempty,uuid"`
	Tipo      string          `json:"tipo"       validate:"required,oneof=entrada retirada"`
	Valor     decimal.Decimal `json:"valor"      validate:"required,gt=0"`
	Descricao string          `json:"descricao"  validate:"required,min=3"`
}

// SessaoFilter is bound from the query string of GET /v1/caixa/sessoes.
// All filters are optional and combinable.
type SessaoFilter struct {
	PeriodoInicio string `form:"periodo_inicio"` // YYYY-MM-DD
	PeriodoFim    string `form:"periodo_fim"`    // YYYY-MM-DD (inclusive)
	Mes           string `form:"mes"`            // YYYY-MM
	AbertoPor     string `form:"aberto_por"`     // substring match on operator name
	FechadoPor    string `form:"fechado_por"`    // substring match on operator name
	Status        string `form:"status" validate:"omitempty,oneof=aberta fechada"`
	Page          int    `form:"page,default=1"  validate:"min=1"`
	Size          int    `form:"size,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessaoResponse struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	AbertoPor      string  `json:"aberto_por"`
	AbertoPorNome  string  `json:"aberto_por_nome"`
	AbertaEm       string  `json:"aberta_em"`
	FechadoPor     *string `json:"fechado_por"`
	FechadoPorNome *string `json:"fechado_por_nome"`
	FechadaEm      *string `json:"fechada_em"`
}

type SessaoListResponse struct {
	Items   []SessaoResponse `json:"items"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	HasNext bool             `json:"hasNext"`
}

type MovimentacaoResponse struct {
	ID        string          `json:"id"`
	SessaoID  string          `json:"sessao_id"`
	Tipo      string          `json:"tipo"`
	Valor     decimal.Decimal `json:"valor"`
	Descricao string          `json:"descricao"`
	Operador  string          `json:"operador"`
	Data      string          `json:"data"`
}

// PorPagamento aggregates sale payments by method for a session window.
// Dinheiro is net of change given.
type PorPagamento struct {
	Dinheiro      decimal.Decimal `json:"dinheiro"`
	CartaoCredito decimal.Decimal `json:"cartao_credito"`
	CartaoDebito  decimal.Decimal `json:"cartao_debito"`
	Pix           decimal.Decimal `json:"pix"`
}

// VendaDetalhe is one payment line of one sale, carried for line-level audit
// and CSV export.
type VendaDetalhe struct {
	VendaID  string          `json:"venda_id"`
	Metodo   string          `json:"metodo"`
	Valor    decimal.Decimal `json:"valor"`
	Troco    decimal.Decimal `json:"troco"`
	Operador string          `json:"operador"`
	Data     string          `json:"data"`
}

// ReconciliacaoResponse is the derived (never persisted) reconciliation of a
// session. Variacao is present only when the caller supplied a physical count.
type ReconciliacaoResponse struct {
	SessaoID         string                 `json:"sessao_id"`
	Status           string                 `json:"status"`
	PorPagamento     PorPagamento           `json:"por_pagamento"`
	Movimentacoes    []MovimentacaoResponse `json:"movimentacoes"`
	TotalMovimentado decimal.Decimal        `json:"total_movimentado"`
	Vendas           []VendaDetalhe         `json:"vendas"`
	DinheiroEsperado decimal.Decimal        `json:"dinheiro_esperado"`
	Contagem         *decimal.Decimal       `json:"contagem,omitempty"`
	Variacao         *decimal.Decimal       `json:"variacao,omitempty"`
}
