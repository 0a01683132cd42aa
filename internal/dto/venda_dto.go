package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VendaFilter is bound from the query string of GET /v1/vendas.
type VendaFilter struct {
	Data  string `form:"data"` // YYYY-MM-DD; empty = today
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	ProdutoID     *string         `json:"produto_id"     validate:"omitempty,uuid"`
	ProdutoNome   string          `json:"produto_nome"   validate:"required"`
	Quantidade    int             `json:"quantidade"     validate:"required,min=1"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario" validate:"required,gt=0"`
}

type PagamentoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=dinheiro cartao_credito cartao_debito pix"`
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	Troco  decimal.Decimal `json:"troco"  validate:"min=0"`
}

type RegistrarVendaRequest struct {
	Itens      []ItemVendaRequest `json:"itens"      validate:"required,min=1,dive"`
	Pagamentos []PagamentoRequest `json:"pagamentos" validate:"required,min=1,dive"`
	Desconto   decimal.Decimal    `json:"desconto"   validate:"min=0"`
	Acrescimo  decimal.Decimal    `json:"acrescimo"  validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVendaResponse struct {
	ProdutoNome   string          `json:"produto_nome"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	TotalItem     decimal.Decimal `json:"total_item"`
}

type PagamentoResponse struct {
	Metodo string          `json:"metodo"`
	Valor  decimal.Decimal `json:"valor"`
	Troco  decimal.Decimal `json:"troco"`
}

type VendaResponse struct {
	ID         string              `json:"id"`
	Formato    string              `json:"formato"`
	Operador   string              `json:"operador"`
	Itens      []ItemVendaResponse `json:"itens"`
	Pagamentos []PagamentoResponse `json:"pagamentos"`
	Subtotal   decimal.Decimal     `json:"subtotal"`
	Desconto   decimal.Decimal     `json:"desconto"`
	Acrescimo  decimal.Decimal     `json:"acrescimo"`
	Total      decimal.Decimal     `json:"total"`
	DataVenda  string              `json:"data_venda"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
