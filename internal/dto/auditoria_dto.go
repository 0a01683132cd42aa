package dto

import "encoding/json"

// VendaDeletadaResponse is one audit record in GET /v1/vendas/deletadas.
// Payload is passed through verbatim when it parses as JSON and as a quoted
// string otherwise, so corrupted snapshots remain inspectable.
//
// ProdutoNome/Quantidade/ResumoPagamentos are display enrichments decoded
// from the payload; for multi-item sales ProdutoNome describes the first
// item plus a count suffix.
type VendaDeletadaResponse struct {
	ID               string          `json:"id"`
	VendaID          string          `json:"saleId"`
	Formato          string          `json:"saleType"`
	Payload          json.RawMessage `json:"payload"`
	ProdutoNome      string          `json:"produtoNome,omitempty"`
	Quantidade       int             `json:"quantidade,omitempty"`
	ResumoPagamentos string          `json:"resumoPagamentos,omitempty"`
	DataVenda        string          `json:"dataVenda"`
	DeletadoPor      string          `json:"deletedBy"`
	DeletadaEm       string          `json:"deletedAt"`
	RestauradaEm     *string         `json:"restoredAt,omitempty"`
	Restauravel      bool            `json:"restorable"`
}
