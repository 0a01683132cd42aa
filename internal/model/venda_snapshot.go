package model

// venda_snapshot.go — serialization of deleted sales into audit payloads and
// back. The two historical shapes are modeled as an explicit tagged union
// (LegacySnapshot / CheckoutSnapshot) discriminated by the sale_shape field;
// shape-sniffing over untagged pre-existing payloads is confined to
// DecodeSnapshot, the single translation function.

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPayloadCorrompido marks a payload that failed to parse. Such records are
// preserved verbatim and excluded from reconstruction, never a load failure.
var ErrPayloadCorrompido = errors.New("payload da venda deletada não pôde ser interpretado")

// SnapshotItem is one sale line inside an audit payload.
type SnapshotItem struct {
	ProdutoID     *uuid.UUID      `json:"produto_id,omitempty"`
	ProdutoNome   string          `json:"produto_nome"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	TotalItem     decimal.Decimal `json:"total_item"`
}

// SnapshotPagamento is one payment inside an audit payload.
type SnapshotPagamento struct {
	Metodo string          `json:"metodo"`
	Valor  decimal.Decimal `json:"valor"`
	Troco  decimal.Decimal `json:"troco"`
}

// CheckoutSnapshot serializes the multi-item, multi-payment sale shape.
type CheckoutSnapshot struct {
	Formato      string              `json:"sale_shape"`
	Itens        []SnapshotItem      `json:"itens"`
	Pagamentos   []SnapshotPagamento `json:"pagamentos"`
	Desconto     decimal.Decimal     `json:"desconto"`
	Acrescimo    decimal.Decimal     `json:"acrescimo"`
	Total        decimal.Decimal     `json:"total"`
	OperadorNome string              `json:"operador_nome,omitempty"`
	DataVenda    time.Time           `json:"data_venda"`
}

// LegacySnapshot serializes the pre-checkout flat shape: one product, one
// implicit payment.
type LegacySnapshot struct {
	Formato        string          `json:"sale_shape"`
	ProdutoID      *uuid.UUID      `json:"produto_id,omitempty"`
	ProdutoNome    string          `json:"produto_nome"`
	Quantidade     int             `json:"quantidade"`
	PrecoUnitario  decimal.Decimal `json:"preco_unitario"`
	Total          decimal.Decimal `json:"total"`
	FormaPagamento string          `json:"forma_pagamento"`
	OperadorNome   string          `json:"operador_nome,omitempty"`
	DataVenda      time.Time       `json:"data_venda"`
}

// EncodeSnapshot serializes a sale into its audit payload. The payload is
// sufficient to fully reconstruct the sale; new payloads always carry the
// explicit sale_shape discriminator.
func EncodeSnapshot(v *Venda) (formato string, payload []byte, err error) {
	if v.Formato == FormatoLegacy && len(v.Itens) == 1 && len(v.Pagamentos) == 1 {
		snap := LegacySnapshot{
			Formato:        FormatoLegacy,
			ProdutoID:      v.Itens[0].ProdutoID,
			ProdutoNome:    v.Itens[0].ProdutoNome,
			Quantidade:     v.Itens[0].Quantidade,
			PrecoUnitario:  v.Itens[0].PrecoUnitario,
			Total:          v.Total,
			FormaPagamento: v.Pagamentos[0].Metodo,
			OperadorNome:   v.OperadorNome,
			DataVenda:      v.DataVenda,
		}
		payload, err = json.Marshal(snap)
		return FormatoLegacy, payload, err
	}

	snap := CheckoutSnapshot{
		Formato:      FormatoCheckout,
		Desconto:     v.Desconto,
		Acrescimo:    v.Acrescimo,
		Total:        v.Total,
		OperadorNome: v.OperadorNome,
		DataVenda:    v.DataVenda,
	}
	for _, it := range v.Itens {
		snap.Itens = append(snap.Itens, SnapshotItem{
			ProdutoID:     it.ProdutoID,
			ProdutoNome:   it.ProdutoNome,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
			TotalItem:     it.TotalItem,
		})
	}
	for _, p := range v.Pagamentos {
		snap.Pagamentos = append(snap.Pagamentos, SnapshotPagamento{
			Metodo: p.Metodo,
			Valor:  p.Valor,
			Troco:  p.Troco,
		})
	}
	payload, err = json.Marshal(snap)
	return FormatoCheckout, payload, err
}

// DecodeSnapshot rebuilds a Venda from an audit payload. This is the single
// place where the polymorphic shape is resolved: an explicit sale_shape tag
// takes precedence; untagged payloads fall back to sniffing (presence of an
// itens array vs flat product fields). The returned Venda has no ID — the
// caller assigns the original sale id from the audit record.
func DecodeSnapshot(formato string, payload []byte) (*Venda, error) {
	var probe struct {
		SaleShape string          `json:"sale_shape"`
		Itens     json.RawMessage `json:"itens"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, ErrPayloadCorrompido
	}

	shape := probe.SaleShape
	if shape == "" {
		shape = formato
	}
	if shape == "" {
		if len(probe.Itens) > 0 && string(probe.Itens) != "null" {
			shape = FormatoCheckout
		} else {
			shape = FormatoLegacy
		}
	}

	switch shape {
	case FormatoCheckout:
		var snap CheckoutSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, ErrPayloadCorrompido
		}
		if len(snap.Itens) == 0 {
			return nil, ErrPayloadCorrompido
		}
		v := &Venda{
			Formato:      FormatoCheckout,
			OperadorNome: snap.OperadorNome,
			Desconto:     snap.Desconto,
			Acrescimo:    snap.Acrescimo,
			Total:        snap.Total,
			DataVenda:    snap.DataVenda,
		}
		subtotal := decimal.Zero
		for _, it := range snap.Itens {
			subtotal = subtotal.Add(it.TotalItem)
			v.Itens = append(v.Itens, VendaItem{
				ProdutoID:     it.ProdutoID,
				ProdutoNome:   it.ProdutoNome,
				Quantidade:    it.Quantidade,
				PrecoUnitario: it.PrecoUnitario,
				TotalItem:     it.TotalItem,
			})
		}
		v.Subtotal = subtotal
		for _, p := range snap.Pagamentos {
			v.Pagamentos = append(v.Pagamentos, VendaPagamento{
				Metodo: p.Metodo,
				Valor:  p.Valor,
				Troco:  p.Troco,
			})
		}
		return v, nil

	case FormatoLegacy:
		var snap LegacySnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, ErrPayloadCorrompido
		}
		if snap.ProdutoNome == "" || snap.Quantidade <= 0 {
			return nil, ErrPayloadCorrompido
		}
		total := snap.Total
		if total.IsZero() {
			total = snap.PrecoUnitario.Mul(decimal.NewFromInt(int64(snap.Quantidade)))
		}
		metodo := snap.FormaPagamento
		if metodo == "" {
			metodo = PagamentoDinheiro
		}
		return &Venda{
			Formato:      FormatoLegacy,
			OperadorNome: snap.OperadorNome,
			Subtotal:     total,
			Total:        total,
			DataVenda:    snap.DataVenda,
			Itens: []VendaItem{{
				ProdutoID:     snap.ProdutoID,
				ProdutoNome:   snap.ProdutoNome,
				Quantidade:    snap.Quantidade,
				PrecoUnitario: snap.PrecoUnitario,
				TotalItem:     total,
			}},
			Pagamentos: []VendaPagamento{{
				Metodo: metodo,
				Valor:  total,
			}},
		}, nil
	}

	return nil, ErrPayloadCorrompido
}

// FormatBRL renders a decimal as Brazilian currency (comma decimal separator).
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// MetodoLabel maps a payment method to its display label.
func MetodoLabel(metodo string) string {
	switch metodo {
	case PagamentoDinheiro:
		return "Dinheiro"
	case PagamentoCartaoCredito:
		return "Cartão de Crédito"
	case PagamentoCartaoDebito:
		return "Cartão de Débito"
	case PagamentoPix:
		return "PIX"
	default:
		return metodo
	}
}

// ResumoPagamentos builds the display summary of a payment list,
// ex.: "Dinheiro R$ 50,00 + PIX R$ 30,00".
func ResumoPagamentos(pagamentos []VendaPagamento) string {
	parts := make([]string, 0, len(pagamentos))
	for _, p := range pagamentos {
		parts = append(parts, MetodoLabel(p.Metodo)+" "+FormatBRL(p.Valor))
	}
	return strings.Join(parts, " + ")
}
