package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale formats. Two historical shapes coexist: "legacy" rows came from the
// single-product, single-payment era; "checkout" rows carry multiple items
// and multiple payments. Both reconcile into the same per-method aggregate.
const (
	FormatoLegacy   = "legacy"
	FormatoCheckout = "checkout"
)

// Payment methods.
const (
	PagamentoDinheiro      = "dinheiro"
	PagamentoCartaoCredito = "cartao_credito"
	PagamentoCartaoDebito  = "cartao_debito"
	PagamentoPix           = "pix"
)

// Venda is a completed sale. It deliberately carries NO foreign key to a
// session: legacy data predates explicit sessions, so session membership is
// resolved by timestamp window at reconciliation time.
type Venda struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Formato      string    `gorm:"type:varchar(10);not null;default:'checkout'"`
	OperadorID   *uuid.UUID `gorm:"type:uuid"`
	OperadorNome string
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desconto     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Acrescimo    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DataVenda    time.Time       `gorm:"not null;index"`
	CreatedAt    time.Time

	Itens      []VendaItem      `gorm:"foreignKey:VendaID"`
	Pagamentos []VendaPagamento `gorm:"foreignKey:VendaID"`
}

func (Venda) TableName() string { return "vendas" }

// VendaItem is one line of a sale. Product name and unit price are captured
// at sale time — the catalog is an external collaborator and its rows may
// change or disappear after the fact.
type VendaItem struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProdutoID     *uuid.UUID `gorm:"type:uuid"`
	ProdutoNome   string     `gorm:"not null"`
	Quantidade    int        `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalItem     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (VendaItem) TableName() string { return "venda_itens" }

// VendaPagamento is one payment applied to a sale. Troco (change given)
// only makes sense for dinheiro and nets out of the cash aggregate.
type VendaPagamento struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Metodo  string          `gorm:"type:varchar(20);not null"`
	Valor   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Troco   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

func (VendaPagamento) TableName() string { return "venda_pagamentos" }
