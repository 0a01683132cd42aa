package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session status values. The only legal transition is aberta → fechada;
// fechada is terminal, there is no reopen.
const (
	SessaoAberta  = "aberta"
	SessaoFechada = "fechada"
)

// SessaoCaixa represents the lifecycle of a cash register session.
// At most one session may be aberta at any time — enforced by a partial
// unique index on status (see infra.applySchemaPatches), not by
// application-level check-then-act.
type SessaoCaixa struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Seq is a monotonically increasing tiebreak for pagination: aberta_em
	// can collide, Seq cannot, and unlike timestamps it never mutates.
	Seq    int64  `gorm:"autoIncrement;uniqueIndex"`
	Status string `gorm:"type:varchar(20);not null;default:'aberta';index"`

	AbertoPor     uuid.UUID `gorm:"type:uuid;not null"`
	AbertoPorNome string    `gorm:"not null"`
	AbertaEm      time.Time `gorm:"not null;index"`

	// FechadoPor / FechadaEm are set iff Status == fechada.
	FechadoPor     *uuid.UUID `gorm:"type:uuid"`
	FechadoPorNome *string
	FechadaEm      *time.Time

	Movimentacoes []MovimentacaoCaixa `gorm:"foreignKey:SessaoCaixaID"`
}

func (SessaoCaixa) TableName() string { return "sessoes_caixa" }

// Movement types. Corrections never update or delete a movement — an
// offsetting movement of the opposite type is recorded instead.
const (
	MovimentacaoEntrada  = "entrada"
	MovimentacaoRetirada = "retirada"
)

// MovimentacaoCaixa is an immutable manual cash adjustment tied to an open
// session. Valor is always positive; Tipo carries the direction (entrada
// adds to the drawer, retirada removes from it).
type MovimentacaoCaixa struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessaoCaixaID uuid.UUID      `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	Valor        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descricao    string          `gorm:"not null"`
	OperadorID   uuid.UUID       `gorm:"type:uuid;not null"`
	OperadorNome string          `gorm:"not null"`
	CreatedAt    time.Time
}

func (MovimentacaoCaixa) TableName() string { return "movimentacoes_caixa" }

// ValorAssinado returns the movement amount with its direction applied:
// positive for entrada, negative for retirada.
func (m *MovimentacaoCaixa) ValorAssinado() decimal.Decimal {
	if m.Tipo == MovimentacaoRetirada {
		return m.Valor.Neg()
	}
	return m.Valor
}
