package model

import (
	"time"

	"github.com/google/uuid"
)

// VendaDeletada is the snapshot-on-delete audit record for a sale. It is the
// only remaining evidence of a deleted sale and is written in the SAME
// transaction that removes the live rows — there is no state where a sale is
// gone without an audit trace.
//
// Payload is immutable. The single exception to append-only semantics is the
// RestauradaEm transition (null → timestamp), guarded by an optimistic
// WHERE restaurada_em IS NULL update so concurrent restores cannot both win.
type VendaDeletada struct {
	ID  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Seq int64     `gorm:"autoIncrement;uniqueIndex"`

	VendaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Formato string    `gorm:"type:varchar(10);not null"`
	// Payload holds the full serialized sale. Kept as raw text so a payload
	// that fails to parse is still preserved verbatim.
	Payload   string    `gorm:"type:jsonb;not null"`
	DataVenda time.Time `gorm:"not null;index"`

	DeletadoPor     uuid.UUID `gorm:"type:uuid;not null"`
	DeletadoPorNome string    `gorm:"not null"`
	DeletadaEm      time.Time `gorm:"not null"`
	RestauradaEm    *time.Time
}

func (VendaDeletada) TableName() string { return "vendas_deletadas" }
