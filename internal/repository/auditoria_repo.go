package repository

import (
	"context"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditoriaRepository interface {
	// CreateTx writes the audit snapshot inside the same transaction that
	// deletes the live sale — both happen or neither does.
	CreateTx(tx *gorm.DB, rec *model.VendaDeletada) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VendaDeletada, error)
	// List returns audit records newest first by original sale timestamp,
	// tie-broken by descending seq.
	List(ctx context.Context) ([]model.VendaDeletada, error)
	// MarkRestauradaTx flips restaurada_em from null inside tx. Returns false
	// when the record was already restored (optimistic guard against
	// concurrent double-restore).
	MarkRestauradaTx(tx *gorm.DB, id uuid.UUID, em time.Time) (bool, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) CreateTx(tx *gorm.DB, rec *model.VendaDeletada) error {
	return tx.Create(rec).Error
}

func (r *auditoriaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VendaDeletada, error) {
	var rec model.VendaDeletada
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *auditoriaRepo) List(ctx context.Context) ([]model.VendaDeletada, error) {
	var recs []model.VendaDeletada
	err := r.db.WithContext(ctx).Order("data_venda DESC, seq DESC").Find(&recs).Error
	return recs, err
}

func (r *auditoriaRepo) MarkRestauradaTx(tx *gorm.DB, id uuid.UUID, em time.Time) (bool, error) {
	res := tx.Model(&model.VendaDeletada{}).
		Where("id = ? AND restaurada_em IS NULL", id).
		Update("restaurada_em", em)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
