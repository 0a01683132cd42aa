package repository

import (
	"context"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error)
	// ListNoPeriodo returns sales whose data_venda falls inside [inicio, fim)
	// (fim nil = open-ended). Session membership is by timestamp window, not
	// foreign key — legacy sales predate explicit sessions.
	ListNoPeriodo(tx *gorm.DB, inicio time.Time, fim *time.Time) ([]model.Venda, error)
	// DeleteTx removes the sale and its items/payments inside tx.
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) CreateTx(tx *gorm.DB, v *model.Venda) error {
	return tx.Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).Preload("Itens").Preload("Pagamentos").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendaRepo) List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	var vendas []model.Venda
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venda{})
	if filter.Data != "" {
		q = q.Where("DATE(data_venda) = ?", filter.Data)
	} else {
		q = q.Where("DATE(data_venda) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Itens").Preload("Pagamentos").
		Order("data_venda DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&vendas).Error

	return vendas, total, err
}

func (r *vendaRepo) ListNoPeriodo(tx *gorm.DB, inicio time.Time, fim *time.Time) ([]model.Venda, error) {
	var vendas []model.Venda
	q := tx.Preload("Itens").Preload("Pagamentos").Where("data_venda >= ?", inicio)
	if fim != nil {
		q = q.Where("data_venda < ?", *fim)
	}
	err := q.Order("data_venda ASC").Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Delete(&model.VendaItem{}, "venda_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Delete(&model.VendaPagamento{}, "venda_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Venda{}, "id = ?", id).Error
}
