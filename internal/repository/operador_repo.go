package repository

import (
	"context"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OperadorRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Operador, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Operador, error)
}

type operadorRepo struct{ db *gorm.DB }

func NewOperadorRepository(db *gorm.DB) OperadorRepository { return &operadorRepo{db: db} }

func (r *operadorRepo) FindByUsername(ctx context.Context, username string) (*model.Operador, error) {
	var op model.Operador
	err := r.db.WithContext(ctx).Where("username = ? AND ativo", username).First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operadorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Operador, error) {
	var op model.Operador
	err := r.db.WithContext(ctx).First(&op, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}
