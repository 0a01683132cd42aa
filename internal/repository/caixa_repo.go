package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSessaoAbertaExiste is returned by CreateSessao when the partial unique
// index on status='aberta' rejects a concurrent open.
var ErrSessaoAbertaExiste = errors.New("já existe uma sessão de caixa aberta")

type CaixaRepository interface {
	CreateSessao(ctx context.Context, s *model.SessaoCaixa) error
	FindSessaoAberta(ctx context.Context) (*model.SessaoCaixa, error)
	FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	// FecharSessao flips aberta→fechada with a conditional update. Returns
	// false when the session was no longer open, so concurrent closes have
	// exactly one winner and the loser never overwrites the closing stamp.
	FecharSessao(ctx context.Context, id uuid.UUID, fechadoPor uuid.UUID, fechadoPorNome string, em time.Time) (bool, error)
	// DeleteSessao removes ONLY the session metadata row. Movements and sales
	// in its window are untouched and remain attributable by timestamp alone.
	DeleteSessao(ctx context.Context, id uuid.UUID) error
	ListSessoes(ctx context.Context, filter dto.SessaoFilter) ([]model.SessaoCaixa, int64, error)

	CreateMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error
	ListMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error)
	// ListMovimentacoesTx reads inside an existing transaction so that
	// reconciliation sees a consistent snapshot.
	ListMovimentacoesTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) CreateSessao(ctx context.Context, s *model.SessaoCaixa) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSessaoAbertaExiste
	}
	return err
}

func (r *caixaRepo) FindSessaoAberta(ctx context.Context) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Where("status = ?", model.SessaoAberta).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FecharSessao(ctx context.Context, id uuid.UUID, fechadoPor uuid.UUID, fechadoPorNome string, em time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.SessaoCaixa{}).
		Where("id = ? AND status = ?", id, model.SessaoAberta).
		Updates(map[string]any{
			"status":           model.SessaoFechada,
			"fechado_por":      fechadoPor,
			"fechado_por_nome": fechadoPorNome,
			"fechada_em":       em,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *caixaRepo) DeleteSessao(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SessaoCaixa{}, "id = ?", id).Error
}

// ListSessoes orders by aberta_em with seq as tiebreak, both ascending:
// a session opened after a page was fetched appends after every existing
// row and never shifts previously returned rows across a page boundary.
func (r *caixaRepo) ListSessoes(ctx context.Context, filter dto.SessaoFilter) ([]model.SessaoCaixa, int64, error) {
	var sessoes []model.SessaoCaixa
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PeriodoInicio != "" {
		q = q.Where("aberta_em >= ?", filter.PeriodoInicio)
	}
	if filter.PeriodoFim != "" {
		q = q.Where("DATE(aberta_em) <= ?", filter.PeriodoFim)
	}
	if filter.Mes != "" {
		q = q.Where("to_char(aberta_em, 'YYYY-MM') = ?", filter.Mes)
	}
	if filter.AbertoPor != "" {
		q = q.Where("aberto_por_nome ILIKE ?", "%"+filter.AbertoPor+"%")
	}
	if filter.FechadoPor != "" {
		q = q.Where("fechado_por_nome ILIKE ?", "%"+filter.FechadoPor+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Size
	err := q.Order("aberta_em ASC, seq ASC").
		Offset(offset).Limit(filter.Size).
		Find(&sessoes).Error

	return sessoes, total, err
}

func (r *caixaRepo) CreateMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *caixaRepo) ListMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	return r.listMovimentacoes(r.db.WithContext(ctx), sessaoID)
}

func (r *caixaRepo) ListMovimentacoesTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	return r.listMovimentacoes(tx, sessaoID)
}

func (r *caixaRepo) listMovimentacoes(db *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	var movs []model.MovimentacaoCaixa
	err := db.Where("sessao_caixa_id = ?", sessaoID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}
