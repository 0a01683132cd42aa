package tests

// Shared in-memory repository fakes. They honor the same contracts as the
// gorm-backed implementations, including the single-open-session rule and the
// optimistic restore guard, so service semantics can be exercised without a
// database. The *gorm.DB passed to the Tx methods is always nil here.

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── CaixaRepository fake ─────────────────────────────────────────────────────

type fakeCaixaRepo struct {
	mu       sync.Mutex
	seq      int64
	sessoes  map[uuid.UUID]*model.SessaoCaixa
	movs     []model.MovimentacaoCaixa
	failMovs bool
}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{sessoes: make(map[uuid.UUID]*model.SessaoCaixa)}
}

func (r *fakeCaixaRepo) CreateSessao(_ context.Context, s *model.SessaoCaixa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existente := range r.sessoes {
		if existente.Status == model.SessaoAberta {
			return repository.ErrSessaoAbertaExiste
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.seq++
	s.Seq = r.seq
	r.sessoes[s.ID] = s
	return nil
}

func (r *fakeCaixaRepo) FindSessaoAberta(_ context.Context) (*model.SessaoCaixa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessoes {
		if s.Status == model.SessaoAberta {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeCaixaRepo) FindSessaoByID(_ context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessoes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *fakeCaixaRepo) FecharSessao(_ context.Context, id uuid.UUID, fechadoPor uuid.UUID, fechadoPorNome string, em time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessoes[id]
	if !ok || s.Status != model.SessaoAberta {
		return false, nil
	}
	nome := fechadoPorNome
	s.Status = model.SessaoFechada
	s.FechadoPor = &fechadoPor
	s.FechadoPorNome = &nome
	s.FechadaEm = &em
	return true, nil
}

func (r *fakeCaixaRepo) DeleteSessao(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessoes, id)
	return nil
}

func (r *fakeCaixaRepo) ListSessoes(_ context.Context, filter dto.SessaoFilter) ([]model.SessaoCaixa, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []model.SessaoCaixa
	for _, s := range r.sessoes {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.PeriodoInicio != "" {
			inicio, err := time.Parse("2006-01-02", filter.PeriodoInicio)
			if err == nil && s.AbertaEm.Before(inicio) {
				continue
			}
		}
		if filter.PeriodoFim != "" {
			fim, err := time.Parse("2006-01-02", filter.PeriodoFim)
			if err == nil && s.AbertaEm.Format("2006-01-02") > fim.Format("2006-01-02") {
				continue
			}
		}
		if filter.Mes != "" && s.AbertaEm.Format("2006-01") != filter.Mes {
			continue
		}
		if filter.AbertoPor != "" && !strings.Contains(strings.ToLower(s.AbertoPorNome), strings.ToLower(filter.AbertoPor)) {
			continue
		}
		if filter.FechadoPor != "" {
			if s.FechadoPorNome == nil || !strings.Contains(strings.ToLower(*s.FechadoPorNome), strings.ToLower(filter.FechadoPor)) {
				continue
			}
		}
		all = append(all, *s)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].AbertaEm.Equal(all[j].AbertaEm) {
			return all[i].AbertaEm.Before(all[j].AbertaEm)
		}
		return all[i].Seq < all[j].Seq
	})

	total := int64(len(all))
	offset := (filter.Page - 1) * filter.Size
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + filter.Size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeCaixaRepo) CreateMovimentacao(_ context.Context, m *model.MovimentacaoCaixa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMovs {
		return errors.New("movimentacao insert failed")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.movs = append(r.movs, *m)
	return nil
}

func (r *fakeCaixaRepo) ListMovimentacoes(_ context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	return r.listMovs(sessaoID), nil
}

func (r *fakeCaixaRepo) ListMovimentacoesTx(_ *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	return r.listMovs(sessaoID), nil
}

func (r *fakeCaixaRepo) listMovs(sessaoID uuid.UUID) []model.MovimentacaoCaixa {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimentacaoCaixa
	for _, m := range r.movs {
		if m.SessaoCaixaID == sessaoID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ── VendaRepository fake ─────────────────────────────────────────────────────

type fakeVendaRepo struct {
	mu     sync.Mutex
	vendas map[uuid.UUID]*model.Venda
}

func newFakeVendaRepo() *fakeVendaRepo {
	return &fakeVendaRepo{vendas: make(map[uuid.UUID]*model.Venda)}
}

func (r *fakeVendaRepo) CreateTx(_ *gorm.DB, v *model.Venda) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if _, ok := r.vendas[v.ID]; ok {
		return errors.New("duplicated key")
	}
	r.vendas[v.ID] = v
	return nil
}

func (r *fakeVendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venda, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (r *fakeVendaRepo) List(_ context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dia := filter.Data
	if dia == "" {
		dia = time.Now().Format("2006-01-02")
	}
	var all []model.Venda
	for _, v := range r.vendas {
		if v.DataVenda.Format("2006-01-02") == dia {
			all = append(all, *v)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DataVenda.After(all[j].DataVenda) })
	return all, int64(len(all)), nil
}

func (r *fakeVendaRepo) ListNoPeriodo(_ *gorm.DB, inicio time.Time, fim *time.Time) ([]model.Venda, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venda
	for _, v := range r.vendas {
		if v.DataVenda.Before(inicio) {
			continue
		}
		if fim != nil && !v.DataVenda.Before(*fim) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DataVenda.Before(out[j].DataVenda) })
	return out, nil
}

func (r *fakeVendaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vendas[id]; !ok {
		return errors.New("not found")
	}
	delete(r.vendas, id)
	return nil
}

// ── AuditoriaRepository fake ─────────────────────────────────────────────────

type fakeAuditoriaRepo struct {
	mu         sync.Mutex
	seq        int64
	registros  map[uuid.UUID]*model.VendaDeletada
	failCreate bool
}

func newFakeAuditoriaRepo() *fakeAuditoriaRepo {
	return &fakeAuditoriaRepo{registros: make(map[uuid.UUID]*model.VendaDeletada)}
}

func (r *fakeAuditoriaRepo) CreateTx(_ *gorm.DB, rec *model.VendaDeletada) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("audit insert failed")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.seq++
	rec.Seq = r.seq
	r.registros[rec.ID] = rec
	return nil
}

func (r *fakeAuditoriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.VendaDeletada, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.registros[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

func (r *fakeAuditoriaRepo) List(_ context.Context) ([]model.VendaDeletada, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.VendaDeletada
	for _, rec := range r.registros {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DataVenda.Equal(out[j].DataVenda) {
			return out[i].DataVenda.After(out[j].DataVenda)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

func (r *fakeAuditoriaRepo) MarkRestauradaTx(_ *gorm.DB, id uuid.UUID, em time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.registros[id]
	if !ok || rec.RestauradaEm != nil {
		return false, nil
	}
	rec.RestauradaEm = &em
	return true, nil
}

// ── OperadorRepository fake ──────────────────────────────────────────────────

type fakeOperadorRepo struct {
	operadores map[string]*model.Operador
}

func newFakeOperadorRepo() *fakeOperadorRepo {
	return &fakeOperadorRepo{operadores: make(map[string]*model.Operador)}
}

func (r *fakeOperadorRepo) FindByUsername(_ context.Context, username string) (*model.Operador, error) {
	op, ok := r.operadores[username]
	if !ok || !op.Ativo {
		return nil, errors.New("not found")
	}
	return op, nil
}

func (r *fakeOperadorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Operador, error) {
	for _, op := range r.operadores {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, errors.New("not found")
}

// ── helpers ──────────────────────────────────────────────────────────────────

func identidadeOperador(nome, perfil string) dto.Identidade {
	return dto.Identidade{ID: uuid.New(), Nome: nome, Perfil: perfil}
}
