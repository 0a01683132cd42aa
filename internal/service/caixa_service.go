package service

import (
	"context"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FechamentoDispatcher enqueues the async closing-report job. Satisfied by
// worker.Dispatcher; nil disables dispatch (unit tests, report email unset).
type FechamentoDispatcher interface {
	EnqueueFechamento(ctx context.Context, sessaoID string) error
}

type CaixaService interface {
	AbrirSessao(ctx context.Context, op dto.Identidade) (*dto.SessaoResponse, error)
	FecharSessao(ctx context.Context, sessaoID uuid.UUID, op dto.Identidade) (*dto.SessaoResponse, error)
	// SessaoAtual returns the single open session, or nil when none is open.
	SessaoAtual(ctx context.Context) (*dto.SessaoResponse, error)
	RegistrarMovimentacao(ctx context.Context, op dto.Identidade, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error)
	ListarMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]dto.MovimentacaoResponse, error)
	ListarSessoes(ctx context.Context, filter dto.SessaoFilter) (*dto.SessaoListResponse, error)
	DeletarSessao(ctx context.Context, sessaoID uuid.UUID, op dto.Identidade) error
}

type caixaService struct {
	repo       repository.CaixaRepository
	dispatcher FechamentoDispatcher
}

func NewCaixaService(repo repository.CaixaRepository, dispatcher FechamentoDispatcher) CaixaService {
	return &caixaService{repo: repo, dispatcher: dispatcher}
}

// ── AbrirSessao ───────────────────────────────────────────────────────────────

func (s *caixaService) AbrirSessao(ctx context.Context, op dto.Identidade) (*dto.SessaoResponse, error) {
	// Fast pre-check for a friendly error. The actual guarantee is the
	// partial unique index on status='aberta': two concurrent opens that
	// both pass this check still resolve to exactly one winner.
	if aberta, err := s.repo.FindSessaoAberta(ctx); err != nil {
		return nil, err
	} else if aberta != nil {
		return nil, apierror.Conflict("Já existe uma sessão de caixa aberta")
	}

	sessao := &model.SessaoCaixa{
		Status:        model.SessaoAberta,
		AbertoPor:     op.ID,
		AbertoPorNome: op.Nome,
		AbertaEm:      time.Now(),
	}
	if err := s.repo.CreateSessao(ctx, sessao); err != nil {
		if err == repository.ErrSessaoAbertaExiste {
			return nil, apierror.Conflict("Já existe uma sessão de caixa aberta")
		}
		return nil, err
	}
	return sessaoToResponse(sessao), nil
}

// ── FecharSessao ──────────────────────────────────────────────────────────────
// Closing is always permitted — discrepancies are reported by the
// reconciliation, never prevented here.

func (s *caixaService) FecharSessao(ctx context.Context, sessaoID uuid.UUID, op dto.Identidade) (*dto.SessaoResponse, error) {
	sessao, err := s.repo.FindSessaoByID(ctx, sessaoID)
	if err != nil {
		return nil, apierror.NotFound("Sessão de caixa não encontrada")
	}
	if sessao.Status != model.SessaoAberta {
		return nil, apierror.InvalidState("Sessão de caixa já está fechada")
	}

	// Conditional update: of two concurrent closes only one flips the row,
	// the other lands here with ok=false and the closing stamp is never
	// overwritten.
	agora := time.Now()
	ok, err := s.repo.FecharSessao(ctx, sessaoID, op.ID, op.Nome, agora)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierror.InvalidState("Sessão de caixa já está fechada")
	}

	fechadoPor := op.ID
	nome := op.Nome
	sessao.Status = model.SessaoFechada
	sessao.FechadoPor = &fechadoPor
	sessao.FechadoPorNome = &nome
	sessao.FechadaEm = &agora

	// Best-effort: the closing report is rendered and mailed asynchronously.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueFechamento(ctx, sessao.ID.String()); err != nil {
			log.Warn().Err(err).Str("sessao_id", sessao.ID.String()).Msg("falha ao enfileirar relatório de fechamento")
		}
	}

	return sessaoToResponse(sessao), nil
}

// ── SessaoAtual ───────────────────────────────────────────────────────────────

func (s *caixaService) SessaoAtual(ctx context.Context) (*dto.SessaoResponse, error) {
	sessao, err := s.repo.FindSessaoAberta(ctx)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return nil, nil
	}
	return sessaoToResponse(sessao), nil
}

// ── RegistrarMovimentacao ─────────────────────────────────────────────────────
// Movements are immutable and deletion is not supported — corrections are
// made by recording an offsetting movement.

func (s *caixaService) RegistrarMovimentacao(ctx context.Context, op dto.Identidade, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error) {
	if !req.Valor.IsPositive() {
		return nil, apierror.Validation("O valor da movimentação deve ser maior que zero")
	}

	var sessao *model.SessaoCaixa
	var err error
	if req.SessaoID != "" {
		id, parseErr := uuid.Parse(req.SessaoID)
		if parseErr != nil {
			return nil, apierror.Validation("sessao_id inválido")
		}
		sessao, err = s.repo.FindSessaoByID(ctx, id)
		if err != nil {
			return nil, apierror.NotFound("Sessão de caixa não encontrada")
		}
	} else {
		sessao, err = s.repo.FindSessaoAberta(ctx)
		if err != nil {
			return nil, err
		}
	}
	if sessao == nil || sessao.Status != model.SessaoAberta {
		return nil, apierror.Validation("Nenhuma sessão de caixa aberta para registrar a movimentação")
	}

	mov := &model.MovimentacaoCaixa{
		SessaoCaixaID: sessao.ID,
		Tipo:          req.Tipo,
		Valor:         req.Valor,
		Descricao:     req.Descricao,
		OperadorID:    op.ID,
		OperadorNome:  op.Nome,
	}
	if err := s.repo.CreateMovimentacao(ctx, mov); err != nil {
		return nil, err
	}
	return movimentacaoToResponse(mov), nil
}

func (s *caixaService) ListarMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]dto.MovimentacaoResponse, error) {
	if _, err := s.repo.FindSessaoByID(ctx, sessaoID); err != nil {
		return nil, apierror.NotFound("Sessão de caixa não encontrada")
	}
	movs, err := s.repo.ListMovimentacoes(ctx, sessaoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimentacaoResponse, 0, len(movs))
	for i := range movs {
		out = append(out, *movimentacaoToResponse(&movs[i]))
	}
	return out, nil
}

// ── ListarSessoes ─────────────────────────────────────────────────────────────

func (s *caixaService) ListarSessoes(ctx context.Context, filter dto.SessaoFilter) (*dto.SessaoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Size < 1 || filter.Size > 100 {
		filter.Size = 20
	}

	sessoes, total, err := s.repo.ListSessoes(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SessaoResponse, 0, len(sessoes))
	for i := range sessoes {
		items = append(items, *sessaoToResponse(&sessoes[i]))
	}
	return &dto.SessaoListResponse{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		HasNext: int64(filter.Page*filter.Size) < total,
	}, nil
}

// ── DeletarSessao ─────────────────────────────────────────────────────────────
// Administrative override, outside the normal lifecycle. Removes only the
// session metadata row: sales and movements in its window are kept and stay
// attributable to the deleted session by timestamp only. No synthetic
// session is ever reconstructed for them.

func (s *caixaService) DeletarSessao(ctx context.Context, sessaoID uuid.UUID, op dto.Identidade) error {
	if !op.Admin() {
		return apierror.Permission("Apenas administradores podem excluir sessões")
	}
	if _, err := s.repo.FindSessaoByID(ctx, sessaoID); err != nil {
		return apierror.NotFound("Sessão de caixa não encontrada")
	}
	return s.repo.DeleteSessao(ctx, sessaoID)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sessaoToResponse(s *model.SessaoCaixa) *dto.SessaoResponse {
	resp := &dto.SessaoResponse{
		ID:            s.ID.String(),
		Status:        s.Status,
		AbertoPor:     s.AbertoPor.String(),
		AbertoPorNome: s.AbertoPorNome,
		AbertaEm:      s.AbertaEm.UTC().Format(time.RFC3339),
	}
	if s.FechadoPor != nil {
		fp := s.FechadoPor.String()
		resp.FechadoPor = &fp
	}
	resp.FechadoPorNome = s.FechadoPorNome
	if s.FechadaEm != nil {
		fe := s.FechadaEm.UTC().Format(time.RFC3339)
		resp.FechadaEm = &fe
	}
	return resp
}

func movimentacaoToResponse(m *model.MovimentacaoCaixa) *dto.MovimentacaoResponse {
	return &dto.MovimentacaoResponse{
		ID:        m.ID.String(),
		SessaoID:  m.SessaoCaixaID.String(),
		Tipo:      m.Tipo,
		Valor:     m.Valor,
		Descricao: m.Descricao,
		Operador:  m.OperadorNome,
		Data:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
