package worker

// fechamento_worker.go
// Processes closing-report jobs from QueueFechamento.
// Reconciles the closed session, renders the PDF report, and mails it to the
// configured recipient through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/infra"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/repository"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FechamentoWorker turns a closed session into a mailed PDF report.
type FechamentoWorker struct {
	caixaRepo      repository.CaixaRepository
	reconc         service.ReconciliacaoService
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	pdfStoragePath string
	relatorioEmail string
}

func NewFechamentoWorker(
	caixaRepo repository.CaixaRepository,
	reconc service.ReconciliacaoService,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	pdfStoragePath string,
	relatorioEmail string,
) *FechamentoWorker {
	return &FechamentoWorker{
		caixaRepo:      caixaRepo,
		reconc:         reconc,
		mailer:         mailer,
		cb:             cb,
		pdfStoragePath: pdfStoragePath,
		relatorioEmail: relatorioEmail,
	}
}

// Process handles a single fechamento job:
//  1. Parse FechamentoJobPayload from the job envelope
//  2. Reconcile the session (derived, over the session's closed window)
//  3. Render the PDF report
//  4. Mail it through the circuit breaker
//
// A returned error requeues the job; the pool eventually parks it in the DLQ.
func (w *FechamentoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload FechamentoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// A malformed payload will never succeed, don't retry it.
		log.Error().Err(err).Msg("fechamento_worker: invalid payload, discarding")
		return nil
	}

	sessaoID, err := uuid.Parse(payload.SessaoID)
	if err != nil {
		log.Error().Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: invalid sessao_id, discarding")
		return nil
	}

	sessao, err := w.caixaRepo.FindSessaoByID(ctx, sessaoID)
	if err != nil {
		return fmt.Errorf("fechamento_worker: find sessao: %w", err)
	}
	if sessao.Status != model.SessaoFechada {
		// Session was deleted or somehow reopened; nothing to report.
		log.Warn().Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: sessão não está fechada, descartando")
		return nil
	}

	rec, err := w.reconc.Reconciliar(ctx, sessaoID, nil)
	if err != nil {
		return fmt.Errorf("fechamento_worker: reconciliar: %w", err)
	}

	sessaoResp := sessaoParaRelatorio(sessao)
	pdfPath, err := infra.GenerateFechamentoPDF(sessaoResp, rec, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("fechamento_worker: gerar PDF: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("sessao_id", payload.SessaoID).Msg("fechamento_worker: relatório gerado")

	if w.relatorioEmail == "" {
		return nil
	}

	subject := "Fechamento de caixa — " + sessao.AbertaEm.Format("02/01/2006")
	body := fmt.Sprintf(
		"Sessão %s fechada.\nDinheiro esperado na gaveta: %s\n\nRelatório completo em anexo.",
		sessao.ID, model.FormatBRL(rec.DinheiroEsperado),
	)
	err = w.cb.Execute(func() error {
		return w.mailer.SendRelatorio(w.relatorioEmail, subject, body, pdfPath)
	})
	if err != nil {
		return fmt.Errorf("fechamento_worker: enviar email: %w", err)
	}
	log.Info().Str("sessao_id", payload.SessaoID).Str("email", w.relatorioEmail).Msg("fechamento_worker: relatório enviado")
	return nil
}

func sessaoParaRelatorio(s *model.SessaoCaixa) *dto.SessaoResponse {
	resp := &dto.SessaoResponse{
		ID:            s.ID.String(),
		Status:        s.Status,
		AbertoPor:     s.AbertoPor.String(),
		AbertoPorNome: s.AbertoPorNome,
		AbertaEm:      s.AbertaEm.Format("02/01/2006 15:04"),
	}
	resp.FechadoPorNome = s.FechadoPorNome
	if s.FechadaEm != nil {
		fe := s.FechadaEm.Format("02/01/2006 15:04")
		resp.FechadaEm = &fe
	}
	return resp
}
