package service

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconciliacaoService derives the financial summary of a session on demand.
// Nothing here is persisted: re-running after a sale is deleted or restored
// reflects the current state of the sale tables.
type ReconciliacaoService interface {
	Reconciliar(ctx context.Context, sessaoID uuid.UUID, contagem *decimal.Decimal) (*dto.ReconciliacaoResponse, error)
	ExportarCSV(ctx context.Context, sessaoID uuid.UUID, contagem *decimal.Decimal, w io.Writer) error
}

type reconciliacaoService struct {
	caixaRepo repository.CaixaRepository
	vendaRepo repository.VendaRepository
	db        *gorm.DB
}

func NewReconciliacaoService(caixaRepo repository.CaixaRepository, vendaRepo repository.VendaRepository, db *gorm.DB) ReconciliacaoService {
	return &reconciliacaoService{caixaRepo: caixaRepo, vendaRepo: vendaRepo, db: db}
}

func (s *reconciliacaoService) Reconciliar(ctx context.Context, sessaoID uuid.UUID, contagem *decimal.Decimal) (*dto.ReconciliacaoResponse, error) {
	sessao, err := s.caixaRepo.FindSessaoByID(ctx, sessaoID)
	if err != nil {
		return nil, apierror.NotFound("Sessão de caixa não encontrada")
	}

	// Open sessions reconcile against a window ending "now", so the numbers
	// are a live partial view that moves with new sales.
	inicio := sessao.AbertaEm
	fim := sessao.FechadaEm

	var vendas []model.Venda
	var movs []model.MovimentacaoCaixa
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		var txErr error
		if vendas, txErr = s.vendaRepo.ListNoPeriodo(tx, inicio, fim); txErr != nil {
			return txErr
		}
		movs, txErr = s.caixaRepo.ListMovimentacoesTx(tx, sessaoID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ReconciliacaoResponse{
		SessaoID: sessao.ID.String(),
		Status:   sessao.Status,
	}

	for i := range vendas {
		v := &vendas[i]
		for _, p := range v.Pagamentos {
			// Cash lines are net of change: a R$100 note on a R$70 sale
			// contributes R$70 to the drawer, not R$100.
			liquido := p.Valor.Sub(p.Troco)
			switch p.Metodo {
			case model.PagamentoDinheiro:
				resp.PorPagamento.Dinheiro = resp.PorPagamento.Dinheiro.Add(liquido)
			case model.PagamentoCartaoCredito:
				resp.PorPagamento.CartaoCredito = resp.PorPagamento.CartaoCredito.Add(liquido)
			case model.PagamentoCartaoDebito:
				resp.PorPagamento.CartaoDebito = resp.PorPagamento.CartaoDebito.Add(liquido)
			case model.PagamentoPix:
				resp.PorPagamento.Pix = resp.PorPagamento.Pix.Add(liquido)
			}
			resp.Vendas = append(resp.Vendas, dto.VendaDetalhe{
				VendaID:  v.ID.String(),
				Metodo:   p.Metodo,
				Valor:    p.Valor,
				Troco:    p.Troco,
				Operador: v.OperadorNome,
				Data:     v.DataVenda.UTC().Format(time.RFC3339),
			})
		}
	}

	for i := range movs {
		m := &movs[i]
		resp.TotalMovimentado = resp.TotalMovimentado.Add(m.ValorAssinado())
		resp.Movimentacoes = append(resp.Movimentacoes, *movimentacaoToResponse(m))
	}

	// Expected drawer cash: net cash sales plus net manual movements. The
	// opening float is zero; an initial entrada movement represents it.
	resp.DinheiroEsperado = resp.PorPagamento.Dinheiro.Add(resp.TotalMovimentado)

	if contagem != nil {
		c := *contagem
		// Variacao is expected minus counted: positive when the drawer is
		// short, negative when there is surplus cash.
		variacao := resp.DinheiroEsperado.Sub(c)
		resp.Contagem = &c
		resp.Variacao = &variacao
	}
	return resp, nil
}

// ExportarCSV writes the reconciliation as a flat CSV, one row per sale
// payment line and per movement, followed by the totals block.
func (s *reconciliacaoService) ExportarCSV(ctx context.Context, sessaoID uuid.UUID, contagem *decimal.Decimal, w io.Writer) error {
	rec, err := s.Reconciliar(ctx, sessaoID, contagem)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tipo", "referencia", "metodo_ou_tipo", "valor", "troco", "operador", "data"}); err != nil {
		return err
	}
	for _, v := range rec.Vendas {
		if err := cw.Write([]string{"venda", v.VendaID, v.Metodo, v.Valor.StringFixed(2), v.Troco.StringFixed(2), v.Operador, v.Data}); err != nil {
			return err
		}
	}
	for _, m := range rec.Movimentacoes {
		if err := cw.Write([]string{"movimentacao", m.ID, m.Tipo, m.Valor.StringFixed(2), "", m.Operador, m.Data}); err != nil {
			return err
		}
	}

	totais := [][]string{
		{"total", "", "dinheiro", rec.PorPagamento.Dinheiro.StringFixed(2), "", "", ""},
		{"total", "", "cartao_credito", rec.PorPagamento.CartaoCredito.StringFixed(2), "", "", ""},
		{"total", "", "cartao_debito", rec.PorPagamento.CartaoDebito.StringFixed(2), "", "", ""},
		{"total", "", "pix", rec.PorPagamento.Pix.StringFixed(2), "", "", ""},
		{"total", "", "movimentacoes", rec.TotalMovimentado.StringFixed(2), "", "", ""},
		{"total", "", "dinheiro_esperado", rec.DinheiroEsperado.StringFixed(2), "", "", ""},
	}
	if rec.Contagem != nil {
		totais = append(totais,
			[]string{"total", "", "contagem", rec.Contagem.StringFixed(2), "", "", ""},
			[]string{"total", "", "variacao", rec.Variacao.StringFixed(2), "", "", ""},
		)
	}
	for _, row := range totais {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
