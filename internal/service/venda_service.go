package service

import (
	"context"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// toleranciaCentavo absorbs cent-level rounding between item totals and
// payment totals.
var toleranciaCentavo = decimal.NewFromFloat(0.01)

type VendaService interface {
	RegistrarVenda(ctx context.Context, op dto.Identidade, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	BuscarVenda(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	ListarVendas(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error)
	DeletarVenda(ctx context.Context, id uuid.UUID, op dto.Identidade) error
}

type vendaService struct {
	vendaRepo repository.VendaRepository
	caixaRepo repository.CaixaRepository
	audRepo   repository.AuditoriaRepository
	db        *gorm.DB
}

func NewVendaService(vendaRepo repository.VendaRepository, caixaRepo repository.CaixaRepository, audRepo repository.AuditoriaRepository, db *gorm.DB) VendaService {
	return &vendaService{vendaRepo: vendaRepo, caixaRepo: caixaRepo, audRepo: audRepo, db: db}
}

// ── RegistrarVenda ────────────────────────────────────────────────────────────

func (s *vendaService) RegistrarVenda(ctx context.Context, op dto.Identidade, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	sessao, err := s.caixaRepo.FindSessaoAberta(ctx)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return nil, apierror.InvalidState("Nenhuma sessão de caixa aberta para registrar vendas")
	}

	subtotal := decimal.Zero
	itens := make([]model.VendaItem, 0, len(req.Itens))
	for _, it := range req.Itens {
		totalItem := it.PrecoUnitario.Mul(decimal.NewFromInt(int64(it.Quantidade)))
		subtotal = subtotal.Add(totalItem)
		var produtoID *uuid.UUID
		if it.ProdutoID != nil {
			id, parseErr := uuid.Parse(*it.ProdutoID)
			if parseErr != nil {
				return nil, apierror.Validation("produto_id inválido")
			}
			produtoID = &id
		}
		itens = append(itens, model.VendaItem{
			ProdutoID:     produtoID,
			ProdutoNome:   it.ProdutoNome,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
			TotalItem:     totalItem,
		})
	}

	totalDevido := subtotal.Add(req.Acrescimo).Sub(req.Desconto)
	if totalDevido.IsNegative() {
		return nil, apierror.Validation("O desconto não pode exceder o total da venda")
	}

	totalPago := decimal.Zero
	pagamentos := make([]model.VendaPagamento, 0, len(req.Pagamentos))
	for _, p := range req.Pagamentos {
		if p.Troco.IsPositive() && p.Metodo != model.PagamentoDinheiro {
			return nil, apierror.Validation("Troco só é permitido em pagamentos em dinheiro")
		}
		totalPago = totalPago.Add(p.Valor).Sub(p.Troco)
		pagamentos = append(pagamentos, model.VendaPagamento{
			Metodo: p.Metodo,
			Valor:  p.Valor,
			Troco:  p.Troco,
		})
	}

	if totalDevido.Sub(totalPago).Abs().GreaterThan(toleranciaCentavo) {
		return nil, apierror.Validation("Os pagamentos não conferem com o total da venda")
	}

	opID := op.ID
	venda := &model.Venda{
		Formato:      model.FormatoCheckout,
		OperadorID:   &opID,
		OperadorNome: op.Nome,
		Subtotal:     subtotal,
		Desconto:     req.Desconto,
		Acrescimo:    req.Acrescimo,
		Total:        totalDevido,
		DataVenda:    time.Now(),
		Itens:        itens,
		Pagamentos:   pagamentos,
	}

	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		return s.vendaRepo.CreateTx(tx, venda)
	})
	if err != nil {
		return nil, err
	}
	return vendaToResponse(venda), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *vendaService) BuscarVenda(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.vendaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Venda não encontrada")
	}
	return vendaToResponse(venda), nil
}

func (s *vendaService) ListarVendas(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	vendas, total, err := s.vendaRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		out = append(out, *vendaToResponse(&vendas[i]))
	}
	return &dto.VendaListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── DeletarVenda ──────────────────────────────────────────────────────────────
// The audit snapshot is written before the live rows are removed, inside one
// transaction. If the snapshot insert fails the delete never happens.

func (s *vendaService) DeletarVenda(ctx context.Context, id uuid.UUID, op dto.Identidade) error {
	if op.Perfil != "supervisor" && !op.Admin() {
		return apierror.Permission("Apenas supervisores ou administradores podem excluir vendas")
	}

	venda, err := s.vendaRepo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("Venda não encontrada")
	}

	formato, payload, err := model.EncodeSnapshot(venda)
	if err != nil {
		return err
	}

	rec := &model.VendaDeletada{
		VendaID:         venda.ID,
		Formato:         formato,
		Payload:         string(payload),
		DataVenda:       venda.DataVenda,
		DeletadoPor:     op.ID,
		DeletadoPorNome: op.Nome,
		DeletadaEm:      time.Now(),
	}

	return runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.audRepo.CreateTx(tx, rec); err != nil {
			return err
		}
		return s.vendaRepo.DeleteTx(tx, venda.ID)
	})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func vendaToResponse(v *model.Venda) *dto.VendaResponse {
	resp := &dto.VendaResponse{
		ID:        v.ID.String(),
		Formato:   v.Formato,
		Operador:  v.OperadorNome,
		Subtotal:  v.Subtotal,
		Desconto:  v.Desconto,
		Acrescimo: v.Acrescimo,
		Total:     v.Total,
		DataVenda: v.DataVenda.UTC().Format(time.RFC3339),
	}
	for _, it := range v.Itens {
		resp.Itens = append(resp.Itens, dto.ItemVendaResponse{
			ProdutoNome:   it.ProdutoNome,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
			TotalItem:     it.TotalItem,
		})
	}
	for _, p := range v.Pagamentos {
		resp.Pagamentos = append(resp.Pagamentos, dto.PagamentoResponse{
			Metodo: p.Metodo,
			Valor:  p.Valor,
			Troco:  p.Troco,
		})
	}
	return resp
}
