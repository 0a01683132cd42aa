package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AuditoriaService interface {
	ListarDeletadas(ctx context.Context) ([]dto.VendaDeletadaResponse, error)
	Restaurar(ctx context.Context, id uuid.UUID, op dto.Identidade) (*dto.VendaResponse, error)
}

type auditoriaService struct {
	audRepo   repository.AuditoriaRepository
	vendaRepo repository.VendaRepository
	db        *gorm.DB
}

func NewAuditoriaService(audRepo repository.AuditoriaRepository, vendaRepo repository.VendaRepository, db *gorm.DB) AuditoriaService {
	return &auditoriaService{audRepo: audRepo, vendaRepo: vendaRepo, db: db}
}

// ── ListarDeletadas ───────────────────────────────────────────────────────────
// A record whose payload no longer decodes is still listed, flagged as not
// restorable. One bad row never takes the listing down.

func (s *auditoriaService) ListarDeletadas(ctx context.Context) ([]dto.VendaDeletadaResponse, error) {
	recs, err := s.audRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendaDeletadaResponse, 0, len(recs))
	for i := range recs {
		out = append(out, deletadaToResponse(&recs[i]))
	}
	return out, nil
}

// ── Restaurar ─────────────────────────────────────────────────────────────────
// Restores recreate the sale under its ORIGINAL id, so references from before
// the deletion stay valid. The audit record is never removed; RestauradaEm is
// set with an optimistic guard so exactly one of two concurrent restores wins.

func (s *auditoriaService) Restaurar(ctx context.Context, id uuid.UUID, op dto.Identidade) (*dto.VendaResponse, error) {
	if !op.Admin() {
		return nil, apierror.Permission("Apenas administradores podem restaurar vendas")
	}

	rec, err := s.audRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Registro de venda deletada não encontrado")
	}
	if rec.RestauradaEm != nil {
		return nil, apierror.AlreadyRestored("Esta venda já foi restaurada")
	}

	venda, err := model.DecodeSnapshot(rec.Formato, []byte(rec.Payload))
	if err != nil {
		if errors.Is(err, model.ErrPayloadCorrompido) {
			return nil, apierror.Validation("O registro não pode ser restaurado: payload corrompido")
		}
		return nil, err
	}
	venda.ID = rec.VendaID

	agora := time.Now()
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		ok, txErr := s.audRepo.MarkRestauradaTx(tx, rec.ID, agora)
		if txErr != nil {
			return txErr
		}
		if !ok {
			return apierror.AlreadyRestored("Esta venda já foi restaurada")
		}
		return s.vendaRepo.CreateTx(tx, venda)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venda_id", venda.ID.String()).
		Str("restaurado_por", op.Nome).
		Msg("venda restaurada a partir do registro de auditoria")
	return vendaToResponse(venda), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func deletadaToResponse(rec *model.VendaDeletada) dto.VendaDeletadaResponse {
	resp := dto.VendaDeletadaResponse{
		ID:          rec.ID.String(),
		VendaID:     rec.VendaID.String(),
		Formato:     rec.Formato,
		DataVenda:   rec.DataVenda.UTC().Format(time.RFC3339),
		DeletadoPor: rec.DeletadoPorNome,
		DeletadaEm:  rec.DeletadaEm.UTC().Format(time.RFC3339),
	}
	if rec.RestauradaEm != nil {
		em := rec.RestauradaEm.UTC().Format(time.RFC3339)
		resp.RestauradaEm = &em
	}

	if json.Valid([]byte(rec.Payload)) {
		resp.Payload = json.RawMessage(rec.Payload)
	} else {
		quoted, _ := json.Marshal(rec.Payload)
		resp.Payload = quoted
	}

	venda, err := model.DecodeSnapshot(rec.Formato, []byte(rec.Payload))
	if err != nil {
		log.Warn().
			Str("registro_id", rec.ID.String()).
			Msg("payload de venda deletada não decodificável, registro listado como não restaurável")
		return resp
	}

	resp.Restauravel = rec.RestauradaEm == nil
	if len(venda.Itens) > 0 {
		resp.ProdutoNome = venda.Itens[0].ProdutoNome
		if len(venda.Itens) > 1 {
			resp.ProdutoNome += " (+" + strconv.Itoa(len(venda.Itens)-1) + " itens)"
		}
		resp.Quantidade = venda.Itens[0].Quantidade
	}
	resp.ResumoPagamentos = model.ResumoPagamentos(venda.Pagamentos)
	return resp
}
