package tests

import (
	"context"
	"sync"
	"testing"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/apierror"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbrirSessao(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	op := identidadeOperador("Maria", "operador")

	resp, err := svc.AbrirSessao(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, model.SessaoAberta, resp.Status)
	assert.Equal(t, "Maria", resp.AbertoPorNome)
	assert.NotEmpty(t, resp.AbertaEm)
	assert.Nil(t, resp.FechadaEm)
}

func TestAbrirSessaoComOutraAberta(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)

	_, err := svc.AbrirSessao(context.Background(), identidadeOperador("Maria", "operador"))
	require.NoError(t, err)

	_, err = svc.AbrirSessao(context.Background(), identidadeOperador("João", "operador"))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestAbrirSessaoConcorrente(t *testing.T) {
	// N goroutines race to open; the repository uniqueness rule must let
	// exactly one through.
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)

	const n = 10
	var wg sync.WaitGroup
	sucessos := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AbrirSessao(context.Background(), identidadeOperador("Maria", "operador")); err == nil {
				sucessos <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(sucessos)

	count := 0
	for range sucessos {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestFecharSessao(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()

	aberta, err := svc.AbrirSessao(ctx, identidadeOperador("Maria", "operador"))
	require.NoError(t, err)

	supervisor := identidadeOperador("Carlos", "supervisor")
	fechada, err := svc.FecharSessao(ctx, uuid.MustParse(aberta.ID), supervisor)
	require.NoError(t, err)
	assert.Equal(t, model.SessaoFechada, fechada.Status)
	require.NotNil(t, fechada.FechadoPorNome)
	assert.Equal(t, "Carlos", *fechada.FechadoPorNome)
	require.NotNil(t, fechada.FechadaEm)
	assert.GreaterOrEqual(t, *fechada.FechadaEm, fechada.AbertaEm)

	// Closing frees the slot for a new session
	_, err = svc.AbrirSessao(ctx, identidadeOperador("João", "operador"))
	assert.NoError(t, err)
}

func TestFecharSessaoJaFechada(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()
	op := identidadeOperador("Maria", "operador")

	aberta, err := svc.AbrirSessao(ctx, op)
	require.NoError(t, err)
	id := uuid.MustParse(aberta.ID)

	_, err = svc.FecharSessao(ctx, id, op)
	require.NoError(t, err)

	_, err = svc.FecharSessao(ctx, id, op)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestFecharSessaoConcorrente(t *testing.T) {
	// Two closes racing past the pre-check: the conditional update lets
	// exactly one through and the closing stamp belongs to the winner.
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()

	aberta, err := svc.AbrirSessao(ctx, identidadeOperador("Maria", "operador"))
	require.NoError(t, err)
	id := uuid.MustParse(aberta.ID)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.FecharSessao(ctx, id, identidadeOperador("Operador "+string(rune('A'+i)), "operador"))
		}(i)
	}
	wg.Wait()

	sucessos := 0
	for _, err := range errs {
		if err == nil {
			sucessos++
			continue
		}
		assert.True(t, apierror.IsKind(err, apierror.KindInvalidState), "err = %v", err)
	}
	assert.Equal(t, 1, sucessos)

	// The stamp is the winner's, untouched by the losers
	sessao, err := repo.FindSessaoByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sessao.FechadoPorNome)
	require.NotNil(t, sessao.FechadaEm)
	assert.Equal(t, model.SessaoFechada, sessao.Status)
}

func TestFecharSessaoInexistente(t *testing.T) {
	svc := service.NewCaixaService(newFakeCaixaRepo(), nil)
	_, err := svc.FecharSessao(context.Background(), uuid.New(), identidadeOperador("Maria", "operador"))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestSessaoAtual(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()

	atual, err := svc.SessaoAtual(ctx)
	require.NoError(t, err)
	assert.Nil(t, atual)

	aberta, err := svc.AbrirSessao(ctx, identidadeOperador("Maria", "operador"))
	require.NoError(t, err)

	atual, err = svc.SessaoAtual(ctx)
	require.NoError(t, err)
	require.NotNil(t, atual)
	assert.Equal(t, aberta.ID, atual.ID)
}

// ── Movimentações ────────────────────────────────────────────────────────────

func TestRegistrarMovimentacao(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()
	op := identidadeOperador("Maria", "operador")

	aberta, err := svc.AbrirSessao(ctx, op)
	require.NoError(t, err)

	// sessao_id omitted: defaults to the open session
	mov, err := svc.RegistrarMovimentacao(ctx, op, dto.MovimentacaoRequest{
		Tipo:      model.MovimentacaoEntrada,
		Valor:     decimal.NewFromInt(50),
		Descricao: "troco inicial",
	})
	require.NoError(t, err)
	assert.Equal(t, aberta.ID, mov.SessaoID)
	assert.Equal(t, "Maria", mov.Operador)

	ret, err := svc.RegistrarMovimentacao(ctx, op, dto.MovimentacaoRequest{
		SessaoID:  aberta.ID,
		Tipo:      model.MovimentacaoRetirada,
		Valor:     decimal.NewFromInt(20),
		Descricao: "sangria",
	})
	require.NoError(t, err)
	// Valor is stored positive; the sign lives in tipo
	assert.True(t, ret.Valor.Equal(decimal.NewFromInt(20)))

	movs, err := svc.ListarMovimentacoes(ctx, uuid.MustParse(aberta.ID))
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "troco inicial", movs[0].Descricao)
	assert.Equal(t, "sangria", movs[1].Descricao)
}

func TestRegistrarMovimentacaoValorInvalido(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()
	op := identidadeOperador("Maria", "operador")

	_, err := svc.AbrirSessao(ctx, op)
	require.NoError(t, err)

	for _, valor := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := svc.RegistrarMovimentacao(ctx, op, dto.MovimentacaoRequest{
			Tipo:      model.MovimentacaoEntrada,
			Valor:     valor,
			Descricao: "inválida",
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	}
}

func TestRegistrarMovimentacaoSemSessaoAberta(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()
	op := identidadeOperador("Maria", "operador")

	_, err := svc.RegistrarMovimentacao(ctx, op, dto.MovimentacaoRequest{
		Tipo:      model.MovimentacaoEntrada,
		Valor:     decimal.NewFromInt(10),
		Descricao: "sem sessão",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestRegistrarMovimentacaoEmSessaoFechada(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()
	op := identidadeOperador("Maria", "operador")

	aberta, err := svc.AbrirSessao(ctx, op)
	require.NoError(t, err)
	id := uuid.MustParse(aberta.ID)
	_, err = svc.FecharSessao(ctx, id, op)
	require.NoError(t, err)

	_, err = svc.RegistrarMovimentacao(ctx, op, dto.MovimentacaoRequest{
		SessaoID:  aberta.ID,
		Tipo:      model.MovimentacaoRetirada,
		Valor:     decimal.NewFromInt(10),
		Descricao: "tarde demais",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

// ── DeletarSessao ────────────────────────────────────────────────────────────

func TestDeletarSessaoSomenteAdmin(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := service.NewCaixaService(repo, nil)
	ctx := context.Background()

	aberta, err := svc.AbrirSessao(ctx, identidadeOperador("Maria", "operador"))
	require.NoError(t, err)
	id := uuid.MustParse(aberta.ID)

	err = svc.DeletarSessao(ctx, id, identidadeOperador("Carlos", "supervisor"))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindPermission))

	err = svc.DeletarSessao(ctx, id, identidadeOperador("Ana", "administrador"))
	require.NoError(t, err)

	atual, err := svc.SessaoAtual(ctx)
	require.NoError(t, err)
	assert.Nil(t, atual)
}
