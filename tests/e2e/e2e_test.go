//go:build integration

package e2e

// End-to-end integration tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - full register cycle: login → abrir sessão → movimentação → venda →
//     fechar → reconciliação
//   - concurrent session opens racing the partial unique index
//   - delete → audit listing → restore keeping the original sale id

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/config"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/infra"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("mercearia_test"),
		tcPostgres.WithUsername("mercearia"),
		tcPostgres.WithPassword("mercearia"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the admin operator
	hash, err := bcrypt.GenerateFromPassword([]byte("mercearia2026"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Operador{
		ID:           uuid.New(),
		Username:     "admin@e2e.test",
		Nome:         "Admin E2E",
		PasswordHash: string(hash),
		Perfil:       "administrador",
		Ativo:        true,
	}).Error)

	r := router.New(cfg, db, rdb, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin@e2e.test", "password": "mercearia2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, engine: r}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeCaixa(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Open a session
	abrirResp := do(t, env.server, "POST", "/v1/caixa/sessoes", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusCreated, abrirResp.StatusCode)
	var sessao struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeJSON(t, abrirResp, &sessao)
	assert.Equal(t, "aberta", sessao.Status)

	// 2. Register a cash movement
	movResp := do(t, env.server, "POST", "/v1/caixa/movimentacoes",
		jsonBody(t, map[string]any{"tipo": "entrada", "valor": "20.00", "descricao": "troco inicial"}),
		env.token)
	require.Equal(t, http.StatusCreated, movResp.StatusCode)

	// 3. Register a sale: 2x 25.00, paid 50.00 cash
	vendaResp := do(t, env.server, "POST", "/v1/vendas",
		jsonBody(t, map[string]any{
			"itens": []map[string]any{
				{"produto_nome": "Arroz 5kg", "quantidade": 2, "preco_unitario": "25.00"},
			},
			"pagamentos": []map[string]any{
				{"metodo": "dinheiro", "valor": "50.00"},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, vendaResp.StatusCode)
	var venda struct {
		ID    string `json:"id"`
		Total string `json:"total"`
	}
	decodeJSON(t, vendaResp, &venda)
	assert.Equal(t, "50.00", venda.Total)

	// 4. Reconcile while open: 50 cash + 20 movement = 70 expected
	recResp := do(t, env.server, "GET", "/v1/caixa/sessoes/"+sessao.ID+"/reconciliacao", nil, env.token)
	require.Equal(t, http.StatusOK, recResp.StatusCode)
	var rec struct {
		DinheiroEsperado string `json:"dinheiro_esperado"`
		PorPagamento     struct {
			Dinheiro string `json:"dinheiro"`
		} `json:"por_pagamento"`
	}
	decodeJSON(t, recResp, &rec)
	assert.Equal(t, "50.00", rec.PorPagamento.Dinheiro)
	assert.Equal(t, "70.00", rec.DinheiroEsperado)

	// 5. Close the session
	fecharResp := do(t, env.server, "POST", "/v1/caixa/sessoes/"+sessao.ID+"/fechar", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, fecharResp.StatusCode)
	var fechada struct {
		Status    string  `json:"status"`
		FechadaEm *string `json:"fechada_em"`
	}
	decodeJSON(t, fecharResp, &fechada)
	assert.Equal(t, "fechada", fechada.Status)
	require.NotNil(t, fechada.FechadaEm)

	// 6. No open session anymore
	atualResp := do(t, env.server, "GET", "/v1/caixa/sessoes/atual", nil, env.token)
	assert.Equal(t, http.StatusNotFound, atualResp.StatusCode)
	atualResp.Body.Close()
}

// The partial unique index is the real arbiter under concurrency: of N
// simultaneous opens exactly one wins, the rest get 409.
func TestE2E_AberturaConcorrente(t *testing.T) {
	env := setupTestEnv(t)

	const n = 8
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := do(t, env.server, "POST", "/v1/caixa/sessoes", jsonBody(t, map[string]any{}), env.token)
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)
}

func TestE2E_DeletarERestaurarVenda(t *testing.T) {
	env := setupTestEnv(t)

	abrirResp := do(t, env.server, "POST", "/v1/caixa/sessoes", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusCreated, abrirResp.StatusCode)
	abrirResp.Body.Close()

	vendaResp := do(t, env.server, "POST", "/v1/vendas",
		jsonBody(t, map[string]any{
			"itens": []map[string]any{
				{"produto_nome": "Café 500g", "quantidade": 1, "preco_unitario": "18.50"},
			},
			"pagamentos": []map[string]any{
				{"metodo": "pix", "valor": "18.50"},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, vendaResp.StatusCode)
	var venda struct {
		ID string `json:"id"`
	}
	decodeJSON(t, vendaResp, &venda)

	// Delete
	delResp := do(t, env.server, "DELETE", "/v1/vendas/"+venda.ID, nil, env.token)
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
	delResp.Body.Close()

	buscarResp := do(t, env.server, "GET", "/v1/vendas/"+venda.ID, nil, env.token)
	assert.Equal(t, http.StatusNotFound, buscarResp.StatusCode)
	buscarResp.Body.Close()

	// Audit listing carries the snapshot
	listResp := do(t, env.server, "GET", "/v1/vendas/deletadas", nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var deletadas []struct {
		ID          string `json:"id"`
		VendaID     string `json:"saleId"`
		Restauravel bool   `json:"restorable"`
	}
	decodeJSON(t, listResp, &deletadas)
	require.Len(t, deletadas, 1)
	assert.Equal(t, venda.ID, deletadas[0].VendaID)
	assert.True(t, deletadas[0].Restauravel)

	// Restore: same original id comes back
	restResp := do(t, env.server, "POST", "/v1/vendas/deletadas/"+deletadas[0].ID+"/restaurar", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusCreated, restResp.StatusCode)
	var restaurada struct {
		ID string `json:"id"`
	}
	decodeJSON(t, restResp, &restaurada)
	assert.Equal(t, venda.ID, restaurada.ID)

	// Double restore is rejected
	again := do(t, env.server, "POST", "/v1/vendas/deletadas/"+deletadas[0].ID+"/restaurar", jsonBody(t, map[string]any{}), env.token)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	again.Body.Close()
}
