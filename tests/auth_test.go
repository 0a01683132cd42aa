package tests

import (
	"context"
	"testing"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/config"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/dto"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*fakeOperadorRepo, service.AuthService) {
	t.Helper()
	repo := newFakeOperadorRepo()
	cfg := &config.Config{
		JWTSecret:          "segredo-de-teste",
		JWTExpirationHours: 8,
		JWTRefreshHours:    168,
	}
	return repo, service.NewAuthService(repo, cfg)
}

// MinCost keeps the hashing negligible in tests.
func seedOperador(t *testing.T, repo *fakeOperadorRepo, username, senha, perfil string, ativo bool) *model.Operador {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	require.NoError(t, err)
	op := &model.Operador{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Nome:         "Maria Souza",
		Perfil:       perfil,
		Ativo:        ativo,
	}
	repo.operadores[username] = op
	return op
}

func TestLogin(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedOperador(t, repo, "maria@mercearia.com", "1234", "administrador", true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria@mercearia.com",
		Password: "1234",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "Maria Souza", resp.Nome)
	assert.Equal(t, "administrador", resp.Perfil)
}

func TestLoginSenhaErrada(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedOperador(t, repo, "maria@mercearia.com", "1234", "operador", true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria@mercearia.com",
		Password: "errada",
	})
	assert.ErrorIs(t, err, service.ErrCredenciaisInvalidas)
}

func TestLoginUsuarioDesconhecido(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ninguem@mercearia.com",
		Password: "1234",
	})
	// Same error as wrong password: the response must not reveal which
	// credential was wrong.
	assert.ErrorIs(t, err, service.ErrCredenciaisInvalidas)
}

func TestLoginOperadorInativo(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedOperador(t, repo, "antigo@mercearia.com", "1234", "operador", false)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "antigo@mercearia.com",
		Password: "1234",
	})
	assert.ErrorIs(t, err, service.ErrCredenciaisInvalidas)
}

func TestRefresh(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedOperador(t, repo, "maria@mercearia.com", "1234", "supervisor", true)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria@mercearia.com",
		Password: "1234",
	})
	require.NoError(t, err)

	renovado, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renovado.AccessToken)
	assert.Equal(t, "supervisor", renovado.Perfil)
}

func TestRefreshTokenInvalido(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "nem-um-jwt")
	assert.Error(t, err)
}

func TestRefreshOperadorDesativado(t *testing.T) {
	repo, svc := newAuthFixture(t)
	op := seedOperador(t, repo, "maria@mercearia.com", "1234", "operador", true)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria@mercearia.com",
		Password: "1234",
	})
	require.NoError(t, err)

	op.Ativo = false
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}
