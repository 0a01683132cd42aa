package router

import (
	"time"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/config"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/handler"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/middleware"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/repository"
	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// dispatcher may be nil (tests, no async report pipeline).
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher service.FechamentoDispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	operadorRepo := repository.NewOperadorRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(operadorRepo, cfg)
	caixaSvc := service.NewCaixaService(caixaRepo, dispatcher)
	reconcSvc := service.NewReconciliacaoService(caixaRepo, vendaRepo, db)
	vendaSvc := service.NewVendaService(vendaRepo, caixaRepo, auditoriaRepo, db)
	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo, vendaRepo, db)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc, reconcSvc)
	vendasH := handler.NewVendasHandler(vendaSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		todos := middleware.RequirePerfil("operador", "supervisor", "administrador")

		caixa := v1.Group("/caixa")
		{
			caixa.POST("/sessoes", todos, caixaH.Abrir)
			caixa.GET("/sessoes", todos, caixaH.Listar)
			caixa.GET("/sessoes/atual", todos, caixaH.Atual)
			caixa.POST("/sessoes/:id/fechar", todos, caixaH.Fechar)
			caixa.DELETE("/sessoes/:id", middleware.RequirePerfil("administrador"), caixaH.Deletar)
			caixa.GET("/sessoes/:id/movimentacoes", todos, caixaH.ListarMovimentacoes)
			caixa.GET("/sessoes/:id/reconciliacao", todos, caixaH.Reconciliacao)
			caixa.GET("/sessoes/:id/reconciliacao.csv", middleware.RequirePerfil("supervisor", "administrador"), caixaH.ReconciliacaoCSV)
			caixa.POST("/movimentacoes", todos, caixaH.RegistrarMovimentacao)
		}

		v1.POST("/vendas", todos, vendasH.Registrar)
		v1.GET("/vendas", todos, vendasH.Listar)
		v1.GET("/vendas/deletadas", middleware.RequirePerfil("supervisor", "administrador"), auditoriaH.Listar)
		v1.POST("/vendas/deletadas/:id/restaurar", middleware.RequirePerfil("administrador"), auditoriaH.Restaurar)
		v1.GET("/vendas/:id", todos, vendasH.Buscar)
		v1.DELETE("/vendas/:id", middleware.RequirePerfil("supervisor", "administrador"), vendasH.Deletar)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
