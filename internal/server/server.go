package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/dealdesk/internal/config"
	leaddomain "github.com/smallbiznis/dealdesk/internal/lead/domain"
	"github.com/smallbiznis/dealdesk/internal/observability"
	obslogger "github.com/smallbiznis/dealdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/dealdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/dealdesk/internal/observability/tracing"
	productdomain "github.com/smallbiznis/dealdesk/internal/product/domain"
	proposaldomain "github.com/smallbiznis/dealdesk/internal/proposal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log.Named("http"), obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	leadSvc     leaddomain.Service
	productSvc  productdomain.Service
	proposalSvc proposaldomain.Service
	draftSvc    proposaldomain.DraftService
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	LeadSvc     leaddomain.Service
	ProductSvc  productdomain.Service
	ProposalSvc proposaldomain.Service
	DraftSvc    proposaldomain.DraftService
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		leadSvc:     p.LeadSvc,
		productSvc:  p.ProductSvc,
		proposalSvc: p.ProposalSvc,
		draftSvc:    p.DraftSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", OrgContext())

	// -------- Leads --------
	api.GET("/leads", s.ListLeads)
	api.POST("/leads", s.CreateLead)
	api.GET("/leads/:id", s.GetLeadByID)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.POST("/products/:id/archive", s.ArchiveProduct)

	// -------- Proposal drafts --------
	drafts := api.Group("/proposal-drafts")
	{
		drafts.POST("", s.StartProposalDraft)
		drafts.GET("/:id", s.GetProposalDraft)
		drafts.DELETE("/:id", s.DiscardProposalDraft)
		drafts.PATCH("/:id", s.UpdateProposalDraftDetails)
		drafts.PUT("/:id/customer", s.SelectProposalDraftCustomer)
		drafts.POST("/:id/items", s.AddProposalDraftItem)
		drafts.DELETE("/:id/items/:item_id", s.RemoveProposalDraftItem)
		drafts.POST("/:id/tax/toggle", s.ToggleProposalDraftTax)
		drafts.PUT("/:id/tax/rate", s.EditProposalDraftTaxRate)
		drafts.POST("/:id/save", s.SaveProposalDraft)
	}

	// -------- Proposals --------
	api.GET("/proposals", s.ListProposals)
	api.GET("/proposals/:id", s.GetProposalByID)
	api.POST("/proposals/:id/drafts", s.EditProposal)
	api.POST("/proposals/:id/status", s.UpdateProposalStatus)
	api.POST("/proposals/:id/send", s.SendProposal)
	api.GET("/proposals/:id/pdf", s.DownloadProposalPDF)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
