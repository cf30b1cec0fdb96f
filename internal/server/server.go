package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/globaledutech/payments/internal/config"
	"github.com/globaledutech/payments/internal/featureflag"
	"github.com/globaledutech/payments/internal/payment"
	paymentdomain "github.com/globaledutech/payments/internal/payment/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	payment.Module,
	featureflag.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	PaymentSvc paymentdomain.Service
	Flags      *featureflag.Registry
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	paymentSvc paymentdomain.Service
	flags      *featureflag.Registry
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("server"),
		paymentSvc: p.PaymentSvc,
		flags:      p.Flags,
	}
}

func registerRoutes(s *Server) {
	s.RegisterPaymentRoutes()
	s.RegisterConfigRoutes()
}

func (s *Server) RegisterPaymentRoutes() {
	payments := s.engine.Group("/payments")
	payments.POST("/razorpay/link", s.CreatePaymentLink)
	payments.POST("/razorpay/status", s.CheckPaymentStatus)
	payments.GET("/history/:user_id", s.UserPaymentHistory)
	payments.GET("/history", s.PaymentHistory)
	payments.GET("/stats", s.PaymentStats)
}

func (s *Server) RegisterConfigRoutes() {
	cfg := s.engine.Group("/config")
	cfg.GET("/flags", s.ListFlags)
	cfg.PUT("/flags/:name", s.SetFlag)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
