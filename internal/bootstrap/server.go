package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/voyagent/voyagent/api"
	"github.com/voyagent/voyagent/config"
	"github.com/voyagent/voyagent/internal/auth"
	"github.com/voyagent/voyagent/internal/chat"
	"github.com/voyagent/voyagent/internal/service/reservation"
	"go.uber.org/zap"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, chatSvc chat.UseCase, reservationSvc reservation.ReservationUseCase, log *zap.Logger) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, chatSvc, reservationSvc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, chatSvc chat.UseCase, reservationSvc reservation.ReservationUseCase) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/api", auth.Middleware(cfg.Auth.JWTSecret))
	api.NewChatHandler(chatSvc).Register(protected.Group("/chats"))
	api.NewReservationHandler(reservationSvc).Register(protected.Group("/reservations"))

	return router
}
