package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/thescopedao/solana_arb_bot/config"
	"github.com/thescopedao/solana_arb_bot/core/web/handler"
	"github.com/thescopedao/solana_arb_bot/utils/logger"
)

func ServerRoute() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(MiddleLogger("./log/visit.log", "/health", "/metrics"), gin.Recovery())

	// http router
	router.GET("/health", handler.HealthHandler)
	router.GET("/arb/status", handler.ArbStatusHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// Run serves the status API until ctx is cancelled, then drains.
func Run(ctx context.Context) {
	server := &http.Server{
		Addr:         config.GetWebConfig().Listen,
		Handler:      ServerRoute(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("web server exited")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("web server shutdown failed")
	}
}
