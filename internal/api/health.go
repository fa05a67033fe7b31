package api

import (
	"context"
	"net/http"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/transport"

	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		logger.FromCtx(ctx).Error("health check failed", zap.Error(err))
		transport.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
