package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/codelens/taskhub/internal/cache"
	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/analytics"
	"github.com/gin-gonic/gin"
)

type AnalyticsStore interface {
	Summary(ctx context.Context, q db.DBTX, ownerID string) (analytics.Summary, error)
}

type AnalyticsHandler struct {
	store AnalyticsStore
	q     db.DBTX
	cache *cache.AnalyticsCache
}

func NewAnalyticsHandler(store AnalyticsStore, q db.DBTX, analyticsCache *cache.AnalyticsCache) *AnalyticsHandler {
	return &AnalyticsHandler{
		store: store,
		q:     q,
		cache: analyticsCache,
	}
}

func (h *AnalyticsHandler) GetAnalytics(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if summary, hit := h.cache.Get(cctx, owner); hit {
		RespondData(ctx, http.StatusOK, summary)
		return
	}

	summary, err := h.store.Summary(cctx, h.q, owner)

	if err != nil {
		RespondInternal(ctx, "Could not compute analytics")
		return
	}

	h.cache.Set(cctx, owner, summary)

	RespondData(ctx, http.StatusOK, summary)
}
