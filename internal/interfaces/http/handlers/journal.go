// internal/interfaces/http/handlers/journal.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/journal"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
)

// JournalHandler exposes pending cross-aggregate operations to admins
type JournalHandler struct {
	journal *journal.Journal
	logger  *logrus.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(j *journal.Journal, logger *logrus.Logger) *JournalHandler {
	return &JournalHandler{journal: j, logger: logger}
}

type journalQuery struct {
	Limit int `form:"limit,default=100" binding:"min=1,max=1000"`
}

// ListPending handles GET /admin/journal
func (h *JournalHandler) ListPending(c *gin.Context) {
	var q journalQuery
	if !bindQuery(c, &q) {
		return
	}

	ops, err := h.journal.Pending(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, h.logger, apperror.Internal("failed to list pending operations", err))
		return
	}
	respondList(c, ops, len(ops))
}

// Replay handles POST /admin/journal/replay
func (h *JournalHandler) Replay(c *gin.Context) {
	var q journalQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.journal.Replay(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, h.logger, apperror.Internal("failed to replay pending operations", err))
		return
	}
	respondData(c, http.StatusOK, result)
}
