package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/http/handlers/common"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/service"
)

type SettlementHandler struct {
	settlement   *service.SettlementService
	defaultLimit int
}

func NewSettlementHandler(settlement *service.SettlementService, defaultLimit int) *SettlementHandler {
	if defaultLimit <= 0 {
		defaultLimit = service.DefaultSweepLimit
	}
	return &SettlementHandler{settlement: settlement, defaultLimit: defaultLimit}
}

// Run POST /settlement/run
// Вызывается внешним планировщиком; авторизация через X-Sweep-Secret
// проверяется в middleware. Возвращает только агрегированные счётчики.
func (h *SettlementHandler) Run(c *gin.Context) {
	limit := common.ParseIntQuery(c, "limit", h.defaultLimit)

	summary, err := h.settlement.Run(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"released": summary.Released,
		"refunded": summary.Refunded,
		"skipped":  summary.Skipped,
	})
}
