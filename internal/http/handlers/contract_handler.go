package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/http/handlers/common"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/service"
)

type ContractHandler struct {
	schedule   *service.ScheduleService
	milestones service.MilestoneRepository
}

func NewContractHandler(schedule *service.ScheduleService, milestones service.MilestoneRepository) *ContractHandler {
	return &ContractHandler{schedule: schedule, milestones: milestones}
}

// Schedule POST /contracts/:id/schedule
// Строит расписание этапов и открывает escrow-холды. Повторный вызов
// безопасен: уже расписанный контракт возвращает already_present.
func (h *ContractHandler) Schedule(c *gin.Context) {
	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.schedule.Build(c.Request.Context(), contractID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.AlreadyPresent {
		c.JSON(http.StatusOK, gin.H{
			"ok":               true,
			"status":           "already_present",
			"payments_created": result.PaymentsCreated,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":       true,
		"inserted": result.Inserted,
	})
}

// ListMilestones GET /contracts/:id/milestones
func (h *ContractHandler) ListMilestones(c *gin.Context) {
	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	milestones, err := h.milestones.ListByContract(c.Request.Context(), contractID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}
