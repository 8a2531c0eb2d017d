package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/http/handlers/common"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/service"
)

type MilestoneHandler struct {
	submissions *service.SubmissionService
	milestones  service.MilestoneRepository
}

func NewMilestoneHandler(submissions *service.SubmissionService, milestones service.MilestoneRepository) *MilestoneHandler {
	return &MilestoneHandler{submissions: submissions, milestones: milestones}
}

// GetMilestone GET /milestones/:id
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	milestoneID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	milestone, err := h.milestones.GetByID(c.Request.Context(), milestoneID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	submissions, err := h.milestones.ListSubmissions(c.Request.Context(), milestoneID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestone":   milestone,
		"submissions": submissions,
	})
}

// Submit POST /milestones/:id/submissions
func (h *MilestoneHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	milestoneID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		SubmissionURL *string `json:"submission_url"`
		Notes         *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	submission, err := h.submissions.Submit(c.Request.Context(), milestoneID, userID, req.SubmissionURL, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission":   submission,
		"submitted_at": submission.SubmittedAt,
	})
}

// Decide POST /milestones/:id/decision
func (h *MilestoneHandler) Decide(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	milestoneID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		SubmissionID string  `json:"submission_id" binding:"required"`
		Approve      *bool   `json:"approve" binding:"required"`
		Reason       *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "нужно указать submission_id и approve")
		return
	}

	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		common.RespondBadRequest(c, "неверный submission_id")
		return
	}

	result, err := h.submissions.Decide(c.Request.Context(), milestoneID, submissionID, userID, role, *req.Approve, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.Approved {
		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"net_amount":  result.NetAmount,
			"fee_percent": result.FeePercent,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
