package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/http/handlers/common"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
	repoCommon "github.com/workkeaco-commits/networkk-web-sub001/internal/repository/common"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/service"
)

type WalletHandler struct {
	wallets *service.WalletService
}

func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetMyWallet GET /wallets/me
// Роль из токена определяет, какая таблица кошельков читается.
func (h *WalletHandler) GetMyWallet(c *gin.Context) {
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

	kind := repository.WalletKindClient
	if role == models.RoleFreelancer {
		kind = repository.WalletKindFreelancer
	}

	wallet, err := h.wallets.GetWallet(c.Request.Context(), kind, userID)
	if err != nil {
		if errors.Is(err, repoCommon.ErrNotFound) {
			// Кошелёк создаётся лениво: до первого зачисления его нет.
			c.JSON(http.StatusOK, gin.H{"wallet": nil})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}
