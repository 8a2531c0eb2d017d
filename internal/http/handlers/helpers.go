package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
)

// respondServiceError переводит ошибку сервиса в HTTP ответ.
// Доменные ошибки несут свой статус, всё остальное маскируется.
func respondServiceError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
}
