package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"leadflow.backend/internal/domain/entities"
	"leadflow.backend/pkg/utils"
)

// requestMeta captures the client metadata recorded alongside audit entries.
func requestMeta(c *gin.Context) entities.RequestMeta {
	return entities.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// paginationFromQuery parses page/limit query params with defaults.
func paginationFromQuery(c *gin.Context) utils.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit > 100 {
		limit = 100
	}
	return utils.GetPaginationParams(page, limit)
}
