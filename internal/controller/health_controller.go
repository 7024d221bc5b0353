package controller

import (
	"context"
	"net/http"
	"time"
	"trading_edu_backend/internal/repository"
	"trading_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store repository.ProgressStore
}

// NewHealthController checks whichever of db and rdb are configured, plus
// the progress store.
func NewHealthController(db *gorm.DB, rdb *redis.Client, store repository.ProgressStore) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Store: store}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true

	// 检查数据库连接
	if c.DB != nil {
		components["database"] = "up"
		sqlDB, err := c.DB.DB()
		if err != nil || sqlDB.PingContext(reqCtx) != nil {
			components["database"] = "down"
			healthy = false
		}
	}

	if c.Redis != nil {
		components["redis"] = "up"
		if err := c.Redis.Ping(reqCtx).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		}
	}

	if c.Store != nil {
		components["progressStore"] = "up"
		if err := c.Store.Ping(reqCtx); err != nil {
			components["progressStore"] = "down"
			healthy = false
		}
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "Service degraded",
			Data:    gin.H{"status": "degraded", "components": components},
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
