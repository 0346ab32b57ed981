package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/yatube/utils"
)

// Health reports whether the database answers; redis is reported but optional.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := gin.H{"database": "ok", "redis": "ok"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		defer cancel()
		if rc := utils.GetRedis(); rc == nil || rc.Ping(pingCtx).Err() != nil {
			status["redis"] = "unavailable"
		}
		if code != http.StatusOK {
			utils.Respond(ctx, code, 50300, "unhealthy", status)
			return
		}
		utils.Success(ctx, status)
	}
}
