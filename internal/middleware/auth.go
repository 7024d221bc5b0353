package middleware

import (
	"strings"
	"trading_edu_backend/internal/config"
	"trading_edu_backend/internal/util"
	"trading_edu_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware accepts access tokens of the hosted auth provider, from the
// Authorization header or the token query parameter.
func AuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			logger.Log.Debug("JWT issuer mismatch", zap.String("issuer", claims.Issuer))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// ByUser rate-limits authenticated requests per learner and falls back to
// the client IP.
func ByUser(c *gin.Context) string {
	if claims := util.GetUserFromContext(c); claims != nil {
		return "user:" + claims.UserID()
	}
	return "ip:" + c.ClientIP()
}
