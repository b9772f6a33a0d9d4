package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey 共享密钥请求头
const HeaderAPIKey = "X-API-KEY"

// APIKeyAuth 共享密钥认证中间件
// 除文档与健康检查外的所有路由都必须携带与配置一致的 X-API-KEY
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "缺少 X-API-KEY",
			})
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "无效的 X-API-KEY",
			})
			return
		}
		c.Next()
	}
}
