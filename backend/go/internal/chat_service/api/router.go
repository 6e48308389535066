package api

import (
	"time"

	"moihub_chatbot/backend/go/pkg/circuitbreaker"
	"moihub_chatbot/backend/go/pkg/httpmiddleware"
	"moihub_chatbot/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RouterOptions 控制路由上挂载的中间件。
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	Breaker        circuitbreaker.CircuitBreaker // 为 nil 时不启用熔断
}

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, log *logger.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(log))
	r.Use(httpmiddleware.CORS(opts.AllowedOrigins))
	if opts.Breaker != nil {
		r.Use(httpmiddleware.CircuitBreak(opts.Breaker))
	}
	r.Use(httpmiddleware.RequestTimeout(opts.RequestTimeout))

	r.POST("/chat", h.Chat)
	r.POST("/train", h.Train)
	r.GET("/knowledge", h.ListKnowledge)
	r.GET("/healthz", h.Health)

	return r
}
