package routes

import (
	"token-backend/api/controllers"
	"token-backend/api/middlewares"
	"token-backend/api/models/ws"
	"token-backend/api/services"
	"token-backend/config"
	"token-backend/internal/metrics"
	"token-backend/internal/ratelimit"
	"token-backend/internal/repo"
	"token-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Deps 路由依赖，由 main 组装
type Deps struct {
	Conf     *config.Conf
	Token    *service.TokenService
	Feed     *service.MintFeed
	Hub      *ws.Manager
	Sessions repo.SessionStore
	Limiter  *ratelimit.KeyLimiter
	Metrics  *metrics.Metrics
}

func InitRoute(e *gin.Engine, d Deps) *gin.Engine {
	e.Use(middlewares.Metrics(d.Metrics))
	e.Use(middlewares.Cors())

	v := d.Conf.Env.Version
	if v == "" {
		v = "v1"
	}
	v1Group := e.Group("/api/" + v)

	tokenController := controllers.NewTokenController(d.Token)
	userController := controllers.NewUserController(services.NewUser(d.Conf.DefaultAdmin, d.Conf.Jwt, d.Sessions))
	feedController := controllers.NewFeedController(d.Hub, d.Feed)
	checkToken := middlewares.CheckToken(d.Conf.Jwt.SecretKey, d.Sessions)

	// token
	token := v1Group.Group("/token")
	token.GET("/", tokenController.GetHello)
	token.GET("/contract-address", tokenController.GetContractAddress)
	token.GET("/token-name", tokenController.GetTokenName)
	token.GET("/total-supply", tokenController.GetTotalSupply)
	token.GET("/token-balance/:address", tokenController.GetTokenBalance)
	token.GET("/check-minter-role/:address", tokenController.CheckMinterRole)
	token.GET("/server-wallet-address", tokenController.GetServerWalletAddress)
	token.GET("/transaction-receipt/:hash", tokenController.GetTransactionReceipt)
	token.POST("/mint-tokens", middlewares.RateLimit(d.Limiter), checkToken, tokenController.MintTokens)
	token.GET("/mints", tokenController.MintList)
	token.GET("/mint-stats", feedController.MintStats)

	// user
	v1Group.POST("/user/login", userController.Login)
	v1Group.POST("/user/logout", checkToken, userController.Logout)

	e.GET("/ws/mints", feedController.Mints)
	e.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	return e
}
