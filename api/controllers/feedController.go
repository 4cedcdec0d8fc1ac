package controllers

import (
	"net/http"
	"strings"
	"time"

	"token-backend/api/common/statecode"
	"token-backend/api/models/response"
	"token-backend/api/models/ws"
	"token-backend/internal/service"
	"token-backend/log"
	"token-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// FeedController 链上 mint 事件的实时推送与统计
type FeedController struct {
	Manager *ws.Manager
	// Feed is nil when the feed is disabled.
	Feed *service.MintFeed
}

func NewFeedController(manager *ws.Manager, feed *service.MintFeed) *FeedController {
	return &FeedController{Manager: manager, Feed: feed}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 5 * time.Second,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Mints 升级为 websocket，之后推送每个新 mint 事件
func (c *FeedController) Mints(ctx *gin.Context) {
	defer func() {
		recoverRes := recover()
		if recoverRes != nil {
			log.Logger.Sugar().Error("mint feed recover ", recoverRes)
		}
	}()
	if c.Feed == nil {
		res := response.Gin{Res: ctx}
		res.Response(ctx, statecode.FeedDisabled, nil)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Logger.Sugar().Error("websocket request err:", err)
		return
	}

	// 连接 ID：客户端 IP（点号换成下划线）+ 随机串
	randomId := ""
	remoteIP := ctx.RemoteIP()
	if remoteIP != "" {
		randomId = strings.Replace(remoteIP, ".", "_", -1) + "_" + utils.GetRandomString(23)
	} else {
		randomId = utils.GetRandomString(32)
	}

	server := ws.NewServer(randomId, conn)
	server.ReadAndWrite(c.Manager)
}

// MintStats 返回观察到的 mint 次数和去重接收地址数
func (c *FeedController) MintStats(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	if c.Feed == nil {
		res.Response(ctx, statecode.FeedDisabled, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, c.Feed.Stats())
}
