package controllers

import (
	"token-backend/api/common/statecode"
	"token-backend/api/models/request"
	"token-backend/api/models/response"
	"token-backend/api/services"
	"token-backend/api/validate"

	"github.com/gin-gonic/gin"
)

// UserController 处理管理员身份验证相关的请求
type UserController struct {
	Service *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{Service: svc}
}

// Login 校验用户名密码，成功后返回 token
func (c *UserController) Login(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.Login{}
	result := response.Login{}

	errCode := validate.NewUser().Login(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}

	errCode = c.Service.Login(&req, &result)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}

	res.Response(ctx, statecode.CommonSuccess, result)
}

// Logout 删除会话，之后该 token 不能再通过 CheckToken
func (c *UserController) Logout(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	// CheckToken 中间件解析 token 后写入
	username := ctx.GetString("username")
	if username == "" {
		res.Response(ctx, statecode.TokenErr, nil)
		return
	}
	res.Response(ctx, c.Service.Logout(username), nil)
}
