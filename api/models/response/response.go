package response

import (
	"token-backend/api/common/statecode"

	"github.com/gin-gonic/gin"
)

type Gin struct {
	Res *gin.Context
}

// Body 统一响应结构
type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Response writes the envelope with the default message of code.
func (g *Gin) Response(ctx *gin.Context, code int, data interface{}) {
	ctx.JSON(statecode.HttpStatus(code), Body{
		Code:    code,
		Message: statecode.GetMsg(code),
		Data:    data,
	})
}

// Error writes the envelope with err's text as the message.
func (g *Gin) Error(ctx *gin.Context, code int, err error) {
	message := statecode.GetMsg(code)
	if err != nil {
		message = err.Error()
	}
	ctx.JSON(statecode.HttpStatus(code), Body{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// Abort is Response for middlewares: later handlers do not run.
func (g *Gin) Abort(ctx *gin.Context, code int) {
	ctx.AbortWithStatusJSON(statecode.HttpStatus(code), Body{
		Code:    code,
		Message: statecode.GetMsg(code),
		Data:    nil,
	})
}
