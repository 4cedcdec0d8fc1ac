package validate

import (
	"errors"
	"io"

	"token-backend/api/common/statecode"
	"token-backend/api/models/request"

	"github.com/gin-gonic/gin"
)

type User struct{}

func NewUser() *User {
	return &User{}
}

// Login 用户名密码均不能为空
func (v *User) Login(c *gin.Context, req *request.Login) int {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		return statecode.ParameterEmptyErr
	} else if err != nil {
		for _, e := range fieldErrors(err) {
			if e.Tag() == "required" {
				return statecode.ParameterEmptyErr
			}
		}
		return statecode.ParameterErr
	}
	return statecode.CommonSuccess
}
