package validate

import (
	"errors"
	"io"

	"token-backend/api/common/statecode"
	"token-backend/api/models/request"

	"github.com/gin-gonic/gin"
)

type Token struct{}

func NewToken() *Token {
	return &Token{}
}

// Address 校验路径中的钱包地址
func (v *Token) Address(c *gin.Context, req *request.Address) int {
	if err := c.ShouldBindUri(req); err != nil {
		return statecode.AddressErr
	}
	return statecode.CommonSuccess
}

// TxHash 校验路径中的交易哈希
func (v *Token) TxHash(c *gin.Context, req *request.TxHash) int {
	if err := c.ShouldBindUri(req); err != nil {
		return statecode.TxHashErr
	}
	return statecode.CommonSuccess
}

func (v *Token) MintTokens(c *gin.Context, req *request.MintTokens) int {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		return statecode.ParameterEmptyErr
	} else if err != nil {
		for _, e := range fieldErrors(err) {
			if e.Field() == "Address" && e.Tag() == "required" {
				return statecode.ParameterEmptyErr
			}
			if e.Field() == "Address" {
				return statecode.AddressErr
			}
		}
		return statecode.ParameterErr
	}
	return statecode.CommonSuccess
}

func (v *Token) MintList(c *gin.Context, req *request.MintList) int {
	if err := c.ShouldBindQuery(req); err != nil {
		for _, e := range fieldErrors(err) {
			switch e.Field() {
			case "Address":
				return statecode.AddressErr
			case "Limit":
				return statecode.LimitErr
			}
		}
		return statecode.ParameterErr
	}
	return statecode.CommonSuccess
}
