package controllers

import (
	"errors"
	"strings"

	"token-backend/api/common/statecode"
	"token-backend/api/models/request"
	"token-backend/api/models/response"
	"token-backend/api/validate"
	"token-backend/internal/service"
	"token-backend/log"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// TokenController 代币合约读写接口
type TokenController struct {
	Service *service.TokenService
}

func NewTokenController(svc *service.TokenService) *TokenController {
	return &TokenController{Service: svc}
}

// chainError 链上错误原样返回给调用方
func (c *TokenController) chainError(ctx *gin.Context, res *response.Gin, op string, err error) {
	if errors.Is(err, service.ErrNotImplemented) {
		res.Error(ctx, statecode.NotImplemented, err)
		return
	}
	log.Logger.Sugar().Error(op, " err ", err)
	res.Error(ctx, statecode.ChainErr, err)
}

// GetHello 存活检查
func (c *TokenController) GetHello(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	res.Response(ctx, statecode.CommonSuccess, c.Service.GetHello())
}

func (c *TokenController) GetContractAddress(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	res.Response(ctx, statecode.CommonSuccess, c.Service.ContractAddress().Hex())
}

func (c *TokenController) GetTokenName(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	name, err := c.Service.GetTokenName(ctx.Request.Context())
	if err != nil {
		c.chainError(ctx, &res, "GetTokenName", err)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, name)
}

func (c *TokenController) GetTotalSupply(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	supply, err := c.Service.GetTotalSupply(ctx.Request.Context())
	if err != nil {
		c.chainError(ctx, &res, "GetTotalSupply", err)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, supply)
}

func (c *TokenController) GetTokenBalance(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.Address{}
	errCode := validate.NewToken().Address(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}
	log.Logger.Sugar().Info("GetTokenBalance req ", req.Address)

	balance, err := c.Service.GetTokenBalance(ctx.Request.Context(), common.HexToAddress(req.Address))
	if err != nil {
		c.chainError(ctx, &res, "GetTokenBalance", err)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, balance)
}

func (c *TokenController) CheckMinterRole(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.Address{}
	errCode := validate.NewToken().Address(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}
	log.Logger.Sugar().Info("CheckMinterRole req ", req.Address)

	ok, err := c.Service.CheckMinterRole(ctx.Request.Context(), common.HexToAddress(req.Address))
	if err != nil {
		c.chainError(ctx, &res, "CheckMinterRole", err)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, ok)
}

func (c *TokenController) GetServerWalletAddress(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	address, err := c.Service.GetServerWalletAddress()
	if err != nil {
		c.chainError(ctx, &res, "GetServerWalletAddress", err)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, address.Hex())
}

func (c *TokenController) GetTransactionReceipt(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.TxHash{}
	errCode := validate.NewToken().TxHash(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}
	log.Logger.Sugar().Info("GetTransactionReceipt req ", req.Hash)

	receipt, err := c.Service.GetTransactionReceipt(ctx.Request.Context(), common.HexToHash(req.Hash))
	if err != nil {
		c.chainError(ctx, &res, "GetTransactionReceipt", err)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, receipt)
}

// MintTokens 给地址 mint 1 个最小单位，等待交易上链后返回 hash 和 receipt
func (c *TokenController) MintTokens(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.MintTokens{}
	errCode := validate.NewToken().MintTokens(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}
	log.Logger.Sugar().Info("MintTokens req ", req.Address)

	result, err := c.Service.MintTokens(ctx.Request.Context(), common.HexToAddress(req.Address))
	if err != nil {
		c.chainError(ctx, &res, "MintTokens", err)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, result)
}

// MintList 查询 mint 记录，可按地址过滤
func (c *TokenController) MintList(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.MintList{}
	errCode := validate.NewToken().MintList(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}

	rows, err := c.Service.ListMints(ctx.Request.Context(), strings.ToLower(req.Address), req.Limit)
	if err != nil {
		log.Logger.Sugar().Error("MintList err ", err)
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, response.MintList{Count: len(rows), Rows: rows})
}
