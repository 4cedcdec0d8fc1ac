package response

import "token-backend/internal/repo"

type Login struct {
	TokenId string `json:"token_id"`
}

type MintList struct {
	Count int               `json:"count"`
	Rows  []repo.MintRecord `json:"rows"`
}
