package request

// Address 路径参数 :address
type Address struct {
	Address string `uri:"address" binding:"required,eth_addr"`
}

// TxHash 路径参数 :hash
type TxHash struct {
	Hash string `uri:"hash" binding:"required,tx_hash"`
}

type MintTokens struct {
	Address string `json:"address" binding:"required,eth_addr"`
}

type MintList struct {
	Address string `form:"address" binding:"omitempty,eth_addr"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type Login struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}
