package utils

import (
	"crypto/rand"
	"math/big"
)

const randomAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GetRandomString 生成指定长度的随机字符串，用作连接 id
func GetRandomString(n int) string {
	b := make([]byte, n)
	size := big.NewInt(int64(len(randomAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			// crypto/rand 不可用时退化为固定字符
			b[i] = randomAlphabet[0]
			continue
		}
		b[i] = randomAlphabet[idx.Int64()]
	}
	return string(b)
}
