package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

const DefaultConfigPath = "config/config.toml"

// 环境变量，覆盖配置文件
const (
	EnvRpcEndpointUrl = "RPC_ENDPOINT_URL"
	EnvTokenAddress   = "TOKEN_ADDRESS"
	EnvChainId        = "CHAIN_ID"
	EnvWsUrl          = "WS_URL"
	EnvPrivateKey     = "PRIVATE_KEY"
	EnvJwtSecretKey   = "JWT_SECRET_KEY"
	EnvPort           = "PORT"
)

// SepoliaChainId is used when no chain id is configured.
const SepoliaChainId = 11155111

// Default returns the configuration used for keys the file leaves out.
func Default() *Conf {
	return &Conf{
		Env: EnvConfig{
			Port:    "8080",
			Version: "v1",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
		},
		Chain: ChainConfig{
			ChainId:             SepoliaChainId,
			ReceiptPollInterval: 2000,
			ScanBatchSize:       2000,
			ScanPollInterval:    12,
			WorkerNum:           4,
		},
		Mysql: MysqlConfig{
			Driver:       "mysql",
			MaxOpenConns: 20,
			MaxIdleConns: 10,
			MaxLifeTime:  300,
		},
		Redis: RedisConfig{
			Port:        "6379",
			MaxIdle:     10,
			IdleTimeout: 180,
		},
		Jwt: JwtConfig{
			ExpireTime: 86400,
		},
		Threshold: ThresholdConfig{
			MinGasBalance: "0.05",
		},
		Monitor: MonitorConfig{
			IntervalMinutes: 30,
		},
		Limit: LimitConfig{
			MintRps:   0.2,
			MintBurst: 3,
		},
	}
}

// Init 加载配置：默认值 -> toml 文件 -> .env / 环境变量。
// 结果同时写入全局 Config。
func Init(path string) (*Conf, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	conf := Default()
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		// 默认路径允许缺失，只依赖环境变量运行
		if !(errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath) {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := conf.applyEnv(); err != nil {
		return nil, err
	}

	Config = conf
	return conf, nil
}

func (c *Conf) applyEnv() error {
	if v, ok := os.LookupEnv(EnvRpcEndpointUrl); ok {
		c.Chain.RpcEndpointUrl = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvTokenAddress); ok {
		c.Chain.TokenAddress = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvWsUrl); ok {
		c.Chain.WsUrl = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvChainId); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvChainId, v, err)
		}
		c.Chain.ChainId = id
	}
	if v, ok := os.LookupEnv(EnvJwtSecretKey); ok {
		c.Jwt.SecretKey = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && strings.TrimSpace(v) != "" {
		c.Env.Port = strings.TrimSpace(v)
	}
	// export PRIVATE_KEY="十六进制私钥"
	c.Chain.PrivateKey, _ = os.LookupEnv(EnvPrivateKey)
	return nil
}

// Validate checks the keys the service cannot start without.
// An empty rpc endpoint is accepted: calls fail when they are made.
func (c *Conf) Validate() error {
	if c.Env.Port == "" {
		return errors.New("env.port is required")
	}
	if c.Chain.TokenAddress == "" {
		return fmt.Errorf("%s is required", EnvTokenAddress)
	}
	if !common.IsHexAddress(c.Chain.TokenAddress) {
		return fmt.Errorf("invalid %s format: %q", EnvTokenAddress, c.Chain.TokenAddress)
	}
	if c.Chain.ChainId <= 0 {
		return fmt.Errorf("invalid chain id %d", c.Chain.ChainId)
	}
	switch c.Mysql.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Mysql.Driver)
	}
	return nil
}

// MysqlEnabled reports whether mint records go to a database.
func (c *Conf) MysqlEnabled() bool {
	return c.Mysql.Address != ""
}

// RedisEnabled reports whether sessions and the scan cursor go to redis.
func (c *Conf) RedisEnabled() bool {
	return c.Redis.Address != ""
}
