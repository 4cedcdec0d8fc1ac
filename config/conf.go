package config

// Config is the process-wide configuration, set once by Init.
var Config *Conf

// 项目全局配置文件
type Conf struct {
	Env   EnvConfig
	Log   LogConfig
	Chain ChainConfig
	// mint 记录落库（可选），address 为空时使用内存存储
	Mysql MysqlConfig
	// 会话与扫块游标（可选），address 为空时使用内存存储
	Redis        RedisConfig
	Jwt          JwtConfig
	DefaultAdmin DefaultAdminConfig
	Email        EmailConfig
	// 签名钱包的 gas 余额告警阈值
	Threshold ThresholdConfig
	Monitor   MonitorConfig
	Limit     LimitConfig
}

type EnvConfig struct {
	Port        string `toml:"port"`
	Version     string `toml:"version"`
	Development bool   `toml:"development"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Path       string `toml:"path"`
	MaxSize    int    `toml:"max_size"` // MB
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Compress   bool   `toml:"compress"`
}

type ChainConfig struct {
	ChainId        int64  `toml:"chain_id"`
	RpcEndpointUrl string `toml:"rpc_endpoint_url"`
	// websocket 节点地址，配置后使用日志订阅，否则轮询
	WsUrl        string `toml:"ws_url"`
	TokenAddress string `toml:"token_address"`
	// 只读模式：不加载私钥，mint 接口返回 not implemented
	ReadOnly            bool   `toml:"read_only"`
	ReceiptPollInterval int64  `toml:"receipt_poll_interval"` // ms
	ScanFromBlock       uint64 `toml:"scan_from_block"`
	ScanBatchSize       uint64 `toml:"scan_batch_size"`
	ScanPollInterval    int64  `toml:"scan_poll_interval"` // s
	WorkerNum           int    `toml:"worker_num"`
	FeedEnabled         bool   `toml:"feed_enabled"`

	// PrivateKey is only ever read from the PRIVATE_KEY environment variable.
	PrivateKey string `toml:"-"`
}

type MysqlConfig struct {
	Driver       string `toml:"driver"` // mysql | postgres
	Address      string `toml:"address"`
	Port         string `toml:"port"`
	DbName       string `toml:"db_name"`
	UserName     string `toml:"user_name"`
	Password     string `toml:"password"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifeTime  int    `toml:"max_life_time"` // s
}

type RedisConfig struct {
	Address     string `toml:"address"`
	Port        string `toml:"port"`
	Db          int    `toml:"db"`
	Password    string `toml:"password"`
	MaxIdle     int    `toml:"max_idle"`
	MaxActive   int    `toml:"max_active"`
	IdleTimeout int    `toml:"idle_timeout"` // s
}

type JwtConfig struct {
	SecretKey  string `toml:"secret_key"`
	ExpireTime int    `toml:"expire_time"` // duration, s
}

type DefaultAdminConfig struct {
	Username string `toml:"username"`
	// bcrypt hash of the admin password
	PasswordHash string `toml:"password_hash"`
}

type EmailConfig struct {
	Username string   `toml:"username"`
	Pwd      string   `toml:"pwd"`
	Host     string   `toml:"host"`
	Port     string   `toml:"port"`
	From     string   `toml:"from"`
	Subject  string   `toml:"subject"`
	To       []string `toml:"to"`
	Cc       []string `toml:"cc"`
}

type ThresholdConfig struct {
	MinGasBalance string `toml:"min_gas_balance"` // ether units
}

type MonitorConfig struct {
	IntervalMinutes uint64 `toml:"interval_minutes"`
}

type LimitConfig struct {
	MintRps   float64 `toml:"mint_rps"`
	MintBurst int     `toml:"mint_burst"`
}
