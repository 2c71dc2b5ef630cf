package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Session    SessionConfig    `toml:"session"`
	LLM        LLMConfig        `toml:"llm"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Validation ValidationConfig `toml:"validation"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int      `toml:"port"`
	DevMode        bool     `toml:"dev_mode"`
	AllowedOrigins []string `toml:"allowed_origins"`
	TLSCertFile    string   `toml:"tls_cert_file"`
	TLSKeyFile     string   `toml:"tls_key_file"`
}

// DataConfig 数据目录配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// SessionConfig 文档会话存储配置
type SessionConfig struct {
	Backend       string   `toml:"backend"` // memory | sqlite | redis
	TTL           Duration `toml:"ttl"`
	SweepInterval Duration `toml:"sweep_interval"`
	SQLiteFile    string   `toml:"sqlite_file"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPrefix   string   `toml:"redis_prefix"`
}

// LLMConfig 模型服务配置
type LLMConfig struct {
	BaseURL        string   `toml:"base_url"`
	APIKey         string   `toml:"api_key"`
	ChatModel      string   `toml:"chat_model"`
	SummaryModel   string   `toml:"summary_model"`
	EmbeddingModel string   `toml:"embedding_model"`
	Timeout        Duration `toml:"timeout"`
}

// EmbeddingConfig 文档切片与检索配置
type EmbeddingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	TopK         int `toml:"top_k"`
}

// ValidationConfig 动作校验配置
type ValidationConfig struct {
	StrictRows bool `toml:"strict_rows"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text | json
	File   string `toml:"file"`
}

// Duration 以 "24h" / "10m" 形式出现在 config.toml 中
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           3001,
			DevMode:        false,
			AllowedOrigins: []string{"https://localhost:3000", "http://localhost:3000"},
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Session: SessionConfig{
			Backend:       "memory",
			TTL:           Duration{24 * time.Hour},
			SweepInterval: Duration{10 * time.Minute},
			SQLiteFile:    "sessions.db",
			RedisAddr:     "localhost:6379",
			RedisPrefix:   "dcfassist:session:",
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com",
			ChatModel:      "gpt-4-turbo-preview",
			SummaryModel:   "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        Duration{2 * time.Minute},
		},
		Embedding: EmbeddingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         3,
		},
		Validation: ValidationConfig{
			StrictRows: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFile(DefaultConfigPath())
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置
// 之后依次加载同目录 .env 与环境变量覆盖
func LoadFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case errors.Is(err, fs.ErrNotExist):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, info, err
	}
	if applyEnv(config) {
		info.PortSpecified = true
	}

	return config, info, nil
}

// loadDotEnv 加载 .env；不会覆盖已存在的环境变量
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// applyEnv 环境变量覆盖，返回是否通过 PORT 指定了端口
func applyEnv(config *AppConfig) (portFromEnv bool) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			config.Server.Port = port
			portFromEnv = true
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		config.LLM.BaseURL = v
	}
	if v := os.Getenv("DCF_SESSION_BACKEND"); v != "" {
		config.Session.Backend = v
	}
	if v := os.Getenv("DCF_REDIS_ADDR"); v != "" {
		config.Session.RedisAddr = v
	}
	if v := os.Getenv("DCF_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	return portFromEnv
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到指定路径，先写临时文件再重命名
func SaveConfig(config *AppConfig, configPath string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, configPath)
}

// EnsureDataDir 确保数据目录存在
// 相对路径以可执行文件所在目录为基准
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, _ := GetExeDir()
		if exeDir == "" {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}
	return filepath.Join(dataDir, filename)
}
