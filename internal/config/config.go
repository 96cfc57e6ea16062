package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultBaseURL     = "https://law.justia.com"
	DefaultProvider    = "justia"
	DefaultRoot        = "data/court_opinions"
	DefaultCatalog     = "data/courts.yaml"
	DefaultConcurrency = 1
	DefaultTimeout     = 60 * time.Second
	DefaultLogLevel    = "info"

	MaxConcurrency = 32
	MaxRetry       = 5

	// FileName 是工作目录下自动发现的配置文件名（不含扩展名，支持 yaml/json/toml）。
	FileName = "jude"
	// EnvPrefix 是环境变量前缀：JUDE_ROOT、JUDE_PROXY_URL ...
	EnvPrefix = "JUDE"
)

// CLIArgs 是 CLI 能覆盖的配置项，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --concurrency=1 必须能覆盖配置文件里的 8。
type CLIArgs struct {
	ConfigFile string

	Root    string
	RootSet bool

	Catalog    string
	CatalogSet bool

	Concurrency    int
	ConcurrencySet bool

	LogLevel    string
	LogLevelSet bool
}

// FileConfig 对应 jude.yaml / jude.json / jude.toml（以及 JUDE_* 环境变量）的解析结构。
type FileConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Provider      string        `mapstructure:"provider"`
	Root          string        `mapstructure:"root"`
	Catalog       string        `mapstructure:"catalog"`
	Concurrency   int           `mapstructure:"concurrency"`
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	Proxy         ProxyConfig   `mapstructure:"proxy"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	RetryMax      int           `mapstructure:"retry_max"`
	RespectRobots bool          `mapstructure:"respect_robots"`
	LogLevel      string        `mapstructure:"log_level"`
}

type ProxyConfig struct {
	URL string `mapstructure:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// ConfigFile 是实际读取的配置文件；没有配置文件时为空。
	ConfigFile string

	BaseURL  string
	Provider string
	Root     string // 绝对路径
	Catalog  string // 绝对路径

	Concurrency int
	Timeout     time.Duration
	UserAgent   string
	ProxyURL    string
	RateLimit   float64
	RetryMax    int

	RespectRobots bool
	LogLevel      string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			if e.Path == "" {
				return fmt.Sprintf("%s：%v", e.Code, e.Err)
			}
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置，然后与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) cli.ConfigFile 非空：必须存在（相对路径以 cwd 为基准）
// 2) 否则在 cwd 下查找 jude.{yaml,yml,json,toml}，没有也不报错
//
// 覆盖优先级（逐字段）：CLI 显式指定 > JUDE_* 环境变量 > 配置文件 > 默认值。
// 路径字段统一以 cwd 为基准转为绝对路径。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	v := newViper()

	cfgPath := ""
	if strings.TrimSpace(cli.ConfigFile) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigFile)
		if _, err := os.Stat(cfgPath); err != nil {
			if os.IsNotExist(err) {
				return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
			}
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(cwdAbs)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: v.ConfigFileUsed(), Err: err}
			}
		} else {
			cfgPath = v.ConfigFileUsed()
		}
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return merge(cwdAbs, cli, fc, cfgPath)
}

func newViper() *viper.Viper {
	v := viper.New()

	// 所有 key 都必须有默认值：AutomaticEnv 只对已知 key 生效（Unmarshal 时）。
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("catalog", DefaultCatalog)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("user_agent", "")
	v.SetDefault("proxy.url", "")
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("retry_max", 0)
	v.SetDefault("respect_robots", false)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func merge(cwd string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(format string, args ...any) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf(format, args...)}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(fc.BaseURL), "/")
	if u, err := url.Parse(baseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid("base_url 必须是带 host 的 http/https 地址：%q", fc.BaseURL)
	}

	provider := strings.ToLower(strings.TrimSpace(fc.Provider))
	if provider == "" {
		return invalid("provider 不能为空")
	}

	root := fc.Root
	if cli.RootSet {
		root = cli.Root
	}
	if strings.TrimSpace(root) == "" {
		return invalid("root 不能为空")
	}

	catalog := fc.Catalog
	if cli.CatalogSet {
		catalog = cli.Catalog
	}
	if strings.TrimSpace(catalog) == "" {
		return invalid("catalog 不能为空")
	}

	concurrency := fc.Concurrency
	if cli.ConcurrencySet {
		concurrency = cli.Concurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	timeout := fc.Timeout
	if timeout < 0 {
		return invalid("timeout 不能为负：%s", timeout)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	proxyURL := strings.TrimSpace(fc.Proxy.URL)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return invalid("proxy.url 无效：%w", err)
		}
	}

	if fc.RateLimit < 0 {
		return invalid("rate_limit 不能为负：%v", fc.RateLimit)
	}
	if fc.RetryMax < 0 || fc.RetryMax > MaxRetry {
		return invalid("retry_max 超出范围 [0, %d]：%d", MaxRetry, fc.RetryMax)
	}

	level := fc.LogLevel
	if cli.LogLevelSet {
		level = cli.LogLevel
	}
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level 只能是 debug/info/warn/error，实际是 %q", level)
	}

	return EffectiveConfig{
		ConfigFile:    cfgPath,
		BaseURL:       baseURL,
		Provider:      provider,
		Root:          absCleanFrom(cwd, root),
		Catalog:       absCleanFrom(cwd, catalog),
		Concurrency:   concurrency,
		Timeout:       timeout,
		UserAgent:     strings.TrimSpace(fc.UserAgent),
		ProxyURL:      proxyURL,
		RateLimit:     fc.RateLimit,
		RetryMax:      fc.RetryMax,
		RespectRobots: fc.RespectRobots,
		LogLevel:      level,
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
