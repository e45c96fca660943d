package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bilitool/constant"
	"bilitool/request"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var ErrMissingCookie = errors.New("DEDEUSERID, SESSDATA and BILI_JCT are required")

type Config struct {
	// 账号 Cookie，可单独配置，也可通过 BILI_COOKIE 整串配置
	DedeUserID string `env:"DEDEUSERID"`
	SessData   string `env:"SESSDATA"`
	BiliJct    string `env:"BILI_JCT"`
	Cookie     string `env:"BILI_COOKIE"`

	BaseURL        string        `env:"BILI_BASE_URL" envDefault:"https://api.bilibili.com"`
	UserAgent      string        `env:"BILI_USER_AGENT"`
	Proxy          string        `env:"BILI_PROXY"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	HTTPRetryCount int           `env:"HTTP_RETRY_COUNT" envDefault:"2"`
	HTTPRetryWait  time.Duration `env:"HTTP_RETRY_WAIT" envDefault:"2s"`

	DailyExp            int64         `env:"DAILY_EXP" envDefault:"65"`
	TaskStatusRetries   int           `env:"TASK_STATUS_RETRIES" envDefault:"1"`
	TaskStatusRetryWait time.Duration `env:"TASK_STATUS_RETRY_WAIT" envDefault:"0s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"debug"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console, json

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
	ReportTimezone   string `env:"REPORT_TIMEZONE" envDefault:"Asia/Shanghai"`
}

// LoadDotEnv loads .env style files into the process environment. A missing
// file is not fatal; callers usually log the error as a warning.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Parse builds a Config from the process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Cookie != "" {
		parsed := ParseCookieString(c.Cookie)
		if c.DedeUserID == "" {
			c.DedeUserID = parsed.DedeUserID
		}
		if c.SessData == "" {
			c.SessData = parsed.SessData
		}
		if c.BiliJct == "" {
			c.BiliJct = parsed.BiliJct
		}
	}

	if c.Proxy != "" {
		proxy, err := ParseProxyLine(c.Proxy)
		if err != nil {
			return fmt.Errorf("BILI_PROXY: %w", err)
		}
		c.Proxy = proxy.URL
	}

	if c.BaseURL == "" {
		c.BaseURL = constant.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.DailyExp <= 0 {
		c.DailyExp = constant.EveryDayExp
	}
	if c.TaskStatusRetries < 0 {
		c.TaskStatusRetries = 0
	}

	return nil
}

func (c *Config) Credentials() request.Credentials {
	return request.Credentials{
		DedeUserID: c.DedeUserID,
		SessData:   c.SessData,
		BiliJct:    c.BiliJct,
	}
}

func (c *Config) Validate() error {
	if !c.Credentials().Complete() {
		return ErrMissingCookie
	}
	return nil
}

func (c *Config) NotifyEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// ParseCookieString picks the session cookies out of a browser cookie header,
// e.g. "DedeUserID=1; SESSDATA=abc; bili_jct=def; buvid3=...".
func ParseCookieString(raw string) request.Credentials {
	var creds request.Credentials
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}

		value := strings.TrimSpace(kv[1])
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "dedeuserid":
			creds.DedeUserID = value
		case "sessdata":
			creds.SessData = value
		case "bili_jct":
			creds.BiliJct = value
		}
	}

	return creds
}

type ProxyConfig struct {
	URL      string
	Username string
	Password string
	Protocol string
}

func ParseProxyLine(line string) (*ProxyConfig, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty proxy line")
	}

	proxy := &ProxyConfig{}

	if strings.Contains(line, "://") {
		parts := strings.SplitN(line, "://", 2)
		proxy.Protocol = parts[0]
		line = parts[1]
	} else {
		proxy.Protocol = "http"
	}

	proxy.Protocol = strings.ToLower(proxy.Protocol)
	if proxy.Protocol != "http" && proxy.Protocol != "https" && proxy.Protocol != "socks5" {
		return nil, fmt.Errorf("unsupported proxy protocol: %s", proxy.Protocol)
	}

	if strings.Contains(line, "@") {
		authParts := strings.SplitN(line, "@", 2)
		credentials := strings.SplitN(authParts[0], ":", 2)
		if len(credentials) != 2 {
			return nil, fmt.Errorf("invalid proxy credentials format")
		}
		proxy.Username = credentials[0]
		proxy.Password = credentials[1]
		line = authParts[1]
	}

	if line == "" {
		return nil, fmt.Errorf("missing proxy host")
	}

	if proxy.Username != "" && proxy.Password != "" {
		proxy.URL = fmt.Sprintf("%s://%s:%s@%s", proxy.Protocol, proxy.Username, proxy.Password, line)
	} else {
		proxy.URL = fmt.Sprintf("%s://%s", proxy.Protocol, line)
	}

	return proxy, nil
}
