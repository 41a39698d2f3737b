package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUploadMaxBytes = 5 * 1024 * 1024
	DefaultMailSubject    = "Contact Form Submission 🌟"
)

type Config struct {
	Port     string `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`
	// SMTP Configuration (submission port, STARTTLS required)
	SMTPHost     string        `yaml:"smtp_host"`
	SMTPPort     string        `yaml:"smtp_port"`
	SMTPUsername string        `yaml:"smtp_username"`
	SMTPPassword string        `yaml:"smtp_password"`
	SMTPTimeout  time.Duration `yaml:"smtp_timeout"`
	// Mail Envelope
	MailSenderName string `yaml:"mail_sender_name"`
	MailReceiver   string `yaml:"mail_receiver"`
	MailSubject    string `yaml:"mail_subject"`
	MailEscapeHTML bool   `yaml:"mail_escape_html"` // Off by default: fields are interpolated verbatim
	// Uploads
	UploadDir      string `yaml:"upload_dir"`
	UploadMaxBytes int64  `yaml:"upload_max_bytes"`
	// CORS
	CORSAllowedOrigin string `yaml:"cors_allowed_origin"`
}

func defaultConfig() *Config {
	return &Config{
		Port:              "8080",
		LogLevel:          "info",
		SMTPHost:          "smtp.gmail.com",
		SMTPPort:          "587",
		SMTPTimeout:       30 * time.Second,
		MailSubject:       DefaultMailSubject,
		UploadDir:         "uploads",
		UploadMaxBytes:    DefaultUploadMaxBytes,
		CORSAllowedOrigin: "https://empirepharmacyplc.com",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE) and finally the environment. Environment variables always win.
func LoadConfig() (*Config, error) {
	// .env is optional; production injects real environment variables
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	// SMTP Configuration
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnv("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", getEnv("USER_EMAIL", cfg.SMTPUsername))
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", getEnv("PASSWORD", cfg.SMTPPassword))
	cfg.SMTPTimeout = getEnvDuration("SMTP_TIMEOUT", cfg.SMTPTimeout)
	// Mail Envelope
	cfg.MailSenderName = getEnv("MAIL_SENDER_NAME", getEnv("SENDER", cfg.MailSenderName))
	cfg.MailReceiver = getEnv("MAIL_RECEIVER", getEnv("RECEIVER", cfg.MailReceiver))
	cfg.MailSubject = getEnv("MAIL_SUBJECT", cfg.MailSubject)
	cfg.MailEscapeHTML = getEnvBool("MAIL_ESCAPE_HTML", cfg.MailEscapeHTML)
	// Uploads
	cfg.UploadDir = getEnv("UPLOAD_DIR", cfg.UploadDir)
	cfg.UploadMaxBytes = getEnvInt64("UPLOAD_MAX_BYTES", cfg.UploadMaxBytes)
	// Browsers never send a trailing slash in Origin
	cfg.CORSAllowedOrigin = strings.TrimRight(getEnv("CORS_ALLOWED_ORIGIN", cfg.CORSAllowedOrigin), "/")

	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", cfg.UploadMaxBytes)
	}
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if err := validateOrigin(cfg.CORSAllowedOrigin); err != nil {
		return nil, err
	}

	if !cfg.MailConfigured() {
		log.Println("WARNING: SMTP_USERNAME, SMTP_PASSWORD or MAIL_RECEIVER missing. Contact form will fail to send.")
	}

	return cfg, nil
}

// MailConfigured reports whether enough is set to attempt an SMTP submission
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != "" && c.MailReceiver != ""
}

// SMTPAddr returns host:port of the submission server
func (c *Config) SMTPAddr() string {
	return net.JoinHostPort(c.SMTPHost, c.SMTPPort)
}

// validateOrigin accepts an empty value (CORS off) or a scheme://host origin
func validateOrigin(origin string) error {
	if origin == "" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CORS_ALLOWED_ORIGIN must look like https://example.com, got %q", origin)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt64 returns an integer environment variable or fallback if not set/invalid
func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
