package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	UploadDir string        `env:"UPLOAD_DIR, default=./uploads"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Paystack PaystackConfig
	Telegram TelegramConfig
	Email    EmailConfig
	Push     PushConfig
	Ollama   OllamaConfig
	Notify   NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=writing_marketplace"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type PaystackConfig struct {
	SecretKey string `env:"PAYSTACK_SECRET_KEY"`
	BaseURL   string `env:"PAYSTACK_BASE_URL, default=https://api.paystack.co"`
	// CallbackURL is where Paystack redirects the client after checkout.
	CallbackURL string `env:"PAYSTACK_CALLBACK_URL"`
}

type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	// AdminChatID receives admin-audience notifications in addition to any
	// per-user linked chats.
	AdminChatID string `env:"TELEGRAM_ADMIN_CHAT_ID"`
}

type EmailConfig struct {
	SendgridKey string `env:"SENDGRID_API_KEY"`
	From        string `env:"EMAIL_FROM,      default=no-reply@scribehub.io"`
	FromName    string `env:"EMAIL_FROM_NAME, default=ScribeHub"`
}

type PushConfig struct {
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	// Subscriber is the contact mailto: address sent with each push.
	Subscriber string `env:"PUSH_SUBSCRIBER, default=mailto:ops@scribehub.io"`
}

type OllamaConfig struct {
	BaseURL string        `env:"OLLAMA_BASE_URL, default=http://localhost:11434"`
	Model   string        `env:"OLLAMA_MODEL,    default=llama3.1"`
	Timeout time.Duration `env:"OLLAMA_TIMEOUT,  default=20s"`
}

type NotifyConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
