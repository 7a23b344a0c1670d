package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"artemius/internal/model"
)

var ErrInvalidLimits = errors.New("vip limits must not be below free limits")

type Config struct {
	// Telegram settings
	TelegramBotToken       string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true" validate:"required"`
	TelegramPollTimeoutSec int    `envconfig:"TELEGRAM_POLL_TIMEOUT_SEC" default:"60" validate:"gte=0"`
	TelegramAPIEndpoint    string `envconfig:"TELEGRAM_API_ENDPOINT" default:"https://api.telegram.org/bot%s/%s"`

	// Subscription verifier settings
	RequiredChannels     ChannelList   `envconfig:"REQUIRED_CHANNELS" default:"@kanal1kkal|https://t.me/kanal1kkal|Канал 1|Основной канал;@kanal2kkal|https://t.me/kanal2kkal|Канал 2|Дополнительный канал" validate:"min=1,dive"`
	SubscriptionCacheTTL time.Duration `envconfig:"SUBSCRIPTION_CACHE_TTL" default:"300s" validate:"gt=0"`
	OracleRatePerSec     float64       `envconfig:"ORACLE_RATE_PER_SEC" default:"20" validate:"gt=0"`
	OracleBurst          int           `envconfig:"ORACLE_BURST" default:"5" validate:"gte=1"`
	OracleTimeout        time.Duration `envconfig:"ORACLE_TIMEOUT" default:"10s" validate:"gt=0"`

	// Quota settings
	FreeLimitChat     int    `envconfig:"FREE_LIMIT_CHAT" default:"3" validate:"gte=0"`
	FreeLimitImage    int    `envconfig:"FREE_LIMIT_IMAGE" default:"1" validate:"gte=0"`
	FreeLimitMusic    int    `envconfig:"FREE_LIMIT_MUSIC" default:"1" validate:"gte=0"`
	FreeLimitVideo    int    `envconfig:"FREE_LIMIT_VIDEO" default:"1" validate:"gte=0"`
	FreeLimitDocument int    `envconfig:"FREE_LIMIT_DOCUMENT" default:"2" validate:"gte=0"`
	VIPLimitChat      int    `envconfig:"VIP_LIMIT_CHAT" default:"25" validate:"gte=0"`
	VIPLimitImage     int    `envconfig:"VIP_LIMIT_IMAGE" default:"10" validate:"gte=0"`
	VIPLimitMusic     int    `envconfig:"VIP_LIMIT_MUSIC" default:"5" validate:"gte=0"`
	VIPLimitVideo     int    `envconfig:"VIP_LIMIT_VIDEO" default:"3" validate:"gte=0"`
	VIPLimitDocument  int    `envconfig:"VIP_LIMIT_DOCUMENT" default:"8" validate:"gte=0"`
	DayBoundaryTZ     string `envconfig:"DAY_BOUNDARY_TZ" default:"Local"`

	ConsumeOnDispatchFailure bool `envconfig:"CONSUME_ON_DISPATCH_FAILURE" default:"true"`

	// Generator settings. Without an API key the placeholder generators are used.
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY"`
	GeminiChatModel   string        `envconfig:"GEMINI_CHAT_MODEL" default:"gemini-2.5-flash"`
	GeminiImageModel  string        `envconfig:"GEMINI_IMAGE_MODEL" default:"imagen-4.0-generate-001"`
	GeminiVisionModel string        `envconfig:"GEMINI_VISION_MODEL" default:"gemini-2.5-flash"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"120s" validate:"gt=0"`

	// Ops API settings
	OpsAddr      string `envconfig:"OPS_ADDR" default:":8080"`
	OpsJWTSecret string `envconfig:"OPS_JWT_SECRET"`

	Env      string `envconfig:"ENV" default:"production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and that no VIP cap is below its FREE cap.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	limits := c.Limits()
	for _, f := range model.Features {
		if limits.Cap(model.TierVIP, f) < limits.Cap(model.TierFree, f) {
			return fmt.Errorf("%w: %s", ErrInvalidLimits, f)
		}
	}
	return nil
}

// Limits builds the daily caps table from the configured values.
func (c *Config) Limits() model.LimitsTable {
	return model.LimitsTable{
		model.TierFree: {
			model.FeatureChat:     c.FreeLimitChat,
			model.FeatureImage:    c.FreeLimitImage,
			model.FeatureMusic:    c.FreeLimitMusic,
			model.FeatureVideo:    c.FreeLimitVideo,
			model.FeatureDocument: c.FreeLimitDocument,
		},
		model.TierVIP: {
			model.FeatureChat:     c.VIPLimitChat,
			model.FeatureImage:    c.VIPLimitImage,
			model.FeatureMusic:    c.VIPLimitMusic,
			model.FeatureVideo:    c.VIPLimitVideo,
			model.FeatureDocument: c.VIPLimitDocument,
		},
	}
}

// Location returns the time zone that defines the daily reset boundary.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.DayBoundaryTZ)
}

func (c *Config) Channels() []model.Channel {
	return []model.Channel(c.RequiredChannels)
}

// ChannelList decodes REQUIRED_CHANNELS entries of the form
// id|url|name|description separated by semicolons.
type ChannelList []model.Channel

func (l *ChannelList) Decode(value string) error {
	var channels ChannelList
	for _, raw := range strings.Split(value, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, "|")
		ch := model.Channel{ID: strings.TrimSpace(parts[0])}
		if ch.ID == "" {
			return fmt.Errorf("channel entry %q has no id", raw)
		}
		if len(parts) > 1 {
			ch.URL = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			ch.Name = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 {
			ch.Description = strings.TrimSpace(parts[3])
		}
		if ch.Name == "" {
			ch.Name = ch.ID
		}
		channels = append(channels, ch)
	}
	*l = channels
	return nil
}
