package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "BANGERBOARD_CONFIG"

	logLevelEnv          = "LOG_LEVEL"
	httpAddrEnv          = "HTTP_ADDR"
	publicBaseURLEnv     = "PUBLIC_BASE_URL"
	databaseDriverEnv    = "DATABASE_DRIVER"
	databaseDSNEnv       = "DATABASE_DSN"
	youtubeAPIKeyEnv     = "YOUTUBE_API_KEY"
	twitchClientIDEnv    = "TWITCH_CLIENT_ID"
	twitchClientSecEnv   = "TWITCH_CLIENT_SECRET"
	instagramTokenEnv    = "INSTAGRAM_ACCESS_TOKEN"
	tiktokTokenEnv       = "TIKTOK_ACCESS_TOKEN"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	discordWebhookURLEnv = "DISCORD_WEBHOOK_URL"
	kafkaBrokersEnv      = "KAFKA_BROKERS"
)

// Supported database drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
	DriverSQLite   = "sqlite3"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	HTTP          HTTPConfig         `yaml:"http"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Tokens        TokenConfig        `yaml:"tokens"`
	Criteria      CriteriaConfig     `yaml:"criteria"`
	Platforms     PlatformConfig     `yaml:"platforms"`
	Notifications NotificationConfig `yaml:"notifications"`
	Events        EventsConfig       `yaml:"events"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig describes the API listener and the public URL used in moderation links.
type HTTPConfig struct {
	Addr          string `yaml:"addr"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// DatabaseConfig picks the storage backend; memory needs no DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines how often all shows are scraped.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// TokenConfig controls moderation link lifetime.
type TokenConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// CriteriaConfig tunes automatic publication.
type CriteriaConfig struct {
	Keywords     []string `yaml:"keywords"`
	InspectPages bool     `yaml:"inspectPages"`
}

// PlatformConfig carries per-platform credentials; empty credentials trigger fallbacks.
type PlatformConfig struct {
	HTTPTimeout time.Duration   `yaml:"httpTimeout"`
	YouTube     YouTubeConfig   `yaml:"youtube"`
	Twitch      TwitchConfig    `yaml:"twitch"`
	Instagram   InstagramConfig `yaml:"instagram"`
	TikTok      TikTokConfig    `yaml:"tiktok"`
}

// YouTubeConfig holds the Data API key.
type YouTubeConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
	FeedURL string `yaml:"feedUrl"`
}

// TwitchConfig holds Helix app credentials.
type TwitchConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	BaseURL      string `yaml:"baseUrl"`
	AuthURL      string `yaml:"authUrl"`
}

// InstagramConfig holds a Graph API access token.
type InstagramConfig struct {
	AccessToken string `yaml:"accessToken"`
	BaseURL     string `yaml:"baseUrl"`
}

// TikTokConfig holds a Display API access token.
type TikTokConfig struct {
	AccessToken string `yaml:"accessToken"`
	BaseURL     string `yaml:"baseUrl"`
}

// NotificationConfig encapsulates outbound moderation channels.
type NotificationConfig struct {
	ReviewerEmail string         `yaml:"reviewerEmail"`
	Telegram      TelegramConfig `yaml:"telegram"`
	Discord       DiscordConfig  `yaml:"discord"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// DiscordConfig points at an incoming webhook.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// EventsConfig configures the "data changed" publisher; no brokers means log only.
type EventsConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig lists brokers and the topic change events go to.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Load reads .env, the YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if parsed, err := Parse(raw, cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = parsed
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Criteria.Keywords) == 0 {
		cfg.Criteria.Keywords = DefaultKeywords()
	}

	return cfg
}

// Parse decodes YAML on top of base so omitted keys keep their defaults.
func Parse(raw []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := defaultConfig()
	cfg.bindTimezone()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.HTTP.Addr, httpAddrEnv)
	setString(&c.HTTP.PublicBaseURL, publicBaseURLEnv)
	setString(&c.Database.Driver, databaseDriverEnv)
	setString(&c.Database.DSN, databaseDSNEnv)
	setString(&c.Platforms.YouTube.APIKey, youtubeAPIKeyEnv)
	setString(&c.Platforms.Twitch.ClientID, twitchClientIDEnv)
	setString(&c.Platforms.Twitch.ClientSecret, twitchClientSecEnv)
	setString(&c.Platforms.Instagram.AccessToken, instagramTokenEnv)
	setString(&c.Platforms.TikTok.AccessToken, tiktokTokenEnv)
	setString(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)
	setString(&c.Notifications.Discord.WebhookURL, discordWebhookURLEnv)

	if v := os.Getenv(kafkaBrokersEnv); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Events.Kafka.Brokers = brokers
	}
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// DefaultKeywords is the term set that qualifies a submission for auto-publication.
func DefaultKeywords() []string {
	return []string{
		"critic",
		"critique",
		"review",
		"reviews",
		"feedback",
		"submit",
		"submission",
		"music review",
		"song review",
		"album review",
		"artist review",
		"track review",
	}
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		HTTP:     HTTPConfig{Addr: ":8080", PublicBaseURL: "http://localhost:8080"},
		Database: DatabaseConfig{Driver: DriverMemory},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Interval: 24 * time.Hour,
			Timezone: defaultTimezone,
		},
		Tokens:   TokenConfig{TTL: 7 * 24 * time.Hour},
		Criteria: CriteriaConfig{Keywords: DefaultKeywords()},
		Platforms: PlatformConfig{
			HTTPTimeout: 15 * time.Second,
			YouTube: YouTubeConfig{
				BaseURL: "https://www.googleapis.com/youtube/v3",
				FeedURL: "https://www.youtube.com/feeds/videos.xml",
			},
			Twitch: TwitchConfig{
				BaseURL: "https://api.twitch.tv/helix",
				AuthURL: "https://id.twitch.tv/oauth2/token",
			},
			Instagram: InstagramConfig{BaseURL: "https://graph.instagram.com"},
			TikTok:    TikTokConfig{BaseURL: "https://open.tiktokapis.com/v2"},
		},
		Notifications: NotificationConfig{ReviewerEmail: "moderation@bangerboard.local"},
		Events: EventsConfig{
			Kafka: KafkaConfig{Topic: "bangerboard.changes"},
		},
	}
}
