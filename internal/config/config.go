package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken    string
	AdminUserID int64 // the one distinguished admin identity, fixed for the process lifetime

	MongoURI    string
	DBName      string
	PostgresURI string
	RedisURI    string

	UsersCollection   string
	TokensCollection  string
	BlockedCollection string

	FreeTrialLimit int64
	CostPerSearch  int64
	MinRecharge    int64
	SearchCooldown time.Duration

	MaintenanceMode bool

	MandatoryChannelID int64
	GroupJoinLink      string
	SupportContact     string

	NameFinderURL    string
	AadhaarFinderURL string
	LookupTimeout    time.Duration

	Port        string
	BotPolling  bool
	OpsPassHash string // argon2id hash guarding the ops log stream; empty disables the endpoint
}

func Load() *Config {
	return &Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		AdminUserID: getEnvInt64("ADMIN_USER_ID", 0),

		MongoURI:    getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/osint_user_db")),
		DBName:      getEnv("DB_NAME", "osint_user_db"),
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/osint?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),

		UsersCollection:   getEnv("COLLECTION_NAME", "users"),
		TokensCollection:  getEnv("TOKENS_COLLECTION", "activation_tokens"),
		BlockedCollection: getEnv("BLOCKED_COLLECTION", "blocked_numbers"),

		FreeTrialLimit: getEnvInt64("FREE_TRIAL_LIMIT", 1),
		CostPerSearch:  getEnvInt64("COST_PER_SEARCH", 2),
		MinRecharge:    getEnvInt64("MIN_RECHARGE", 25),
		SearchCooldown: time.Duration(getEnvInt64("SEARCH_COOLDOWN_MS", 2000)) * time.Millisecond,

		MaintenanceMode: getEnv("MAINTENANCE_MODE", "0") == "1",

		MandatoryChannelID: getEnvInt64("MANDATORY_CHANNEL_ID", -1002516081531),
		GroupJoinLink:      getEnv("GROUP_JOIN_LINK", "https://t.me/+3TSyKHmwOvRmNDJl"),
		SupportContact:     getEnv("SUPPORT_CONTACT", "@zecboy"),

		NameFinderURL:    getEnv("APISUITE_NAMEFINDER", "https://m.apisuite.in/?api=namefinder&number="),
		AadhaarFinderURL: getEnv("APISUITE_AADHAAR", "https://m.apisuite.in/?api=number-to-aadhaar&number="),
		LookupTimeout:    time.Duration(getEnvInt64("LOOKUP_TIMEOUT_MS", 15000)) * time.Millisecond,

		Port:        getEnv("PORT", "8080"),
		BotPolling:  getEnv("BOT_POLLING", "0") == "1",
		OpsPassHash: getEnv("OPS_PASSWORD_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}
