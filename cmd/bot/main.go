package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/SayanChouni/osint/internal/config"
	"github.com/SayanChouni/osint/internal/database"
	"github.com/SayanChouni/osint/internal/handlers"
	"github.com/SayanChouni/osint/internal/routes"
	"github.com/SayanChouni/osint/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN required in env")
	}
	if cfg.AdminUserID == 0 {
		log.Fatal("ADMIN_USER_ID required in env")
	}

	// Connect to PostgreSQL (search audit log)
	log.Printf("Connecting to PostgreSQL...")
	pg, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer pg.Close()

	// Connect to Redis (rate limiting, lookup cache)
	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Connect to MongoDB (ledger, tokens, blocklist)
	log.Printf("Connecting to MongoDB...")
	mongoClient, db, err := database.ConnectMongo(cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.DisconnectMongo(mongoClient)

	// Build services
	ledger := services.NewLedgerService(db.Collection(cfg.UsersCollection), cfg.AdminUserID)
	blocklist := services.NewBlocklistService(db.Collection(cfg.BlockedCollection))
	tokens := services.NewTokenService(db.Collection(cfg.TokensCollection), ledger)
	auditLog := services.NewSearchLogService(pg)
	cache := services.NewCacheService(rdb)
	lookup := services.NewLookupService(cfg.NameFinderURL, cfg.AadhaarFinderURL, cfg.LookupTimeout, cache)
	adminState := services.NewAdminStateMachine(cfg.AdminUserID, ledger, blocklist, auditLog)
	stream := services.NewLogStream()

	if err := tokens.EnsureTokenIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure token indexes: %v", err)
	} else {
		log.Println("✅ MongoDB token indexes ensured")
	}

	// Telegram client
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("Failed to create Telegram client:", err)
	}
	log.Printf("✅ Authorized as @%s", api.Self.UserName)

	bot := handlers.NewBot(api, cfg, ledger, blocklist, tokens, auditLog, lookup, adminState, stream)
	logStream := handlers.NewLogStreamHandler(stream, cfg.OpsPassHash)

	if cfg.MaintenanceMode {
		log.Println("🛠️  Maintenance mode enabled (admin only)")
	}

	// Optional polling for local dev: enable with BOT_POLLING=1
	if cfg.BotPolling {
		go func() {
			u := tgbotapi.NewUpdate(0)
			u.Timeout = 60
			log.Println("Bot started (polling)")
			for update := range api.GetUpdatesChan(u) {
				bot.HandleUpdate(update)
			}
		}()
	}

	// Setup router
	r := chi.NewRouter()
	routes.SetupRoutes(r, bot, logStream, rdb)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /webhook")
	log.Println("  GET  /ws/logs")

	log.Printf("🚀 OSINT bot running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
