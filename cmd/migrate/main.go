package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cipher-chat/internal/auth"
	"cipher-chat/internal/config"
	chatredis "cipher-chat/internal/redis"
	"cipher-chat/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usage = `
Cipher Chat - Database CLI Tool

Usage:
  migrate [flags] [command] [args]

Commands:
  up              Apply all SQL migrations
  status          Show database connection and table status
  seed-dev        Seed with development users and messages
  truncate        Truncate all tables (DANGEROUS)
  token <user>    Print an access token for a user id (development only)

Flags:
  -migrations string   Path to migrations directory (default "migrations")
  -password string     Password given to seeded users (default "Password@123")
  -users int           Number of users to seed (default 5)
  -ttl duration        Lifetime of printed tokens (default 24h)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev
  go run cmd/migrate/main.go token 8c2f...
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	password := flag.String("password", "Password@123", "Password given to seeded users")
	userCount := flag.Int("users", 5, "Number of users to seed")
	ttl := flag.Duration("ttl", 24*time.Hour, "Lifetime of printed tokens")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if command == "token" {
		printToken(cfg, flag.Arg(1), *ttl)
		return
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer pool.Close()

	switch command {
	case "up":
		runMigrationsUp(ctx, pool, *migrationsDir)
	case "status":
		showStatus(ctx, pool)
	case "seed-dev":
		seedCfg := database.DefaultSeedConfig()
		seedCfg.Password = *password
		seedCfg.TestUserCount = *userCount
		seedCfg.Shift = cfg.Chat.Shift
		runSeedDevelopment(ctx, pool, seedCfg)
		invalidateUserCache(ctx, cfg)
	case "truncate":
		runTruncate(ctx, pool)
		invalidateUserCache(ctx, cfg)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(ctx context.Context, pool *pgxpool.Pool, migrationsDir string) {
	log.Println("🚀 Running migrations UP...")

	if err := database.ApplyMigrations(ctx, pool, migrationsDir); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("🔍 Checking database status...")

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	for _, table := range []string{"users", "messages"} {
		exists, err := database.TableExists(ctx, pool, table)
		if err != nil {
			log.Printf("⚠️  Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			count, _ := database.TableCount(ctx, pool, table)
			log.Printf("✅ Table %-20s exists (%d rows)", table, count)
		} else {
			log.Printf("❌ Table %-20s does not exist", table)
		}
	}
}

func runSeedDevelopment(ctx context.Context, pool *pgxpool.Pool, seedCfg *database.SeedConfig) {
	log.Println("🌱 Seeding database (development mode)...")

	result, err := database.SeedDevelopment(ctx, pool, seedCfg)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	for _, u := range result.Users {
		log.Printf("   - %s <%s> (ID: %s)", u.FullName, u.Email, u.ID)
	}
	log.Printf("   - Messages: %d", len(result.Messages))
	log.Println("✅ Development seeding completed!")
}

func runTruncate(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("⚠️  WARNING: This will TRUNCATE all tables!")

	if err := database.Truncate(ctx, pool); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Println("✅ All tables truncated!")
}

func printToken(cfg *config.Config, rawID string, ttl time.Duration) {
	if cfg.IsProduction() {
		log.Fatal("❌ token is disabled in production")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		log.Fatalf("❌ Invalid user id %q: %v", rawID, err)
	}
	token, err := auth.NewTokenVerifier(cfg.Auth.JWTSecret).Issue(userID, ttl)
	if err != nil {
		log.Fatalf("❌ Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

// invalidateUserCache drops the cached user directory so the API serves the
// new rows immediately. Failure only leaves the cache to expire on its own.
func invalidateUserCache(ctx context.Context, cfg *config.Config) {
	client := chatredis.NewClient(chatredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	if err := chatredis.NewCacheStore(client, cfg.Chat.UserCacheTTL).InvalidateUsers(ctx); err != nil {
		log.Printf("⚠️  Could not invalidate user cache: %v", err)
		return
	}
	log.Println("✅ User cache invalidated")
}
