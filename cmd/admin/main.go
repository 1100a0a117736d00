// Package main provides back-office utilities for the DriverQuote API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"driverquote/internal/cache"
	"driverquote/internal/config"
	"driverquote/internal/notifications"
	"driverquote/internal/server"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin issue <subject> [ttl_hours]   - Issue a back-office token")
	fmt.Println("  go run ./cmd/admin revoke <jti> [ttl_hours]      - Revoke a token by id")
	fmt.Println("  go run ./cmd/admin watch                         - Print contact events as they happen")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch os.Args[1] {
	case "issue":
		if len(os.Args) < 3 {
			usage()
		}
		issueToken(cfg, os.Args[2], ttlArg(3))

	case "revoke":
		if len(os.Args) < 3 {
			usage()
		}
		revokeToken(cfg, os.Args[2], ttlArg(3))

	case "watch":
		watchEvents(cfg)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func ttlArg(pos int) time.Duration {
	if len(os.Args) <= pos {
		return 12 * time.Hour
	}
	hours, err := strconv.Atoi(os.Args[pos])
	if err != nil || hours <= 0 {
		log.Fatalf("invalid ttl %q", os.Args[pos])
	}
	return time.Duration(hours) * time.Hour
}

func issueToken(cfg *config.Config, subject string, ttl time.Duration) {
	token, jti, err := server.IssueAdminToken(cfg.JWTSecret, subject, ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Printf("subject: %s\njti:     %s\nexpires: %s\n\n%s\n",
		subject, jti, time.Now().Add(ttl).UTC().Format(time.RFC3339), token)
}

// revokeToken marks jti as revoked for ttl, which should cover the token's remaining lifetime.
func revokeToken(cfg *config.Config, jti string, ttl time.Duration) {
	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		log.Fatal("Redis is required to revoke tokens")
	}
	defer func() { _ = cache.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Set(ctx, server.RevokedTokenKey(jti), "1", ttl).Err(); err != nil {
		log.Fatalf("Failed to revoke token: %v", err)
	}
	fmt.Printf("✅ Revoked %s for %s\n", jti, ttl)
}

func watchEvents(cfg *config.Config) {
	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		log.Fatal("Redis is required to watch events")
	}
	defer func() { _ = cache.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := notifications.NewNotifier(rdb).Subscribe(ctx, func(ev notifications.ContactEvent) {
		fmt.Printf("%s  %-22s %s status=%s type=%s\n",
			ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.Reference, ev.Status, ev.TypeAssurance)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", notifications.ContactEventsChannel)
	<-ctx.Done()
}
