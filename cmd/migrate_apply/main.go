package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"memory_game/internal/db"
	"memory_game/internal/logger"
	"memory_game/internal/repository"
	"memory_game/internal/symbols"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type migrateConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

func main() {
	apply := flag.Bool("apply", false, "apply migration")
	seed := flag.String("seed", "", "replace the letters table with the given letters.json")
	flag.Parse()

	_ = godotenv.Load()
	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	defer pool.Close()

	migDir := filepath.Join("internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		logger.Fatal("read migrations dir", "error", err)
	}
	for _, f := range files {
		name := f.Name()
		if !*apply {
			fmt.Println(name)
			continue
		}
		b, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		fmt.Printf("applied %s\n", name)
	}

	if *seed == "" {
		return
	}

	letters, err := symbols.FileSource{Path: *seed}.Letters(ctx)
	if err != nil {
		logger.Fatal("read letters", "path", *seed, "error", err)
	}
	if err := repository.NewLettersRepository(pool).Replace(ctx, letters); err != nil {
		logger.Fatal("seed letters", "error", err)
	}
	fmt.Printf("seeded %d letters\n", len(letters))

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
		cache := &symbols.CachedSource{Client: rdb}
		if err := cache.Invalidate(ctx); err != nil {
			logger.Warn("letters cache not invalidated", "error", err)
		}
	}
}
