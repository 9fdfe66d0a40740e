package main

import (
	"context"
	"time"

	"github.com/demobank/backend/internal/config"
	"github.com/demobank/backend/internal/database"
	"github.com/demobank/backend/internal/logging"
	"github.com/demobank/backend/internal/seed"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadLedgerConfig()

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")
	if err := viper.ReadInConfig(); err != nil {
		logger.Info("config file not found, using environment and defaults", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbConfig := database.GetConfig()

	db, err := database.InitDB(ctx, dbConfig, logger)
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("running migrations")
	if err := database.RunMigrations(db, dbConfig.Name, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	conn, err := pgx.Connect(ctx, dbConfig.DSN())
	if err != nil {
		logger.Fatal("unable to open pgx connection", zap.Error(err))
	}
	defer conn.Close(ctx)

	logger.Info("seeding database")
	if err := seed.Run(ctx, conn, logger); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seed complete")
}
