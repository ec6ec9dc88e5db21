package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"social_chat_service/internal/chat/app"
	"social_chat_service/internal/chat/repository"
	"social_chat_service/internal/chat/router"
	"social_chat_service/pkg/config"
	"social_chat_service/pkg/database"
	"social_chat_service/pkg/logger"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	ctx := context.Background()

	// PostgreSQL holds conversations, participants and the message log
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", dsn)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		logger.Log.Fatal("chat schema migration failed", zap.Error(err))
	}

	// member directory over the same database through gorm
	gormDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port)
	gormDB, err := database.NewPGConnection(database.Connection{
		ConnectStr:    gormDSN,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to open gorm connection after retries", zap.Error(err))
	}

	memberRepo := repository.NewMemberRepository(gormDB)
	if err := memberRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("member directory migration failed", zap.Error(err))
	}

	// Redis pub/sub is the broadcast backbone across service instances
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	pubsub := repository.NewRedisPubSub(redisClient)
	defer pubsub.Close()

	// optional kafka feed for downstream notification consumers
	var eventWriter *kafka.Writer
	if len(cfg.Kafka.Brokers) > 0 {
		eventWriter, err = database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Warn("kafka event feed disabled", zap.Error(err))
			eventWriter = nil
		} else {
			defer eventWriter.Close()
		}
	}

	convRepo := repository.NewConversationRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)

	convUC := app.NewConversationUseCase(convRepo, participantRepo, memberRepo, msgRepo)
	messageUC := app.NewMessageUseCase(participantRepo, msgRepo, memberRepo, pubsub, eventWriter)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		app.NewChatWebsocketHandler(participantRepo, messageUC, pubsub),
		app.NewChatHTTPHandler(convUC, messageUC),
	)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
