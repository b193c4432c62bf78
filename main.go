package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"retro-store/config"
	"retro-store/consumers"
	"retro-store/controllers"
	"retro-store/database"
	"retro-store/rabbitmq"
	"retro-store/store"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 初始化数据库
	if err := database.InitDB(cfg); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	// 会话、购物车与订单表状态
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := rdb.Ping(ctx).Err()
	cancel()
	if err != nil {
		log.Fatalf("Redis initialization failed: %v", err)
	}
	controllers.SetStore(store.NewRedisStore(rdb, store.WithTTL(cfg.StateTTL)))

	// 初始化RabbitMQ
	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	// 设置队列和交换机
	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}
	if !rmq.DelayedAvailable() {
		log.Printf("Warning: stock checks will not be scheduled")
	}
	// 启动消息消费者
	if err := consumers.StartOrderConsumer(rmq.Channel, cfg); err != nil {
		log.Fatalf("Failed to start order consumer: %v", err)
	}

	controllers.SetConfig(cfg)
	controllers.SetRabbitMQ(rmq)

	// 创建Gin路由
	r := gin.Default()
	controllers.RegisterRoutes(r)

	// 启动服务器
	port := ":" + cfg.HTTPPort
	log.Printf("Retro store starting on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
