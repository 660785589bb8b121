package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fish-tennis/bagserver/cache"
	"github.com/fish-tennis/bagserver/cfg"
	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/db/memdb"
	"github.com/fish-tennis/bagserver/db/mongodb"
	"github.com/fish-tennis/bagserver/game"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/logger"
	"github.com/fish-tennis/bagserver/transport/ws"
	"github.com/fish-tennis/gentity/util"
)

func main() {
	configFile := flag.String("config", "bagserver.yaml", "server config file")
	flag.Parse()

	config, err := cfg.LoadServerConfig(*configFile)
	if err != nil {
		panic(err)
	}
	fileLogger := logger.InitLog("log", config.Log.FileName, logger.ParseLevel(config.Log.Level), config.Log.UseStdOutput)
	defer fileLogger.Close()
	// 初始化id生成器
	util.InitIdGenerator(uint16(config.ServerId))

	registry, err := cfg.LoadItemCfgs(config.ItemCfgFile)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := initStore(ctx, config, registry)
	if err != nil {
		panic(err)
	}
	defer closeStore()

	world := game.NewWorld(registry, store, config)
	go world.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle(config.WsPath, ws.NewServer(world).Handler())
	httpServer := &http.Server{
		Addr:    config.ListenAddr,
		Handler: mux,
	}
	go func() {
		slog.Info("ListenAndServe", "addr", config.ListenAddr, "path", config.WsPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServeErr", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("exitNotify")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	// 等逻辑协程保存完打开的背包
	<-world.Stopped()
	slog.Info("server exit")
}

// 背包数据的存储
func initStore(ctx context.Context, config *cfg.ServerConfig, registry *item.Registry) (db.BagContainerLookup, func(), error) {
	storeConfig := config.Store
	switch storeConfig.Backend {
	case cfg.StoreMongo:
		mongoDb := mongodb.NewMongoDb(storeConfig.MongoUri, storeConfig.MongoDbName, storeConfig.MongoCollection, registry)
		mongoDb.SetTimeout(storeConfig.Timeout)
		if err := mongoDb.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return mongoDb, func() {
			disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), storeConfig.Timeout)
			defer disconnectCancel()
			mongoDb.Disconnect(disconnectCtx)
		}, nil
	case cfg.StoreRedis:
		redisClient := cache.NewRedis(storeConfig.RedisAddrs, storeConfig.RedisPassword, storeConfig.RedisCluster)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		bagCache := cache.NewBagCache(redisClient, storeConfig.RedisKeyPrefix, registry)
		bagCache.SetTimeout(storeConfig.Timeout)
		return bagCache, func() {
			if closer, ok := redisClient.(io.Closer); ok {
				slog.Info("wait redis close")
				_ = closer.Close()
			}
		}, nil
	}
	slog.Info("UseMemoryStore")
	return memdb.NewMemDb(), func() {}, nil
}
