package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/arz/config"
	"github.com/cppla/arz/kvstore"
	"github.com/cppla/arz/routes"
	"github.com/cppla/arz/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	rc := utils.GetRedis()

	kv, err := openKV(cfg, rc)
	if err != nil {
		utils.Sugar.Fatalf("open %s store: %v", cfg.KVBackend, err)
	}

	deps := routes.Deps{
		KV:    kv,
		Guard: utils.NewRegisterGuard(rc, time.Duration(cfg.RegisterAttemptCooldownSec)*time.Second, cfg.RegisterMaxPerIPPerDay),
	}
	// The redis engine needs no response cache in front of it.
	if cfg.KVBackend == "mysql" {
		deps.Cache = utils.NewCache(rc, time.Minute)
	}
	r := routes.SetupRouter(cfg, deps)

	closeAll := func() {
		if err := kv.Close(); err != nil {
			utils.Sugar.Warnf("close store: %v", err)
		}
		if cfg.KVBackend == "mysql" {
			_ = rc.Close()
		}
	}

	utils.Sugar.Infof("Starting server on port %s (graceful, backend=%s)", cfg.AppPort, cfg.KVBackend)
	if err := utils.GraceServer(":"+cfg.AppPort, r, closeAll); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func openKV(cfg config.AppConfig, rc *redis.Client) (kvstore.Store, error) {
	switch cfg.KVBackend {
	case "redis":
		return kvstore.NewRedisStore(rc, "arz:"), nil
	case "mysql":
		config.InitDatabase(&kvstore.Entry{})
		return kvstore.NewGormStore(config.DB()), nil
	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
	}
}
