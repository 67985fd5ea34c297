package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mk-2871/Proof-of-Talent/pkg/config"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
	pgrepo "github.com/mk-2871/Proof-of-Talent/pkg/repository/postgres"
	redisrepo "github.com/mk-2871/Proof-of-Talent/pkg/repository/redis"
	sqliterepo "github.com/mk-2871/Proof-of-Talent/pkg/repository/sqlite"
	"github.com/mk-2871/Proof-of-Talent/pkg/storage/postgres"
	"github.com/mk-2871/Proof-of-Talent/pkg/storage/redis"
	"github.com/mk-2871/Proof-of-Talent/pkg/storage/sqlite"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet/local"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet/rpc"
)

type backend struct {
	kv    kv.Store
	close func()
}

// openStore builds the durable store selected by STORAGE_DRIVER.
func openStore(ctx context.Context, cfg config.Config) (backend, error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return backend{kv: kv.NewMemory(), close: noop}, nil

	case config.DriverFile:
		f, err := kv.NewFile(cfg.StorageFile)
		if err != nil {
			return backend{}, err
		}
		return backend{kv: f, close: noop}, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return backend{}, fmt.Errorf("prepare sqlite dir: %w", err)
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return backend{}, err
		}
		repo, err := sqliterepo.NewKVRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return backend{}, err
		}
		return backend{kv: repo, close: func() { _ = db.Close() }}, nil

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, 0)
		if err != nil {
			return backend{}, err
		}
		repo, err := pgrepo.NewKVRepository(ctx, pool)
		if err != nil {
			pool.Close()
			return backend{}, err
		}
		return backend{kv: repo, close: pool.Close}, nil

	case config.DriverRedis:
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return backend{}, err
		}
		return backend{
			kv:    redisrepo.NewKVRepository(client, cfg.RedisPrefix),
			close: func() { _ = client.Close() },
		}, nil
	}
	return backend{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// openWallet returns the provider selected by WALLET_MODE. A nil provider
// means no wallet capability.
func openWallet(ctx context.Context, cfg config.Config) (wallet.Provider, func(), error) {
	switch cfg.WalletMode {
	case config.WalletNone:
		return nil, func() {}, nil

	case config.WalletRPC:
		c, err := rpc.Dial(ctx, cfg.WalletRPCURL, rpc.WithPollInterval(cfg.WalletPollInterval))
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case config.WalletLocal:
		key, err := local.LoadOrCreateKey(cfg.WalletKeyAccount)
		if err != nil {
			return nil, nil, err
		}
		w := local.New(key, cfg.Network.ChainID, local.WithEndpoint(cfg.Network.ChainID, cfg.WalletRPCURL))
		log.Printf("level=info msg=\"local wallet ready\" address=%s", w.Address().Hex())
		return w, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown wallet mode %q", cfg.WalletMode)
}
