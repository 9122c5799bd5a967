package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/config"
	"stakevault/core/state"
	"stakevault/native/staking"
	"stakevault/observability/logging"
	"stakevault/rpc"
	"stakevault/storage"
)

// CustodyAddress is the ledger's single custody account. Funds only move in
// and out of it through the engine's transfer paths.
var CustodyAddress = common.HexToAddress("0x5374616b655661756c7400000000000000000001")

type staticGate struct {
	owner  [20]byte
	paused bool
}

func (g staticGate) IsPaused() bool             { return g.paused }
func (g staticGate) IsOwner(addr [20]byte) bool { return addr == g.owner }

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	memBacked := flag.Bool("mem", false, "run against an in-memory store instead of LevelDB")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("stakevaultd", "", logging.Level(*logLevel)).Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := logging.Setup("stakevaultd", cfg.Environment, logging.Level(*logLevel))

	var db storage.Database
	if *memBacked {
		db = storage.NewMemDB()
	} else {
		ldb, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
		if err != nil {
			log.Error("failed to open leveldb", "dir", cfg.DataDir, "err", err)
			os.Exit(1)
		}
		db = ldb
	}
	defer db.Close()

	manager := state.NewManager(db)
	vault := state.NewVault(manager, CustodyAddress)

	engine, err := staking.NewEngine(cfg.PlanTable())
	if err != nil {
		log.Error("failed to build staking engine", "err", err)
		os.Exit(1)
	}
	engine.SetState(manager)
	engine.SetVault(vault)
	engine.SetGate(staticGate{owner: cfg.Owner(), paused: cfg.Paused})

	token := ""
	if cfg.RPCTokenEnv != "" {
		token = os.Getenv(cfg.RPCTokenEnv)
	}
	if token == "" {
		log.Warn("rpc bearer auth disabled; mutating methods are unauthenticated")
	}
	server := rpc.NewServer(engine, token, log)

	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("rpc listening", "addr", cfg.RPCAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("shutdown error", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("rpc server failed", "err", err)
			os.Exit(1)
		}
	}
}
