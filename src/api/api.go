package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stake-plus/dao-govern/src/config"
	"github.com/stake-plus/dao-govern/src/data"
	"github.com/stake-plus/dao-govern/src/engine"
	"github.com/stake-plus/dao-govern/src/ledger"
	"github.com/stake-plus/dao-govern/src/webserver"
)

func main() {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "daogov:daogov@tcp(127.0.0.1:3306)/daogov"
	}
	db := data.MustMySQL(mysqlDSN)
	data.Migrate(db)

	cfg := config.Load(db)
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if cfg.Owner == "" {
		log.Fatal("DAO_OWNER is not set")
	}
	rdb := data.MustRedis(cfg.RedisURL)

	state, err := data.LoadState(db)
	if err != nil {
		log.Fatalf("load state: %v", err)
	}

	clock := data.NewHeightClock(db, state.Meta.Height)
	store := data.NewGormStore(db)
	bridge := ledger.FromEnv()
	tokenLedger := ledger.NewHTTPLedger(bridge)
	executor := ledger.NewHTTPExecutor(bridge)

	eng := engine.New(engine.Config{
		Owner:          cfg.Owner,
		Custody:        cfg.Custody,
		PassThreshold:  cfg.PassThreshold,
		TimelockPeriod: cfg.TimelockPeriod,
		BlocksPerDay:   cfg.BlocksPerDay,
	}, clock, tokenLedger, executor, store, data.NewRedisEvents(rdb))

	eng.RestoreMeta(state.Meta)
	eng.Members.Restore(state.Tiers, state.Members, state.History)
	eng.Tokens.Restore(state.Tokens, state.Configs, state.Lockups, state.SnapshotHeaders, state.SnapshotBalances)
	eng.Delegations.Restore(state.Delegations)
	eng.Proposals.Restore(state.Meta.NextProposalID, state.Proposals, state.Records)

	ctx, cancel := context.WithCancel(context.Background())

	if cfg.BlockSeconds > 0 {
		go runBlockTicker(ctx, clock, time.Duration(cfg.BlockSeconds)*time.Second)
	}

	router := webserver.New(cfg, eng, clock, rdb)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("DaoGov engine listening on %s (owner %s, height %d)", cfg.Port, eng.Owner(), eng.Height())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)

	// Persist the final meta row so ownership and counters survive restarts.
	if err := store.Save(ptr(eng.Meta())); err != nil {
		log.Printf("meta persist failed: %v", err)
	}
}

func runBlockTicker(ctx context.Context, clock *data.HeightClock, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clock.Advance(1)
		}
	}
}

func ptr[T any](v T) *T { return &v }
