// Command dialer walks an operator's call queue from the terminal.
//
//	dialer queue [-status new] [-group <id>|none] [-industry X] [-search X] [-limit 50]
//	dialer show
//	dialer clear
//	dialer run [-phone +4930...] [-poll 2s]
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadcall_backend/internal/adapters"
	"leadcall_backend/internal/callqueue"
	"leadcall_backend/internal/calls"
	"leadcall_backend/internal/events"
	"leadcall_backend/internal/leads"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/db"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

const queueTTL = 30 * 24 * time.Hour

const usage = `usage: dialer <command> [flags]

commands:
  queue   select leads and replace the call queue
  show    print the call queue
  clear   empty the call queue
  run     call every queued lead and log the outcome
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// Logs go to stderr so they do not interleave with prompts.
	log := logger.NewWriter(cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error("dialer failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, cfg *config.Config, log *logger.Logger, command string, args []string) error {
	switch command {
	case "queue", "show", "clear", "run":
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	queue, err := callqueue.Load(ctx, store)
	if err != nil {
		log.Warn("stored call queue was unreadable and has been reset", "error", err)
	}

	if command == "show" {
		printQueue(os.Stdout, queue)
		return nil
	}
	if command == "clear" {
		if err := queue.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("call queue cleared")
		return nil
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	val := validator.New()
	leadsModule := leads.NewModule(pool, val, log)

	if command == "queue" {
		return runQueue(ctx, args, queue, leadsModule.Service(), val)
	}

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()
	callsModule := calls.NewModule(pool, adapters.NewCallLeadRecorder(leadsModule.Service()), eventBus, val, log)

	return runDialer(ctx, args, cfg, log, val, queue, callsModule.Service())
}

// openStore persists the queue in Redis when REDIS_URL is set. Without Redis
// the queue only lives for the current process.
func openStore(cfg *config.Config, log *logger.Logger) (callqueue.Store, func(), error) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; call queue is not persisted between runs")
		return callqueue.NewMemoryStore(), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)
	return callqueue.NewRedisStore(client, cfg.GetAdminUsername(), queueTTL), func() { _ = client.Close() }, nil
}
