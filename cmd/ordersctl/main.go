package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	catalogapp "github.com/orders/backend/internal/application/catalog"
	"github.com/orders/backend/internal/application/notification"
	tradeapp "github.com/orders/backend/internal/application/trade"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/infrastructure/cache"
	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/orders/backend/internal/infrastructure/event"
	"github.com/orders/backend/internal/infrastructure/feed"
	"github.com/orders/backend/internal/infrastructure/logger"
	"github.com/orders/backend/internal/infrastructure/mail"
	"github.com/orders/backend/internal/infrastructure/persistence"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app holds what the subcommands share
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *persistence.Database
	bus *event.InMemoryEventBus
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	cmd := &cli.Command{
		Name:  "ordersctl",
		Usage: "Administrative tasks for the orders backend",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import a feed file as the catalog of a shop account",
				ArgsUsage: "--owner <email> --file <feed.yaml>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Usage: "e-mail of the shop account", Required: true},
					&cli.StringFlag{Name: "file", Usage: "path of the YAML feed", Required: true},
				},
				Before: a.open,
				After:  a.close,
				Action: a.importFeed,
			},
			{
				Name:  "order",
				Usage: "Order administration",
				Commands: []*cli.Command{
					{
						Name:      "set-state",
						Usage:     "Move an order to another state",
						ArgsUsage: "<order-id> <state>",
						Before:    a.open,
						After:     a.close,
						Action:    a.setOrderState,
					},
				},
			},
			{
				Name:  "seed-feed",
				Usage: "Write a random valid feed document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "shop", Usage: "shop name, random when empty"},
					&cli.IntFlag{Name: "categories", Value: 3, Usage: "number of categories"},
					&cli.IntFlag{Name: "goods", Value: 20, Usage: "number of goods"},
					&cli.IntFlag{Name: "seed", Usage: "random seed, 0 picks one"},
					&cli.StringFlag{Name: "out", Usage: "output file, stdout when empty"},
				},
				Action: seedFeed,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) open(ctx context.Context, _ *cli.Command) (context.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return ctx, fmt.Errorf("initialize logger: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel("warn"), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return ctx, fmt.Errorf("connect to database: %w", err)
	}
	if db.Driver == persistence.DriverSQLite {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			return ctx, fmt.Errorf("create sqlite schema: %w", err)
		}
	}

	// the bus is never started, so handlers run inline before the command returns
	a.bus = event.NewInMemoryEventBus(log, event.Config{})
	a.bus.Subscribe(notification.NewOrderMailer(
		persistence.NewGormOrderRepository(db.DB),
		persistence.NewGormUserRepository(db.DB),
		mail.New(cfg.Mail, log),
		log,
	))

	a.cfg, a.log, a.db = cfg, log, db
	return logger.WithContext(ctx, log), nil
}

func (a *app) close(_ context.Context, _ *cli.Command) error {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("Error closing database", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

func (a *app) importFeed(ctx context.Context, c *cli.Command) error {
	users := persistence.NewGormUserRepository(a.db.DB)
	owner, err := users.FindByEmail(ctx, c.String("owner"))
	if err != nil {
		return fmt.Errorf("find owner %q: %w", c.String("owner"), err)
	}
	if owner.Type != identity.UserTypeShop {
		return fmt.Errorf("user %s is not a shop account", owner.Email)
	}

	body, err := os.ReadFile(c.String("file"))
	if err != nil {
		return err
	}

	service := catalogapp.NewImportService(
		feed.NewHTTPFetcher(feed.FetcherConfig{
			Timeout:  a.cfg.Import.FetchTimeout,
			MaxBytes: a.cfg.Import.MaxDocumentBytes,
		}),
		persistence.NewGormCatalogWriter(a.db.DB),
		persistence.NewGormShopRepository(a.db.DB),
		cache.NewInMemoryShopLock(),
		a.bus,
	)
	summary, err := service.ImportDocument(ctx, owner.ID, body)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func (a *app) setOrderState(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: ordersctl order set-state <order-id> <state>")
	}
	id, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", c.Args().Get(0))
	}
	target := trade.OrderState(c.Args().Get(1))
	if !target.IsValid() {
		return fmt.Errorf("unknown order state %q", target)
	}

	service := tradeapp.NewOrderService(persistence.NewGormOrderRepository(a.db.DB), a.bus, nil)
	order, err := service.Transition(ctx, id, target)
	if err != nil {
		return err
	}
	return printJSON(order)
}

func seedFeed(_ context.Context, c *cli.Command) error {
	body, err := GenerateFeed(SeedOptions{
		Shop:       c.String("shop"),
		Categories: int(c.Int("categories")),
		Goods:      int(c.Int("goods")),
		Seed:       uint64(c.Int("seed")),
	})
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		return os.WriteFile(out, body, 0o644)
	}
	_, err = os.Stdout.Write(body)
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
