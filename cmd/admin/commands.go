package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/database"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/queue"
	"github.com/qs3c/fitness_go_server/internal/repository"
	"github.com/qs3c/fitness_go_server/internal/service"
)

var (
	configPath string
	limit      int64
)

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	// 迁移由命令显式执行
	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false
	return database.NewDB(&dbCfg)
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			return runMigrate(cmd.OutOrStdout(), db)
		},
	}
}

func runMigrate(out io.Writer, db *gorm.DB) error {
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	fmt.Fprintf(out, "migrated %d tables\n", len(database.Models()))
	return nil
}

func newExpireCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-subscriptions",
		Short: "Deactivate subscriptions whose end date has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			return runExpire(cmd.Context(), cmd.OutOrStdout(), db, cfg, time.Now())
		},
	}
}

func runExpire(ctx context.Context, out io.Writer, db *gorm.DB, cfg *config.Config, now time.Time) error {
	subscriptionService := service.NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		nil,
		cfg,
	)
	n, err := subscriptionService.ExpireDue(ctx, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "expired %d subscriptions\n", n)
	return nil
}

func newFailuresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Inspect rejected fulfillments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show queued fulfillment failures without removing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rdb, err := database.NewRedis(&cfg.Redis)
			if err != nil {
				return err
			}
			defer rdb.Close()
			return runFailuresList(cmd.Context(), cmd.OutOrStdout(), rdb, cfg.Queue.FulfillmentFailureQueue, limit)
		},
	}
	list.Flags().Int64VarP(&limit, "limit", "n", 20, "Number of records to show")

	cmd.AddCommand(list)
	return cmd
}

func runFailuresList(ctx context.Context, out io.Writer, rdb *redis.Client, queueName string, n int64) error {
	q := queue.NewQueue(rdb, queueName)

	total, err := q.Length(ctx)
	if err != nil {
		return fmt.Errorf("queue length: %w", err)
	}
	msgs, err := q.Peek(ctx, n)
	if err != nil {
		return fmt.Errorf("peek queue: %w", err)
	}

	fmt.Fprintf(out, "%d queued failures\n", total)
	if len(msgs) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OCCURRED\tEVENT\tPAYMENT\tKIND\tUSER\tREASON")
	for _, m := range msgs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			m.OccurredAt.Format(time.RFC3339), m.EventID, m.PaymentRef, m.Kind, m.UserID, m.Reason)
	}
	return w.Flush()
}
