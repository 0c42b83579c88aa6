package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantkit/quantkit/config"
	"github.com/quantkit/quantkit/controller"
	"github.com/quantkit/quantkit/journal"
	"github.com/quantkit/quantkit/monitoring"
	"github.com/quantkit/quantkit/quantity"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a journaled, monitored group of quantity controllers.",
	Long: "`demo` builds a group of quantity controllers sharing a budget, " +
		"journals every operation into a SQLite file, and serves the live " +
		"state over HTTP until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		runtime, _ := cmd.Flags().GetDuration("duration")
		openBrowser, _ := cmd.Flags().GetBool("browser")

		runDemo(cfg, runtime, openBrowser)
	},
}

func init() {
	demoCmd.Flags().Duration("duration", 30*time.Second,
		"how long the demo keeps running after the scripted operations")
	demoCmd.Flags().Bool("browser", false,
		"open the monitoring page in the default browser")

	rootCmd.AddCommand(demoCmd)
}

func runDemo(cfg config.Config, runtime time.Duration, openBrowser bool) {
	logger := slog.Default()

	recorder := newJournalRecorder(cfg)
	hook := journal.NewHook(recorder)

	group := controller.NewGroup(12)

	bounds := quantity.Bounds{Min: 0, Max: 10, Step: 1}
	names := []string{"Cart.Apples", "Cart.Oranges", "Cart.Pears"}
	controllers := make([]*controller.Controller, 0, len(names))

	monitor := monitoring.NewMonitor().WithPortNumber(cfg.MonitorPort)

	for _, name := range names {
		b := controller.MakeBuilder()
		if cfg.Strict {
			b = b.WithStrictMode()
		}

		c := group.Build(
			b.
				WithName(name).
				WithBounds(bounds).
				WithLogger(logger.With("controller", name)).
				WithOnMaxReached(func() {
					logger.Info("quantity reached its maximum")
				}).
				WithOnRejected(func(current, attempted int) {
					logger.Info("mutation rejected",
						"current", current,
						"attempted", attempted)
				}),
			name)

		hook.Attach(c)
		monitor.Register(c)
		controllers = append(controllers, c)
	}

	if openBrowser {
		monitor.StartServerWithBrowser()
	} else {
		monitor.StartServer()
	}

	scriptOperations(logger, controllers)

	logger.Info("demo running", "duration", runtime)
	time.Sleep(runtime)

	recorder.Flush()
	logger.Info("journal written",
		"tables", fmt.Sprint(recorder.ListTables()))
}

// newJournalRecorder selects the journal backend: ClickHouse when a host is
// configured, a local SQLite file otherwise.
func newJournalRecorder(cfg config.Config) journal.Recorder {
	if cfg.ClickHouseHost != "" {
		return journal.NewClickHouseWriter(journal.ClickHouseOptions{
			Host:     cfg.ClickHouseHost,
			Port:     cfg.ClickHousePort,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		})
	}

	writer := journal.NewSQLiteWriter(cfg.JournalPath)
	writer.Init()

	return writer
}

func scriptOperations(
	logger *slog.Logger,
	controllers []*controller.Controller,
) {
	slowTask := func(ctx context.Context, qty int) error {
		select {
		case <-time.After(300 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, c := range controllers {
		c.Expand()
		c.Increment()
		c.Increment()
	}

	first := controllers[0]
	go first.IncrementAsync(context.Background(), slowTask, true)
	time.Sleep(50 * time.Millisecond)
	// Supersedes the in-flight increment; its result is discarded.
	first.SetQuantity(5)

	second := controllers[1]
	go second.SetQuantityAsync(context.Background(), 4,
		func(ctx context.Context) error {
			return slowTask(ctx, 4)
		}, true)

	third := controllers[2]
	go third.DecrementAsync(context.Background(), slowTask, false)
	time.Sleep(50 * time.Millisecond)
	third.CancelOperation()

	logger.Info("scripted operations dispatched")
}
