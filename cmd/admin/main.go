package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"strangerlink/backend/internal/storage"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultLimit = 20

var dsn string

var rootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "Read room diagnostics",
	SilenceUsage: true,
}

var roomsCmd = &cobra.Command{
	Use:   "rooms [limit]",
	Short: "List the most recently started rooms",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := defaultLimit
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid limit %q", args[0])
			}
			limit = n
		}

		svc, err := openStorage()
		if err != nil {
			return err
		}
		defer svc.Close()

		return printRooms(cmd.Context(), svc, limit)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate all stored rooms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openStorage()
		if err != nil {
			return err
		}
		defer svc.Close()

		return printSummary(cmd.Context(), svc)
	},
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_DSN"), "PostgreSQL DSN (default $DATABASE_DSN)")
	rootCmd.AddCommand(roomsCmd, summaryCmd)
}

func openStorage() (*storage.Service, error) {
	if dsn == "" {
		return nil, errors.New("no database: set DATABASE_DSN or pass --dsn")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	// No redis needed for admin CLI
	return storage.NewStorageService(db, nil), nil
}

func printRooms(ctx context.Context, r storage.StatsReader, limit int) error {
	stats, err := r.RecentRoomStats(ctx, limit)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Room", "Started", "Duration", "Relayed", "Reason"})
	for _, s := range stats {
		t.AppendRow(table.Row{
			s.RoomID,
			s.StartedAt.Local().Format(time.DateTime),
			(time.Duration(s.DurationSeconds) * time.Second).String(),
			s.Relayed,
			s.EndReason,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(stats)})
	t.Render()
	return nil
}

func printSummary(ctx context.Context, r storage.StatsReader) error {
	sum, err := r.Summary(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendRow(table.Row{"Rooms", sum.Rooms})
	t.AppendRow(table.Row{"Avg duration", (time.Duration(sum.AvgDuration) * time.Second).String()})
	t.AppendRow(table.Row{"Avg relayed", fmt.Sprintf("%.1f", sum.AvgRelayed)})

	reasons := make([]string, 0, len(sum.ByReason))
	for reason := range sum.ByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	if len(reasons) > 0 {
		t.AppendSeparator()
	}
	for _, reason := range reasons {
		t.AppendRow(table.Row{"Ended by " + reason, sum.ByReason[reason]})
	}
	t.Render()
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
