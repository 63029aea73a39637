package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/md-rashed-zaman/carebook/libs/db"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func openPool(ctx context.Context, v *viper.Viper) (*db.Pool, error) {
	url := v.GetString("database_url")
	if url == "" {
		return nil, errors.New("database url is required (--database-url or DATABASE_URL)")
	}
	return db.Open(ctx, url)
}

func migrateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := storage.NewMigrator(pool).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := storage.NewMigrator(pool).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %-32s %-8s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				state, at := "pending", ""
				if s.Applied {
					state = "applied"
					if s.AppliedAt != nil {
						at = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(out, "%-8d %-32s %-8s %s\n", s.Version, s.Name, state, at)
			}
			return nil
		},
	})
	return cmd
}
