// Command carebookctl is the operator CLI: schema migrations, slot lookups
// against a running booking-service and template edits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/md-rashed-zaman/carebook/libs/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	_ = config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "carebookctl",
		Short:         "Operate a CareBook booking deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("database-url", "", "Postgres connection string (env DATABASE_URL)")
	root.PersistentFlags().String("grpc-addr", "localhost:9093", "booking-service gRPC address (env BOOKING_GRPC_ADDR)")
	_ = v.BindPFlag("database_url", root.PersistentFlags().Lookup("database-url"))
	_ = v.BindPFlag("grpc_addr", root.PersistentFlags().Lookup("grpc-addr"))
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("grpc_addr", "BOOKING_GRPC_ADDR")

	root.AddCommand(migrateCmd(v), slotsCmd(v), templateCmd(v))
	return root
}
