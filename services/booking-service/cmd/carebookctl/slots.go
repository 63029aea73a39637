package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/carebook/libs/grpcx"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/rpc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func slotsCmd(v *viper.Viper) *cobra.Command {
	var providerID, date string
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free slots of a provider on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if providerID == "" || date == "" {
				return errors.New("--provider and --date are required")
			}
			conn, err := grpcx.Dial(v.GetString("grpc_addr"), grpcx.DialOptions{})
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			slots, err := rpc.NewClient(conn).ListSlots(ctx, providerID, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(slots) == 0 {
				fmt.Fprintln(out, "No free slots.")
				return nil
			}
			for _, s := range slots {
				fmt.Fprintf(out, "%s  %s-%s\n", s.Display, s.Start, s.End)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&providerID, "provider", "", "provider id")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD")
	return cmd
}
