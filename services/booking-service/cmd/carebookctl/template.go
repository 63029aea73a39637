package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func templateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Edit provider availability templates",
	}

	var providerID, weekday, start, end string
	var off bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Set the working hours of one weekday",
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := parseWeekday(weekday)
			if err != nil {
				return err
			}
			day := availability.Day{Weekday: int(wd), IsWorking: !off, Start: start, End: end}

			pool, err := openPool(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := availability.NewService(storage.NewStore(pool, outbox.NewRepository(pool)), nil)
			actor := appointment.Actor{ID: providerID, Role: appointment.RoleProvider}
			if err := svc.SetDay(cmd.Context(), actor, day); err != nil {
				if msgs := apperr.Messages(err); len(msgs) > 0 {
					return errors.New(strings.Join(msgs, "; "))
				}
				return err
			}
			if off {
				fmt.Fprintf(cmd.OutOrStdout(), "%s marked as a day off.\n", wd)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s-%s.\n", wd, start, end)
			}
			return nil
		},
	}
	set.Flags().StringVar(&providerID, "provider", "", "provider id")
	set.Flags().StringVar(&weekday, "weekday", "", "weekday name or number (0 = Sunday)")
	set.Flags().StringVar(&start, "start", "09:00", "start of the working window (HH:MM)")
	set.Flags().StringVar(&end, "end", "17:00", "end of the working window (HH:MM)")
	set.Flags().BoolVar(&off, "off", false, "mark the weekday as not working")
	_ = set.MarkFlagRequired("provider")
	_ = set.MarkFlagRequired("weekday")

	cmd.AddCommand(set)
	return cmd
}

func parseWeekday(raw string) (time.Weekday, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday %d out of range 0-6", n)
		}
		return time.Weekday(n), nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := wd.String()
		if strings.EqualFold(raw, name) || strings.EqualFold(raw, name[:3]) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}
