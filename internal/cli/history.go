package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyEvent  string
	historyLimit  int
	historyOffset int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded session events",
	Long: `List session events recorded in durable storage, newest first.

Events: login, login_failed, logout, expired, rehydrated, rehydrate_discarded, revoked.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if historyLimit < 1 || historyLimit > 500 {
			return errors.New("--limit must be between 1 and 500")
		}
		if historyOffset < 0 {
			return errors.New("--offset must not be negative")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.events == nil {
			return errors.New("session history needs durable storage; enable storage in the config")
		}

		events, err := a.events.ListEvents(cmd.Context(), historyEvent, historyLimit, historyOffset)
		if err != nil {
			return fmt.Errorf("list session events: %w", err)
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No session events")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tEVENT\tUSER\tDETAILS")
		for _, e := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format(time.DateTime), e.Event, e.UserID, e.Details)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyEvent, "event", "", "only show this event")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of events")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "skip this many events")
}
