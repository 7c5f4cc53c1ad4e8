package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show the remembered session, if any. A token inside the expiry threshold
is treated as expired and the session is ended.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the status as JSON")
}

type statusReport struct {
	State         session.State `json:"state"`
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
	Tier          string        `json:"tier"`
	Home          string        `json:"home,omitempty"`
	ExpiresIn     int64         `json:"expires_in,omitempty"`
	Storage       string        `json:"storage"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.manager.SweepNow() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Stored session had expired and was cleared")
	}

	s := a.manager.Session()
	_, tier := a.store.Read(cmd.Context())
	report := statusReport{
		State:         s.State,
		Authenticated: s.Authenticated,
		User:          s.User,
		Tier:          tier.String(),
		Storage:       "disabled",
	}
	if a.cfg.Storage.Enabled {
		report.Storage = a.cfg.Storage.Type
		if !a.store.Available() {
			report.Storage += " (unavailable)"
		}
	}
	if s.Authenticated && s.User != nil {
		report.Home = a.guard.Routes().HomeRoute(s.User.Role)
		report.ExpiresIn = token.RemainingSeconds(s.Token, time.Now())
	}

	if statusJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printStatus(cmd.OutOrStdout(), report)
	return nil
}

func printStatus(w io.Writer, r statusReport) {
	fmt.Fprintf(w, "State:    %s\n", r.State)
	fmt.Fprintf(w, "Storage:  %s\n", r.Storage)
	if r.User == nil {
		return
	}
	fmt.Fprintf(w, "User:     %s <%s>\n", r.User.Name, r.User.Email)
	fmt.Fprintf(w, "Role:     %s\n", r.User.Role)
	fmt.Fprintf(w, "Home:     %s\n", r.Home)
	fmt.Fprintf(w, "Tier:     %s\n", r.Tier)
	fmt.Fprintf(w, "Expires:  %s\n", (time.Duration(r.ExpiresIn) * time.Second).String())
}
