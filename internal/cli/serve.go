package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/handlers"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/interfaces"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the role-guarded portal",
	Long: `Restore any remembered session, then serve the portal until interrupted.

Routes:
  POST /login, POST /logout, GET /session
  GET  /admin/dashboard, /trainer/dashboard, /member/dashboard
  GET  /account, POST /account/change-password, GET /account/history
  GET  /admin/users, /admin/login-records
  POST /admin/users/:id/generate-password, /admin/users/:id/reset-password
  GET  /health, /metrics`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, appOptions{configPath: configPath, envFile: envFile})
	if err != nil {
		return err
	}
	defer a.Close()

	handlers.Version = Version

	var events interfaces.EventLog
	if a.events != nil {
		events = a.events
	}
	services := api.NewServices(a.db, a.manager, a.guard, a.backend, events, a.registry, a.log, a.cfg)
	server := api.NewHTTPServer(services)

	a.log.Info("Starting portal", "address", server.Addr, "storage", a.cfg.Storage.Type, "session", string(a.manager.Session().State))

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("portal server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down portal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown portal: %w", err)
	}
	return nil
}
