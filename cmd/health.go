// ABOUTME: Health command for the iris CLI
// ABOUTME: Checks backend connectivity and the local session store

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/markalston/iris/internal/config"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long: `Check connectivity to the clinic backend and report where the session is stored.

Exit codes:
  0 - Backend reachable
  2 - Backend unreachable or configuration error`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runHealth(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// healthReport is the result of a health check
type healthReport struct {
	Provider   string `json:"provider"`
	Backend    string `json:"backend"`
	Status     string `json:"status"`
	ConfigDir  string `json:"config_dir"`
	HasSession bool   `json:"has_session"`
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	report := healthReport{
		Provider:   e.cfg.Provider,
		Backend:    backendName(e.cfg),
		Status:     "ok",
		ConfigDir:  e.cfg.ConfigDir,
		HasSession: e.restore(ctx).HasSession,
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	if err := e.provider.Health(callCtx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		writeJSON(w, report)
	} else {
		fmt.Fprintln(w, formatHealthHuman(report))
	}
	return exitOK
}

// formatHealthHuman formats health report for human readability
func formatHealthHuman(r healthReport) string {
	return fmt.Sprintf(`Provider:   %s
Backend:    %s
Status:     %s
Config dir: %s
Session:    %t`, r.Provider, r.Backend, r.Status, r.ConfigDir, r.HasSession)
}

func backendName(cfg *config.Config) string {
	if cfg.Provider == config.ProviderSupabase {
		return cfg.SupabaseURL
	}
	return "in-memory"
}
