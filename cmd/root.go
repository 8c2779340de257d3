// ABOUTME: Root command for the iris CLI
// ABOUTME: Handles global flags, configuration, and shared command wiring

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/markalston/iris/internal/auth"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/config"
	"github.com/markalston/iris/internal/logger"
	"github.com/markalston/iris/internal/notice"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/provider/mock"
	"github.com/markalston/iris/internal/provider/supabase"
	"github.com/markalston/iris/internal/session"
	"github.com/markalston/iris/internal/store"
	"github.com/markalston/iris/internal/tui"
	"github.com/markalston/iris/internal/tui/gate"
	"github.com/spf13/cobra"
)

var (
	providerName string
	configDir    string
	liveGate     bool
	jsonOutput   bool
)

// now is replaced in tests
var now = time.Now

// Exit codes shared by all subcommands
const (
	exitOK    = 0
	exitUser  = 1 // not logged in or invalid input
	exitError = 2 // provider, storage, or configuration failure
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "iris",
	Short: "Terminal client for the Íris ophthalmology clinic",
	Long: `iris lets patients of the Íris clinic sign in, review their appointments,
book new ones, and manage their profile.

Run without arguments to open the interactive interface.

Environment Variables:
  IRIS_PROVIDER         mock or supabase (default: mock)
  SUPABASE_URL          Supabase project URL (required for supabase)
  SUPABASE_ANON_KEY     Supabase anon key (required for supabase)
  IRIS_CONFIG_DIR       Session and log directory (default: ~/.config/iris)
  IRIS_LIVE_GATE        Switch screens after login/logout without restart
  LOG_LEVEL             debug, info, warn, error (default: info)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runTUI(ctx, os.Stderr)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "Backend provider: mock or supabase (overrides IRIS_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Session and log directory (overrides IRIS_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&liveGate, "live-gate", false, "Switch screens after login/logout without restarting")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, err
	}
	if providerName != "" {
		cfg.Provider = strings.ToLower(providerName)
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if liveGate {
		cfg.LiveGate = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env holds the collaborators every command needs
type env struct {
	cfg      *config.Config
	resolver *session.Resolver
	sessions *session.Manager
	provider provider.Provider
	auth     *auth.Service
	logErr   error // log file could not be opened; logging is discarded
	closers  []func()
}

// openEnv builds the session store, provider, and auth service from config
func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// An unusable config dir must not stop startup: the store reports the
	// same failure and the resolver falls back to logged out.
	logFile, logErr := logger.Init(cfg.ConfigDir)
	if logErr != nil {
		logFile, _ = logger.Init("")
	}

	st := store.NewFileStore(cfg.ConfigDir)
	sessions := session.NewManager(st)
	p, closeProvider := newProvider(cfg, sessions.AccessToken)

	return &env{
		cfg:      cfg,
		resolver: session.NewResolver(st),
		sessions: sessions,
		provider: p,
		auth:     auth.NewService(p, sessions),
		logErr:   logErr,
		closers:  []func(){closeProvider, func() { logFile.Close() }},
	}, nil
}

// newProvider selects the backend named in cfg
func newProvider(cfg *config.Config, tokens provider.TokenSource) (provider.Provider, func()) {
	if cfg.Provider == config.ProviderSupabase {
		c := supabase.New(supabase.Options{
			BaseURL:       cfg.SupabaseURL,
			AnonKey:       cfg.SupabaseAnonKey,
			Timeout:       cfg.RequestTimeout,
			RetryMax:      cfg.RetryMax,
			RateLimit:     cfg.RateLimit,
			CacheTTL:      cfg.CacheTTL,
			ResetRedirect: cfg.ResetRedirect,
			Tokens:        tokens,
		})
		return c, c.Close
	}
	return mock.New(tokens), func() {}
}

func (e *env) close() {
	for _, fn := range e.closers {
		fn()
	}
}

// restore loads the persisted session into the manager
func (e *env) restore(ctx context.Context) session.Resolution {
	res := e.resolver.Resolve(ctx)
	e.sessions.Restore(res)
	return res
}

// requireUser restores the session and reports whether someone is logged in
func (e *env) requireUser(ctx context.Context, w io.Writer) (session.User, bool) {
	res := e.restore(ctx)
	if !res.HasSession {
		fmt.Fprintln(w, "Error: Você não está conectado. Use 'iris login' primeiro.")
		return session.User{}, false
	}
	return res.Record.User, true
}

// callContext bounds one remote call by the configured timeout
func (e *env) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.RequestTimeout)
}

// runTUI opens the interactive interface
func runTUI(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()
	if e.logErr != nil {
		fmt.Fprintf(w, "Warning: logging disabled: %v\n", e.logErr)
	}

	err = tui.Run(ctx, tui.Deps{
		Resolver: e.resolver,
		Sessions: e.sessions,
		Auth:     e.auth,
		Provider: e.provider,
		Gate:     gate.New(e.cfg.LiveGate),
		Demo:     e.cfg.Provider == config.ProviderMock,
		Timeout:  e.cfg.RequestTimeout,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// fail prints the patient-facing message for err and returns its exit code
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", notice.Text(err))
	return exitCode(err)
}

// exitCode maps workflow errors to process exit codes
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, clinic.ErrMissingFields),
		errors.Is(err, clinic.ErrPastDate),
		errors.Is(err, clinic.ErrInvalidSlot),
		errors.Is(err, clinic.ErrInvalidType),
		errors.Is(err, provider.ErrInvalidCredentials),
		errors.Is(err, provider.ErrNotAuthenticated):
		return exitUser
	}
	return exitError
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

// signalContext is the context every subcommand runs under
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// exit terminates the process with code unless it is zero
func exit(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}
