// ABOUTME: Session commands for the iris CLI
// ABOUTME: Login, logout, register, password reset, and session inspection

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/markalston/iris/internal/auth"
	"github.com/markalston/iris/internal/notice"
	"github.com/markalston/iris/internal/session"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerConfirm  string

	resetEmail string
)

// promptPassword asks for a password on the terminal. Tests replace it.
var promptPassword = func(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Run()
	return value, err
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in with e-mail and password. The session is stored in the config
directory and used by every other command until 'iris logout'.

If --password is omitted it is asked for interactively.

Exit codes:
  0 - Logged in
  1 - Missing fields or wrong credentials
  2 - Backend or storage error`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runLogin(ctx, os.Stdout))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runLogout(ctx, os.Stdout))
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show whether a session is stored",
	Long: `Report the stored session, if any.

Exit codes:
  0 - A session is stored
  1 - No session`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runSession(ctx, os.Stdout))
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a patient account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runRegister(ctx, os.Stdout))
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Send a password reset link",
	Long:  `Send a password reset link to --email, or to the signed-in patient when omitted.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runResetPassword(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, sessionCmd, registerCmd, resetPasswordCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account e-mail")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "E-mail")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm", "", "Password confirmation")

	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "Account e-mail (default: signed-in patient)")
}

// sessionView is the JSON shape of a session report
type sessionView struct {
	HasSession bool          `json:"hasSession"`
	User       *session.User `json:"user,omitempty"`
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	password := loginPassword
	if password == "" && loginEmail != "" && !IsJSONOutput() {
		if password, err = promptPassword("Senha"); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitUser
		}
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	rec, err := e.auth.Login(callCtx, loginEmail, password)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, sessionView{HasSession: true, User: &rec.User})
	} else {
		fmt.Fprintln(w, notice.LoginOK)
		fmt.Fprintln(w, formatUser(rec.User))
	}
	return exitOK
}

// runLogout clears the stored session and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	e.restore(ctx)
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	if err := e.auth.Logout(callCtx); err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, sessionView{HasSession: false})
	} else {
		fmt.Fprintln(w, notice.LogoutOK)
	}
	return exitOK
}

// runSession reports the stored session and returns exit code
func runSession(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	res := e.restore(ctx)
	view := sessionView{HasSession: res.HasSession}
	if res.HasSession {
		view.User = &res.Record.User
	}

	if IsJSONOutput() {
		writeJSON(w, view)
	} else {
		fmt.Fprintln(w, formatSessionHuman(view))
	}
	if !res.HasSession {
		return exitUser
	}
	return exitOK
}

// runRegister creates an account and returns exit code
func runRegister(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	u, err := e.auth.Register(callCtx, auth.RegisterInput{
		FullName:        registerName,
		Email:           registerEmail,
		Password:        registerPassword,
		ConfirmPassword: registerConfirm,
	})
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, u)
	} else {
		fmt.Fprintln(w, notice.RegisterOK)
		fmt.Fprintln(w, "Use 'iris login' para entrar.")
	}
	return exitOK
}

// runResetPassword requests a reset link and returns exit code
func runResetPassword(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	email := resetEmail
	if email == "" {
		if res := e.restore(ctx); res.HasSession {
			email = res.Record.User.Email
		}
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	if err := e.auth.RequestPasswordReset(callCtx, email); err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]string{"email": email, "status": "sent"})
	} else {
		fmt.Fprintln(w, notice.ResetSent)
	}
	return exitOK
}

// formatSessionHuman formats a session report for human readability
func formatSessionHuman(v sessionView) string {
	if !v.HasSession || v.User == nil {
		return "Sessão:  nenhuma"
	}
	return "Sessão:  ativa\n" + formatUser(*v.User)
}

func formatUser(u session.User) string {
	return fmt.Sprintf("Usuário: %s <%s>", u.DisplayName(), u.Email)
}
