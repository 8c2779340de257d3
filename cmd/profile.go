// ABOUTME: Profile command for the iris CLI
// ABOUTME: Shows the patient's profile and updates name or phone

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/notice"
	"github.com/markalston/iris/internal/provider"
	"github.com/spf13/cobra"
)

var (
	profileName  string
	profilePhone string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Long: `Show the signed-in patient's profile.

Pass --name or --phone to update them.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runProfile(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profileName, "name", "", "New full name")
	profileCmd.Flags().StringVar(&profilePhone, "phone", "", "New phone number")
}

// runProfile shows or updates the profile and returns exit code
func runProfile(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	u, ok := e.requireUser(ctx, w)
	if !ok {
		return exitUser
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	id, err := clinic.PatientID(callCtx, e.provider, u)
	if err != nil {
		return fail(w, err)
	}
	p, err := e.provider.GetProfile(callCtx, id)
	if err != nil {
		return fail(w, err)
	}

	updated := false
	if name := strings.TrimSpace(profileName); name != "" {
		p.FullName = name
		updated = true
	}
	if phone := strings.TrimSpace(profilePhone); phone != "" {
		p.Phone = phone
		updated = true
	}
	if updated {
		if p, err = e.provider.UpdateProfile(callCtx, *p); err != nil {
			return fail(w, err)
		}
	}
	if p.Email == "" {
		p.Email = u.Email
	}

	if IsJSONOutput() {
		writeJSON(w, p)
		return exitOK
	}
	if updated {
		fmt.Fprintln(w, notice.ProfileSaved)
	}
	fmt.Fprintln(w, formatProfileHuman(p))
	return exitOK
}

// formatProfileHuman formats a profile for human readability
func formatProfileHuman(p *provider.Profile) string {
	phone := p.Phone
	if phone == "" {
		phone = "Não informado"
	}
	return fmt.Sprintf(`Nome:     %s
E-mail:   %s
Telefone: %s`, clinic.ProfileName(p), p.Email, phone)
}
