// ABOUTME: Loads the home screen data: patient name and next appointments
// ABOUTME: Profile and appointments are fetched concurrently

package clinic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/session"
	"golang.org/x/sync/errgroup"
)

// HomeLimit is how many upcoming appointments the home screen lists
const HomeLimit = 3

// Dashboard is what the home screen renders
type Dashboard struct {
	Name     string
	Profile  *provider.Profile
	Upcoming []provider.Appointment

	// Totals over the whole history, for the summary blocks
	UpcomingTotal int
	PastTotal     int
}

// PatientID returns the provider id of u, asking the provider when the
// session predates ids being stored.
func PatientID(ctx context.Context, p provider.Provider, u session.User) (string, error) {
	if u.ID != "" {
		return u.ID, nil
	}
	cur, err := p.GetCurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve patient: %w", err)
	}
	return cur.ID, nil
}

// LoadDashboard fetches the profile and appointment list in parallel.
// Whatever loaded is returned even when the other call failed; the error
// is the first failure.
func LoadDashboard(ctx context.Context, p provider.Provider, u session.User, now time.Time) (*Dashboard, error) {
	dash := &Dashboard{Name: DefaultPatientName}

	id, err := PatientID(ctx, p, u)
	if err != nil {
		return dash, err
	}

	var (
		profile *provider.Profile
		list    []provider.Appointment
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		profile, err = p.GetProfile(ctx, id)
		if err != nil {
			slog.Warn("Profile fetch failed", "patient", id, "error", err)
		}
		return err
	})
	g.Go(func() error {
		var err error
		list, err = p.ListAppointments(ctx, id)
		if err != nil {
			slog.Warn("Appointments fetch failed", "patient", id, "error", err)
		}
		return err
	})
	err = g.Wait()

	if profile != nil {
		dash.Profile = profile
		if profile.FullName != "" {
			dash.Name = profile.FullName
		}
	}
	dash.Upcoming = Upcoming(list, now, HomeLimit)
	dash.UpcomingTotal = len(Filter(list, TabUpcoming, now))
	dash.PastTotal = len(Filter(list, TabPast, now))
	return dash, err
}

// ProfileName returns the name to show on the profile screen
func ProfileName(p *provider.Profile) string {
	if p == nil || p.FullName == "" {
		return DefaultProfileName
	}
	return p.FullName
}
