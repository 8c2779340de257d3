// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("IRIS_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	// Check for terminals known to commonly have Nerd Fonts
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	// Default to Unicode fallback for maximum compatibility
	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Application
	App = Icon{"󰈈", "◉"} // nf-md-eye

	// Appointment types
	Consultation = Icon{"󰛐", "◎"} // nf-md-eye_outline
	Exam         = Icon{"󰈙", "▤"} // nf-md-file_document_outline
	FollowUp     = Icon{"󰃰", "↺"} // nf-md-calendar_check
	Calendar     = Icon{"󰃭", "▦"} // nf-md-calendar

	// Appointment details
	Clock    = Icon{"󰥔", "◷"} // nf-md-clock_outline
	Doctor   = Icon{"󰋠", "✚"} // nf-md-doctor
	Location = Icon{"󰍎", "⌖"} // nf-md-map_marker
	Notes    = Icon{"󰏫", "✎"} // nf-md-pencil

	// Profile
	User  = Icon{"󰀄", "☺"} // nf-md-account
	Mail  = Icon{"󰇮", "✉"} // nf-md-email
	Phone = Icon{"󰏲", "☏"} // nf-md-phone
	Key   = Icon{"󰌆", "⚷"} // nf-md-key

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-fa-check_circle
	Warning  = Icon{"", "⚠"} // nf-fa-warning
	Critical = Icon{"", "✗"} // nf-fa-times_circle
	Info     = Icon{"", "ℹ"} // nf-fa-info_circle

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Plus    = Icon{"󰐕", "+"} // nf-md-plus
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Logout  = Icon{"󰍃", "⇥"} // nf-md-logout
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
)

// ForType returns the icon of an appointment type
func ForType(kind string) Icon {
	switch strings.ToLower(kind) {
	case "consulta":
		return Consultation
	case "exame":
		return Exam
	case "retorno":
		return FollowUp
	default:
		return Calendar
	}
}
