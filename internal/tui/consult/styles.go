// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     consulttui
// Description: Styles for the consultation TUI
// License:     MIT
// ============================================================================

package consulttui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#0D9488") // Teal
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorUrgent    = lipgloss.Color("#DC2626") // Red 600
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	// Background colors
	ColorBg          = lipgloss.Color("#0F172A") // Slate 900
	ColorBgPanel     = lipgloss.Color("#1E293B") // Slate 800
	ColorBgPatient   = lipgloss.Color("#134E4A") // Patient message background
	ColorBgAssistant = lipgloss.Color("#1E293B") // Assistant message background

	// Text colors
	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Logo/Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)
)

// Chat message styles
var (
	PatientMessageStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorBgPatient).
				Padding(1, 2).
				MarginBottom(1).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorSecondary)

	AssistantMessageStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorBgAssistant).
				Padding(1, 2).
				MarginBottom(1).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorDimmed)

	SystemMessageStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Italic(true).
				Padding(0, 2).
				MarginBottom(1)

	RoleLabelPatientStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Bold(true)

	RoleLabelAssistantStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true)

	PendingMarkerStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim).
				Italic(true)

	OriginalHintStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim).
				Italic(true)
)

// Analysis styles
var (
	SymptomStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	UrgencyStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	EmergencyStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorUrgent).
			Bold(true).
			Padding(0, 1)

	RecommendationStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)
)

// Panel/Box styles
var (
	ChatPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedChatPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)

// Input styles
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	StatusOnlineStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	StatusOfflineStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusRecordingStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusProcessingStyle = lipgloss.NewStyle().
				Foreground(ColorAccent)
)

// Notice styles
var (
	NoticeInfoStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	NoticeWarningStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	NoticeErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)
)

// Help styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Loading/Spinner styles
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	ThinkingStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Title panel style
var (
	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2).
			MarginBottom(1)
)

// Icons
const (
	IconPatient   = "  "
	IconAssistant = "  "
	IconOnline    = "  "
	IconOffline   = "  "
	IconMic       = " 🎤 "
	IconSpeaker   = " 🔊 "
	IconEmergency = " ⚠ "
)

// Logo
const Logo = "TeleConsult"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}

// RenderPatientLabel renders the patient role label
func RenderPatientLabel() string {
	return RoleLabelPatientStyle.Render(IconPatient + "You")
}

// RenderAssistantLabel renders the assistant role label
func RenderAssistantLabel() string {
	return RoleLabelAssistantStyle.Render(IconAssistant + "Assistant")
}
