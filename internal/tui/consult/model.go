// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     consulttui
// Description: Main Bubbletea model for the consultation TUI
// License:     MIT
// ============================================================================

package consulttui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arogya/teleconsult/internal/consult"
	"github.com/arogya/teleconsult/internal/consult/channel"
	"github.com/arogya/teleconsult/internal/consult/playback"
	"github.com/arogya/teleconsult/internal/consult/prefs"
	"github.com/arogya/teleconsult/internal/consult/store"
)

// noticeVisibleFor is how long a notice stays on screen
const noticeVisibleFor = 10 * time.Second

// Model is the main Bubbletea model for the consultation TUI
type Model struct {
	// State
	width       int
	height      int
	ready       bool
	channelDown bool
	lastBotIdx  int

	// Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Session
	session *consult.Session

	// Input state transitions arrive here from the session's listener
	stateChanges chan inputStateMsg

	// Last notice shown below the input area
	notice   *consult.Notice
	noticeAt time.Time
}

// New creates a TUI model bound to an open consultation session
func New(session *consult.Session) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your symptoms... (Enter to send, Ctrl+R to speak)"
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = FocusedInputStyle
	ta.BlurredStyle.Base = InputStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	stateChanges := make(chan inputStateMsg, 8)
	session.StateMachine().AddListener(func(from, to consult.State) {
		select {
		case stateChanges <- inputStateMsg{from: from, to: to}:
		default:
		}
	})

	return Model{
		textarea:     ta,
		spinner:      sp,
		session:      session,
		stateChanges: stateChanges,
		lastBotIdx:   -1,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.waitForEvent(),
		m.waitForNotice(),
		m.waitForStateChange(),
		m.tick(),
		tea.EnterAltScreen,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Title panel
		footerHeight := 9 // Input + notice + status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.updateViewportContent()

	case spinner.TickMsg:
		if m.busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case inboundEventMsg:
		if !msg.ok {
			m.channelDown = true
			m.setNotice(consult.Notice{
				Level: consult.NoticeError,
				Text:  "Connection to the consultation service was lost",
			})
			m.updateViewportContent()
			break
		}
		out := m.session.HandleEvent(msg.event)
		if out.Notice != nil {
			m.setNotice(*out.Notice)
		}
		if out.MessageIndex >= 0 {
			m.lastBotIdx = out.MessageIndex
		}
		m.updateViewportContent()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())

	case noticeMsg:
		if msg.ok {
			m.setNotice(msg.notice)
			cmds = append(cmds, m.waitForNotice())
		}

	case inputStateMsg:
		// Redraw only; the session already did the work
		cmds = append(cmds, m.waitForStateChange())
		if msg.to == consult.StateRecording || msg.to == consult.StateProcessing {
			cmds = append(cmds, m.spinner.Tick)
		}

	case tickMsg:
		if m.notice != nil && time.Since(m.noticeAt) > noticeVisibleFor {
			m.notice = nil
		}
		cmds = append(cmds, m.tick())
	}

	if !m.busy() {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil
	}

	switch msg.String() {
	case "ctrl+r":
		// Toggle voice recording
		switch m.session.InputState() {
		case consult.StateIdle:
			if err := m.session.StartRecording(context.Background()); err != nil {
				m.setNotice(consult.Notice{
					Level: consult.NoticeError,
					Text:  "Could not start recording: " + err.Error(),
				})
			}
		case consult.StateRecording:
			m.session.StopRecording()
		}
		return m, m.spinner.Tick

	case "ctrl+t":
		// Toggle original text on the last assistant message
		if m.lastBotIdx >= 0 {
			m.session.Store().ToggleOriginal(m.lastBotIdx)
			m.updateViewportContent()
		}
		return m, nil

	case "ctrl+p":
		// Pause/resume voice playback
		m.session.Player().Toggle()
		return m, nil

	case "ctrl+v":
		// Toggle voice output preference
		p := m.session.Prefs().Current()
		enabled := !p.Voice.Enabled
		update := prefs.Update{Voice: &prefs.VoiceUpdate{Enabled: &enabled}}
		if _, err := m.session.Prefs().Update(update); err != nil {
			m.setNotice(consult.Notice{Level: consult.NoticeWarning, Text: "Could not save preference"})
		} else if enabled {
			m.setNotice(consult.Notice{Level: consult.NoticeInfo, Text: "Voice responses on"})
		} else {
			m.session.Player().Stop()
			m.setNotice(consult.Notice{Level: consult.NoticeInfo, Text: "Voice responses off"})
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter && !m.busy() {
		input := strings.TrimSpace(m.textarea.Value())
		if input != "" {
			if m.channelDown {
				m.setNotice(consult.Notice{
					Level: consult.NoticeError,
					Text:  "Not connected, your message was not sent",
				})
				return m, nil
			}
			if _, err := m.session.SendText(input); err != nil {
				m.setNotice(consult.Notice{
					Level: consult.NoticeError,
					Text:  "Message could not be delivered",
				})
			}
			m.textarea.Reset()
			m.updateViewportContent()
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Connecting to consultation..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderChatArea())
	b.WriteString("\n")
	b.WriteString(m.renderInputArea())
	b.WriteString("\n")
	b.WriteString(m.renderNoticeLine())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return b.String()
}

// renderHeader renders the title panel with logo and connection status
func (m Model) renderHeader() string {
	logo := LogoStyle.Render(Logo)

	var status string
	if m.connected() {
		status = StatusOnlineStyle.Render(IconOnline + "Connected")
	} else {
		status = StatusOfflineStyle.Render(IconOffline + "Offline")
	}

	id := HelpDescStyle.Render("Consultation " + m.session.ID())

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		logo,
		strings.Repeat(" ", 3),
		id,
		strings.Repeat(" ", 3),
		status,
	)

	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

// renderChatArea renders the conversation viewport
func (m Model) renderChatArea() string {
	return FocusedChatPanelStyle.
		Width(m.width - 2).
		Height(m.viewport.Height + 2).
		Render(m.viewport.View())
}

// renderInputArea renders the input textarea or the voice indicator
func (m Model) renderInputArea() string {
	var input string

	switch m.session.InputState() {
	case consult.StateRecording:
		elapsed := m.session.StateMachine().StateDuration()
		input = m.spinner.View() + StatusRecordingStyle.Render(
			fmt.Sprintf("%sRecording... %.1fs  (Ctrl+R to stop)", IconMic, elapsed.Seconds()))
	case consult.StateProcessing:
		input = m.spinner.View() + ThinkingStyle.Render(" Processing your voice input...")
	default:
		input = m.textarea.View()
	}

	style := FocusedInputStyle.Width(m.width - 2)
	if m.busy() {
		style = InputStyle.Width(m.width - 2)
	}
	return style.Render(input)
}

// renderNoticeLine renders the most recent notice, if any
func (m Model) renderNoticeLine() string {
	if m.notice == nil {
		return ""
	}
	switch m.notice.Level {
	case consult.NoticeError:
		return NoticeErrorStyle.Render("  " + m.notice.Text)
	case consult.NoticeWarning:
		return NoticeWarningStyle.Render("  " + m.notice.Text)
	default:
		return NoticeInfoStyle.Render("  " + m.notice.Text)
	}
}

// renderStatusBar renders language, input state and playback position
func (m Model) renderStatusBar() string {
	p := m.session.Prefs().Current()

	lang := p.PreferredLanguage
	if p.AutoDetect {
		lang += " (auto)"
	}
	leftPart := HelpDescStyle.Render("Language: ") + HeaderStyle.Render(lang)

	state := m.session.InputState()
	centerPart := HelpDescStyle.Render(state.Icon() + " " + state.String())

	var rightPart string
	if m.session.Player().State() != playback.StateIdle {
		pos := m.session.Player().Position().Seconds()
		dur := m.session.Player().Duration().Seconds()
		rightPart = StatusProcessingStyle.Render(fmt.Sprintf("%s%.0fs/%.0fs", IconSpeaker, pos, dur))
	} else if p.Voice.Enabled {
		rightPart = HelpDescStyle.Render(IconSpeaker + "voice on")
	} else {
		rightPart = HelpDescStyle.Render(IconSpeaker + "voice off")
	}

	leftLen := lipgloss.Width(leftPart)
	centerLen := lipgloss.Width(centerPart)
	rightLen := lipgloss.Width(rightPart)
	availableSpace := m.width - leftLen - centerLen - rightLen - 4
	if availableSpace < 2 {
		availableSpace = 2
	}
	leftPadding := availableSpace / 2
	rightPadding := availableSpace - leftPadding

	content := leftPart + strings.Repeat(" ", leftPadding) + centerPart +
		strings.Repeat(" ", rightPadding) + rightPart

	return StatusBarStyle.Width(m.width - 2).Render(content)
}

// renderHelpBar renders the keyboard shortcut hints
func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("Enter", "send"),
		RenderKeyHint("Ctrl+R", "speak"),
		RenderKeyHint("Ctrl+T", "original text"),
		RenderKeyHint("Ctrl+P", "pause audio"),
		RenderKeyHint("Ctrl+V", "voice on/off"),
		RenderKeyHint("Ctrl+C", "quit"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// updateViewportContent renders the conversation log into the viewport
func (m *Model) updateViewportContent() {
	var content strings.Builder

	st := m.session.Store()
	for i, msg := range st.Messages() {
		timeStr := msg.Timestamp.Format("15:04")
		text := st.DisplayText(i)

		switch msg.Kind {
		case store.KindUser:
			label := RenderPatientLabel() + "  " + HelpDescStyle.Render(timeStr)
			if st.IsPending(i) {
				label += PendingMarkerStyle.Render("  sending...")
			}
			content.WriteString(label)
			content.WriteString("\n")
			content.WriteString(PatientMessageStyle.Width(m.width - 6).Render(text))
			content.WriteString("\n\n")

		case store.KindBot:
			label := RenderAssistantLabel() + "  " + HelpDescStyle.Render(timeStr)
			if st.ShowOriginal(i) && msg.OriginalContent != "" {
				label += OriginalHintStyle.Render("  (original)")
			}
			content.WriteString(label)
			content.WriteString("\n")
			content.WriteString(AssistantMessageStyle.Width(m.width - 6).Render(text))
			content.WriteString("\n")
			if msg.Analysis != nil {
				content.WriteString(m.renderAnalysis(msg.Analysis))
			}
			content.WriteString("\n")
		}
	}

	m.viewport.SetContent(content.String())
}

// renderAnalysis renders the medical analysis attached to a bot message
func (m Model) renderAnalysis(a *store.Analysis) string {
	var b strings.Builder

	if a.RequiresEmergency {
		b.WriteString(EmergencyStyle.Render(IconEmergency + "Please seek immediate medical attention"))
		b.WriteString("\n")
	}
	if len(a.Symptoms) > 0 {
		names := make([]string, len(a.Symptoms))
		for i, s := range a.Symptoms {
			names[i] = s.Name
		}
		b.WriteString(SymptomStyle.Render("  Symptoms: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}
	if a.Urgency != "" && !a.RequiresEmergency {
		b.WriteString(UrgencyStyle.Render("  Urgency: " + a.Urgency))
		b.WriteString("\n")
	}
	for _, rec := range a.Recommendations {
		b.WriteString(RecommendationStyle.Render("  • " + rec))
		b.WriteString("\n")
	}
	return b.String()
}

// busy reports whether voice input is occupying the input area
func (m Model) busy() bool {
	state := m.session.InputState()
	return state == consult.StateRecording || state == consult.StateProcessing
}

// connected reports whether the channel can still deliver messages
func (m Model) connected() bool {
	return !m.channelDown && m.session.ChannelState() == channel.StateOpen
}

// setNotice replaces the visible notice
func (m *Model) setNotice(n consult.Notice) {
	m.notice = &n
	m.noticeAt = time.Now()
}

// waitForEvent returns a command that waits for the next channel event
func (m Model) waitForEvent() tea.Cmd {
	events := m.session.Events()
	return func() tea.Msg {
		ev, ok := <-events
		return inboundEventMsg{event: ev, ok: ok}
	}
}

// waitForNotice returns a command that waits for the next session notice
func (m Model) waitForNotice() tea.Cmd {
	notices := m.session.Notices()
	return func() tea.Msg {
		n, ok := <-notices
		return noticeMsg{notice: n, ok: ok}
	}
}

// waitForStateChange returns a command that waits for the next input
// state transition
func (m Model) waitForStateChange() tea.Cmd {
	changes := m.stateChanges
	return func() tea.Msg {
		return <-changes
	}
}

// tick schedules the next periodic redraw
func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
