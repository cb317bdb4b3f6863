// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     cmd
// Description: CLI command for the interactive consultation session
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arogya/teleconsult/internal/consult"
	"github.com/arogya/teleconsult/internal/consult/api"
	"github.com/arogya/teleconsult/internal/consult/capture"
	"github.com/arogya/teleconsult/internal/consult/channel"
	"github.com/arogya/teleconsult/internal/consult/playback"
	"github.com/arogya/teleconsult/internal/consult/prefs"
	"github.com/arogya/teleconsult/internal/consult/store"
	"github.com/arogya/teleconsult/internal/consult/stt"
	consulttui "github.com/arogya/teleconsult/internal/tui/consult"
	"github.com/arogya/teleconsult/pkg/core/config"
	"github.com/arogya/teleconsult/pkg/core/logging"
)

var (
	consultID       string
	consultName     string
	consultAge      int
	consultGender   string
	consultEmail    string
	consultMobile   string
	consultLanguage string
	consultNoVoice  bool
	consultOffline  bool
)

var consultCmd = &cobra.Command{
	Use:     "consult",
	Aliases: []string{"c", "session"},
	Short:   "Start or resume a consultation session",
	Long: `Starts an interactive consultation session.

Without --id a new consultation is registered with the backend using
the given patient details. With --id an existing consultation is
resumed; it must still be active on the server.

During the session you can type messages or hold a voice recording
with Ctrl+R. Replies arrive translated into your preferred language
and are spoken aloud when voice responses are enabled.

Examples:
  teleconsult consult --name "Asha Rao" --age 34 --gender female
  teleconsult consult --id cons-7f3a91            # resume
  teleconsult consult --language hi               # prefer Hindi`,
	RunE: runConsult,
}

func init() {
	rootCmd.AddCommand(consultCmd)

	consultCmd.Flags().StringVar(&consultID, "id", "", "resume an existing consultation")
	consultCmd.Flags().StringVar(&consultName, "name", "", "patient full name")
	consultCmd.Flags().IntVar(&consultAge, "age", 0, "patient age in years")
	consultCmd.Flags().StringVar(&consultGender, "gender", "", "patient gender")
	consultCmd.Flags().StringVar(&consultEmail, "email", "", "patient email address")
	consultCmd.Flags().StringVar(&consultMobile, "mobile", "", "patient mobile number")
	consultCmd.Flags().StringVarP(&consultLanguage, "language", "l", "", "preferred consultation language")
	consultCmd.Flags().BoolVar(&consultNoVoice, "no-voice", false, "disable spoken replies")
	consultCmd.Flags().BoolVar(&consultOffline, "offline", false, "skip backend registration, use a local consultation id")
}

func runConsult(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx := cmd.Context()

	id, err := resolveConsultationID(ctx, cfg, logger)
	if err != nil {
		return err
	}

	resolver := prefs.NewResolver(prefs.NewFileStorage(cfg.General.PreferencesFile))
	if _, err := resolver.Load(); err != nil {
		logger.Warn("could not load preferences, using defaults", "error", err)
	}
	if err := applyPreferenceFlags(cmd, resolver); err != nil {
		return err
	}

	source, err := capture.NewMicSource(capture.MicConfig{
		SampleRate:      cfg.Audio.SampleRate,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		DeviceName:      cfg.Audio.InputDevice,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio input: %w", err)
	}
	defer source.Close()

	session := consult.NewSession(id, consult.SessionDeps{
		Transport:   newChannel(cfg, id, logger),
		Pipeline:    capture.NewPipeline(source, newDetector(cfg, logger), cfg.Capture, logger.Named("capture")),
		Player:      playback.NewPlayer(&playback.PortAudioEngine{}, logger.Named("playback")),
		Store:       store.New(),
		Prefs:       resolver,
		Transcriber: stt.NewClient(cfg.Server.BaseURL, cfg.Server.UploadTimeout.Duration, logger.Named("stt")),
		Logger:      logger.Named("session"),
	})

	if err := session.Open(ctx); err != nil {
		return fmt.Errorf("failed to connect to consultation service: %w", err)
	}
	defer session.Close()

	program := tea.NewProgram(consulttui.New(session))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("consultation UI failed: %w", err)
	}
	return nil
}

// resolveConsultationID registers a new consultation, verifies a
// resumed one, or mints a local id in offline mode
func resolveConsultationID(ctx context.Context, cfg *config.Config, logger *logging.Logger) (string, error) {
	if consultOffline {
		id := "local-" + uuid.NewString()
		logger.Info("offline mode, using local consultation id", "consultation_id", id)
		return id, nil
	}

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.RequestTimeout.Duration, logger.Named("api"))

	if consultID != "" {
		info, err := client.Status(ctx, consultID)
		if err != nil {
			return "", fmt.Errorf("could not check consultation %s: %w", consultID, err)
		}
		if !info.Active() {
			return "", fmt.Errorf("consultation %s is %s and cannot be resumed", consultID, info.Status)
		}
		return consultID, nil
	}

	first, last := splitName(consultName)
	created, err := client.Start(ctx, api.PatientDetails{
		FirstName: first,
		LastName:  last,
		Age:       consultAge,
		Gender:    consultGender,
		Email:     consultEmail,
		Mobile:    consultMobile,
		LanguagePreferences: api.LanguagePreferences{
			Preferred: consultLanguage,
		},
	})
	if err != nil {
		return "", fmt.Errorf("could not register consultation: %w", err)
	}
	logger.Info("consultation registered", "consultation_id", created.ConsultationID)
	return created.ConsultationID, nil
}

// applyPreferenceFlags folds CLI flags into the persisted preferences.
// Flags win over the stored values but only when explicitly set.
func applyPreferenceFlags(cmd *cobra.Command, resolver *prefs.Resolver) error {
	var update prefs.Update
	changed := false

	if cmd.Flags().Changed("language") {
		update.PreferredLanguage = &consultLanguage
		changed = true
	}
	if cmd.Flags().Changed("no-voice") {
		enabled := !consultNoVoice
		update.Voice = &prefs.VoiceUpdate{Enabled: &enabled}
		changed = true
	}
	if !changed {
		return nil
	}
	if _, err := resolver.Update(update); err != nil {
		return fmt.Errorf("could not apply preferences: %w", err)
	}
	return nil
}

// newChannel builds the consultation channel for the given id
func newChannel(cfg *config.Config, id string, logger *logging.Logger) *channel.Channel {
	url := strings.TrimSuffix(cfg.Server.WebSocketURL, "/") + "/" + id
	return channel.New(url, logger.Named("channel"))
}

// newDetector picks WebRTC VAD when enabled and supported, with the
// energy detector as fallback
func newDetector(cfg *config.Config, logger *logging.Logger) capture.Detector {
	if cfg.Capture.VADEnabled {
		d, err := capture.NewWebRTCDetector(cfg.Audio.SampleRate, cfg.Capture.VADMode)
		if err == nil {
			return d
		}
		logger.Warn("WebRTC VAD unavailable, falling back to energy detection", "error", err)
	}
	return capture.NewEnergyDetector(cfg.Capture.EnergyThreshold)
}

// splitName separates a full name into first and last name
func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.Fields(full)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
