package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/camera"
	"github.com/kozaktomas/face-attendance/internal/camera/webcam"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/cooldown"
	"github.com/kozaktomas/face-attendance/internal/display"
	"github.com/kozaktomas/face-attendance/internal/enroll"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/kozaktomas/face-attendance/internal/render"
	"github.com/kozaktomas/face-attendance/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start recognizing faces and recording attendance",
	Long: `Start the recognition loop.

Every frame is sent to the embedding server. Recognized people are recorded in
the attendance ledger at most once per cooldown window. In the window press 's'
to enroll the face in view (the name is read from the terminal) and 'q' to quit.

Examples:
  # Webcam 0, CSV ledger, window
  face-attendance run

  # IP camera snapshots without a window, operator API on port 8080
  face-attendance run --snapshot-url http://cam.local/snapshot.jpg --headless --http-port 8080

  # PostgreSQL ledger with a 5 minute cooldown
  ATTENDANCE_LEDGER=postgres DATABASE_URL=postgres://... face-attendance run --cooldown 5m`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run without a window (enrollment only through the operator API)")
	runCmd.Flags().Int("http-port", 0, "Port of the operator API (0 uses WEB_PORT, disabled when unset)")
	runCmd.Flags().Duration("cooldown", constants.DefaultCooldown, "Minimum interval between two recorded sightings of one person")
	runCmd.Flags().Float64("threshold", constants.DefaultDistanceThreshold, "Maximum cosine distance for a match")
	runCmd.Flags().String("device", "", "Capture device index or path")
	runCmd.Flags().String("snapshot-url", "", "HTTP snapshot URL used instead of a capture device")
	runCmd.Flags().String("frames-dir", "", "Replay images from a directory instead of a camera")
}

// applyRunFlags overrides configuration with flags the user set explicitly.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("headless") {
		cfg.Display.Headless = mustGetBool(cmd, "headless")
	}
	if flags.Changed("http-port") {
		cfg.Web.Port = mustGetInt(cmd, "http-port")
	}
	if flags.Changed("cooldown") {
		cfg.Recognition.Cooldown = mustGetDuration(cmd, "cooldown")
	}
	if flags.Changed("threshold") {
		cfg.Recognition.DistanceThreshold = mustGetFloat64(cmd, "threshold")
	}
	if flags.Changed("device") {
		cfg.Camera.Device = mustGetString(cmd, "device")
	}
	if flags.Changed("snapshot-url") {
		cfg.Camera.SnapshotURL = mustGetString(cmd, "snapshot-url")
	}
	if flags.Changed("frames-dir") {
		cfg.Camera.FramesDir = mustGetString(cmd, "frames-dir")
	}
}

// openSource opens the configured frame source and reads one frame to verify it.
func openSource(ctx context.Context, cfg *config.CameraConfig) (camera.Source, error) {
	switch {
	case cfg.FramesDir != "":
		return camera.OpenDir(cfg.FramesDir, cfg.Interval, false)
	case cfg.SnapshotURL != "":
		src := camera.NewSnapshot(cfg.SnapshotURL, 10*time.Second, cfg.Interval)
		if _, err := src.Read(ctx); err != nil {
			return nil, fmt.Errorf("snapshot camera unavailable: %w", err)
		}
		return src, nil
	default:
		return webcam.Open(cfg.Device)
	}
}

func newDisplay(cfg *config.DisplayConfig) (recognition.Display, error) {
	if cfg.Headless {
		return recognition.HeadlessDisplay{}, nil
	}
	annotator, err := render.NewAnnotator(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return nil, err
	}
	return display.NewWindow(cfg.WindowTitle, annotator), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := newAppWithConfig(cfg)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.ensureStore(); err != nil {
		return err
	}

	sink, err := ledger.Open(ctx, &cfg.Ledger)
	if err != nil {
		return fmt.Errorf("opening attendance ledger: %w", err)
	}
	defer sink.Close()

	g, err := a.loadGallery(ctx, false)
	if err != nil {
		return fmt.Errorf("loading known faces: %w", err)
	}
	a.log.Info("Known faces loaded", "identities", g.Len(), "dir", cfg.Store.KnownFacesDir)
	a.log.Debug("Known identities", "names", g.Names())

	source, err := openSource(ctx, &cfg.Camera)
	if err != nil {
		return fmt.Errorf("opening video source: %w", err)
	}

	disp, err := newDisplay(&cfg.Display)
	if err != nil {
		source.Close()
		return fmt.Errorf("opening display: %w", err)
	}

	tracker := cooldown.NewTracker(cfg.Recognition.Cooldown)
	engine := recognition.NewEngine(a.detector, a.holder, tracker, sink, cfg.Recognition.DistanceThreshold, a.log)
	enroller := enroll.NewHandler(a.store, a.holder, a.detector, a.log)
	runner := recognition.NewRunner(engine, source, disp, enroller, recognition.NewHistory(constants.HistorySize), a.log)

	if !cfg.Display.Headless {
		prompter := recognition.NewPrompter(os.Stdin, os.Stdout, runner.Submit, a.log)
		prompter.Start(ctx)
		runner.SetPrompter(prompter)
	}

	if cfg.Web.Enabled() {
		server := web.NewServer(web.Deps{
			Config:    cfg,
			Galleries: a.holder,
			Events:    runner.History(),
			Commands:  runner,
			StartedAt: time.Now(),
		}, a.log)
		go func() {
			if err := server.Start(); err != nil {
				a.log.Error("Operator API stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.log.Warn("Error during shutdown", "error", err)
			}
		}()
	}

	a.log.Info("Recognition started",
		"cooldown", cfg.Recognition.Cooldown,
		"threshold", cfg.Recognition.DistanceThreshold,
		"ledger", cfg.Ledger.Driver,
	)
	err = runner.Run(ctx)
	if errors.Is(err, io.EOF) && cfg.Camera.FramesDir != "" {
		a.log.Info("All frames processed")
		return nil
	}
	return err
}
