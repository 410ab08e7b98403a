package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/faceapi"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/logger"
)

// app holds the collaborators shared by all commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	detector *faceapi.Client
	store    *gallery.Store
	holder   *gallery.Holder
}

func newApp() (*app, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return newAppWithConfig(cfg)
}

func newAppWithConfig(cfg *config.Config) (*app, error) {
	log, err := logger.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	detector := faceapi.NewClient(cfg.Embedding.URL, cfg.Embedding.Timeout)
	a := &app{
		cfg:      cfg,
		log:      log,
		detector: detector,
		store:    gallery.NewStore(cfg.Store.KnownFacesDir),
	}
	a.holder = gallery.NewHolder(a.loader(nil))
	return a, nil
}

func (a *app) loader(progress func(done, total int)) *gallery.Loader {
	return &gallery.Loader{
		Dir:      a.cfg.Store.KnownFacesDir,
		Detector: a.detector,
		Log:      a.log,
		Progress: progress,
	}
}

// ensureStore creates the enrollment directory if needed.
func (a *app) ensureStore() error {
	created, err := a.store.Ensure()
	if err != nil {
		return err
	}
	if created {
		a.log.Info("Created folder", "path", a.store.Dir())
	}
	return nil
}

// loadGallery performs the initial gallery load, optionally with a progress bar.
func (a *app) loadGallery(ctx context.Context, showProgress bool) (*gallery.Gallery, error) {
	if !showProgress {
		return a.holder.Reload(ctx)
	}

	var bar *progressbar.ProgressBar
	g, err := a.loader(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Encoding known faces"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("images"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		bar.Set(done)
	}).Load(ctx)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return nil, err
	}
	a.holder.Set(g)
	return g, nil
}
