package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/semmidev/archivist/internal/adapter/collector"
	"github.com/semmidev/archivist/internal/adapter/compressor"
	"github.com/semmidev/archivist/internal/adapter/notifier"
	"github.com/semmidev/archivist/internal/adapter/storage"
	"github.com/semmidev/archivist/internal/config"
	"github.com/semmidev/archivist/internal/domain"
	"github.com/semmidev/archivist/internal/infrastructure/logger"
	"github.com/semmidev/archivist/internal/infrastructure/scratch"
	"github.com/semmidev/archivist/internal/usecase"
	"github.com/spf13/afero"
)

type App struct {
	config      *config.Config
	fs          afero.Fs
	now         func() time.Time
	stdout      io.Writer
	scratchBase string
	logger      *logger.Logger
	notifiers   []domain.Notifier
	state       domain.State
}

type Option func(*App)

func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		a.fs = fs
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

func WithStdout(w io.Writer) Option {
	return func(a *App) {
		a.stdout = w
	}
}

// WithScratchBase places scratch directories under dir instead of the
// system temp directory.
func WithScratchBase(dir string) Option {
	return func(a *App) {
		a.scratchBase = dir
	}
}

// WithNotifiers replaces the notifiers derived from the configuration.
func WithNotifiers(notifiers ...domain.Notifier) Option {
	return func(a *App) {
		a.notifiers = notifiers
	}
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	// Until the destination is known, records only go to the console.
	log, err := logger.New(cfg.Log.Level, "", cfg.Log.Console)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &App{
		config:    cfg,
		fs:        afero.NewOsFs(),
		now:       time.Now,
		stdout:    os.Stdout,
		logger:    log,
		notifiers: initializeNotifiers(cfg, log),
		state:     domain.StateInit,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

func initializeNotifiers(cfg *config.Config, log *logger.Logger) []domain.Notifier {
	var notifiers []domain.Notifier

	if cfg.Run.Email != "" {
		notifiers = append(notifiers, notifier.NewEmail(cfg.SMTP))
	}

	if cfg.Telegram.Enabled {
		tg, err := notifier.NewTelegram(cfg.Telegram)
		if err != nil {
			log.Errorf("Failed to initialize Telegram: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	return notifiers
}

func (a *App) State() domain.State {
	return a.state
}

// Run performs one backup or restore and reports its outcome. Failures are
// logged, printed and notified here; the caller only decides the exit status.
func (a *App) Run(ctx context.Context) domain.Outcome {
	start := a.now()
	run := a.config.Run

	outcome := domain.Outcome{
		Mode:        domain.ModeBackup,
		Source:      run.Source,
		Destination: run.Destination,
	}
	if a.config.RestoreMode() {
		outcome.Mode = domain.ModeRestore
		outcome.Archive = run.Restore
		if run.Source != "" {
			a.logger.Warnf("Ignoring source %s in restore mode", run.Source)
		}
	}

	a.transition(domain.StateValidating)

	dest, err := a.verifyPaths()
	if err != nil {
		return a.fail(ctx, outcome, err)
	}

	if err := a.openRunLog(dest.GetPath(fmt.Sprintf("log_%s.log", start.Format(compressor.TimestampLayout)))); err != nil {
		return a.fail(ctx, outcome, err)
	}

	zipper := compressor.NewZip(a.fs, a.logger,
		compressor.WithClock(a.now),
		compressor.WithEmptyDirs(a.config.Archive.KeepEmptyDirs),
	)

	if outcome.Mode == domain.ModeRestore {
		a.transition(domain.StateRestoring)

		if _, err := usecase.NewRestore(zipper, a.logger).Execute(ctx, run.Restore, dest.Path()); err != nil {
			return a.fail(ctx, outcome, err)
		}
		a.logger.Infof("Restore completed successfully.")
	} else {
		a.transition(domain.StateBackingUp)

		backup := usecase.NewBackup(
			scratch.New(a.fs, a.scratchBase),
			collector.New(a.fs, a.logger),
			zipper,
			a.logger,
		)
		archive, err := backup.Execute(ctx, run.Source, dest.Path())
		if err != nil {
			return a.fail(ctx, outcome, err)
		}
		outcome.Archive = archive
		a.logger.Infof("Backup completed successfully.")
	}

	a.transition(domain.StateNotifying)
	a.report(ctx, outcome)
	a.transition(domain.StateDone)

	return outcome
}

// verifyPaths checks the archive or source before the destination is
// created, so a missing input leaves the filesystem untouched.
func (a *App) verifyPaths() (*storage.LocalStorage, error) {
	run := a.config.Run

	if a.config.RestoreMode() {
		if err := storage.RequireExists(a.fs, "Zip file", run.Restore); err != nil {
			return nil, err
		}
	} else {
		if err := storage.RequireExists(a.fs, "Source", run.Source); err != nil {
			return nil, err
		}
	}

	return storage.NewLocal(a.fs, run.Destination)
}

func (a *App) openRunLog(logFile string) error {
	log, err := logger.New(a.config.Log.Level, logFile, a.config.Log.Console)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.logger.Close()
	a.logger = log
	a.logger.Debugf("Logging to %s", logFile)
	return nil
}

func (a *App) fail(ctx context.Context, outcome domain.Outcome, err error) domain.Outcome {
	outcome.Err = err
	a.transition(domain.StateErrored)
	a.logger.Errorf("Error during operation: %v", err)
	a.report(ctx, outcome)
	return outcome
}

// report prints the outcome and makes one best-effort delivery per notifier.
// Delivery is detached from cancellation so an interrupted run is still reported.
func (a *App) report(ctx context.Context, outcome domain.Outcome) {
	message := outcome.Message()
	fmt.Fprintln(a.stdout, message)

	if len(a.notifiers) == 0 {
		return
	}

	usecase.NewNotify(a.notifiers, a.logger).Execute(context.WithoutCancel(ctx), domain.Notification{
		Subject:   outcome.Subject(),
		Body:      message,
		Recipient: a.config.Run.Email,
	})
}

func (a *App) transition(next domain.State) {
	a.logger.Debugf("State %s -> %s", a.state, next)
	a.state = next
}

func (a *App) Shutdown() {
	a.logger.Close()
}
