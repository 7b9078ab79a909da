package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/lifewire/internal/cliconfig"
	"github.com/bft-labs/lifewire/pkg/lifecycle"
	"github.com/bft-labs/lifewire/pkg/log"
	"github.com/bft-labs/lifewire/pkg/loop"
	"github.com/bft-labs/lifewire/pkg/observable"
	"github.com/bft-labs/lifewire/pkg/retained"
	"github.com/bft-labs/lifewire/plugins/fswatch"
	"github.com/bft-labs/lifewire/plugins/ticker"
)

const helpDescription = `
Watch the filesystem through a lifecycle-aware observable pipeline.

The daemon owns a single lifecycle. Filesystem events and heartbeat ticks
flow into observable values and are delivered only while the lifecycle is
started; pausing the daemon stops delivery and stops the sources entirely.

Signals:
  SIGUSR1  pause the lifecycle (sources wind down)
  SIGUSR2  resume the lifecycle (sources restart, latest value replays)
  SIGINT   destroy the lifecycle and exit
`

var exampleUsage = strings.TrimSpace(`
  lifewire --watch /etc/myapp --tick-interval 5s
  lifewire --config $HOME/.lifewire/config.toml --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "lifewire",
		Short:   "Lifecycle-gated filesystem watch daemon",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.lifewire/config.toml),
			// then environment, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			zl := cliconfig.NewLogger(cfg)
			zl.Info().Interface("config", cfg).Msg("configuration")

			return run(cfg, log.NewZerologAdapterWithLogger(zl))
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.lifewire/config.toml)")
	root.Flags().StringSliceVar(&cfg.WatchPaths, "watch", cfg.WatchPaths, "file or directory to watch (repeatable)")
	root.Flags().DurationVar(&cfg.TickInterval, "tick-interval", cfg.TickInterval, "heartbeat tick period")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "human-readable console output")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "exit after the first delivered event")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg cliconfig.Config, logger log.Logger) error {
	l := loop.New(loop.WithLogger(logger))
	defer l.Stop()

	fs := fswatch.New(fswatch.Config{Paths: cfg.WatchPaths}, l, fswatch.WithLogger(logger))
	ticks := ticker.New(ticker.Config{Interval: cfg.TickInterval}, l, ticker.WithLogger(logger))

	// Retained handles outlive pause/resume cycles and are torn down once,
	// when the daemon destroys its lifecycle.
	store := retained.NewStore(retained.WithLogger(logger))
	store.Put("fswatch", retained.DestroyableFunc(func() {
		logger.Debug("filesystem source released")
	}))
	store.Put("ticker", retained.DestroyableFunc(func() {
		logger.Debug("heartbeat source released")
	}))

	first := make(chan struct{}, 1)
	delivered := func() {
		select {
		case first <- struct{}{}:
		default:
		}
	}

	var owner *lifecycle.StandaloneOwner
	l.Do(func() {
		owner = lifecycle.NewStandaloneOwner(
			lifecycle.WithLoop(l),
			lifecycle.WithLogger(logger),
		)

		fs.Events().Observe(owner, observable.FuncObserver[fswatch.Event](func(ev fswatch.Event) {
			logger.Info("fs event",
				log.String("path", ev.Path),
				log.String("op", ev.Op.String()),
			)
			delivered()
		}))
		ticks.Ticks().Observe(owner, observable.FuncObserver[time.Time](func(now time.Time) {
			logger.Debug("tick", log.String("at", now.Format(time.RFC3339)))
			delivered()
		}))

		owner.Handle(lifecycle.EventCreate)
		owner.Handle(lifecycle.EventStart)
		owner.Handle(lifecycle.EventResume)
	})
	logger.Info("lifecycle resumed, sources active")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigCh)

	paused := false
	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGUSR1:
				if paused {
					continue
				}
				paused = true
				l.Do(func() {
					owner.Handle(lifecycle.EventPause)
					owner.Handle(lifecycle.EventStop)
				})
				logger.Info("lifecycle paused, sources stopped")
			case syscall.SIGUSR2:
				if !paused {
					continue
				}
				paused = false
				l.Do(func() {
					owner.Handle(lifecycle.EventStart)
					owner.Handle(lifecycle.EventResume)
				})
				logger.Info("lifecycle resumed, sources active")
			default:
				logger.Info("received signal, stopping", log.String("signal", sig.String()))
				return shutdown(l, owner, store, paused)
			}
		case <-first:
			if !cfg.Once {
				continue
			}
			logger.Info("first event delivered, exiting")
			return shutdown(l, owner, store, paused)
		}
	}
}

// shutdown walks the lifecycle down to destroyed and clears retained state.
func shutdown(l *loop.Loop, owner *lifecycle.StandaloneOwner, store *retained.Store, paused bool) error {
	l.Do(func() {
		if !paused {
			owner.Handle(lifecycle.EventPause)
			owner.Handle(lifecycle.EventStop)
		}
		owner.Handle(lifecycle.EventDestroy)
		store.Clear()
	})
	return nil
}
