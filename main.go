package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/milk9111/duckpond/config"
	"github.com/milk9111/duckpond/obj"
	"github.com/milk9111/duckpond/observability"
	"github.com/milk9111/duckpond/prefabs"
	"github.com/milk9111/duckpond/system"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "duckpond",
		Short:         "Ducks that wander a pond until they spot the player.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml)")
	root.PersistentFlags().Int("seed", 1, "seed for duck wander directions")
	root.PersistentFlags().String("prefabs", "prefabs", "directory whose prefab files override the embedded ones")
	root.PersistentFlags().Bool("watch", false, "reload prefab files when they change")
	root.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	bind(v, root, map[string]string{
		"sim.seed":       "seed",
		"sim.prefab_dir": "prefabs",
		"sim.watch":      "watch",
		"logger.level":   "log-level",
	})

	root.AddCommand(newRunCmd(v), newViewCmd(v))
	return root
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Step the pond headless for a fixed number of ticks and report each duck.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(v, func(s *session) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()

				w, err := s.newWorld(nil)
				if err != nil {
					return err
				}
				if err := w.Run(ctx, system.NewFixedClock(s.cfg.Sim.TickRate), s.cfg.Sim.Ticks); err != nil && err != context.Canceled {
					return err
				}
				for _, d := range w.Summary() {
					s.logger.Info("duck",
						zap.String("name", d.Name),
						zap.Stringer("state", d.State),
						zap.Float64("x", d.X),
						zap.Float64("z", d.Z),
						zap.Int("transitions", d.Transitions),
					)
				}
				s.logger.Info("run finished", zap.Int("ticks", w.Tick()))
				return nil
			})
		},
	}
	cmd.Flags().Int("ticks", 600, "number of fixed steps to run")
	bind(v, cmd, map[string]string{"sim.ticks": "ticks"})
	return cmd
}

func newViewCmd(v *viper.Viper) *cobra.Command {
	var scripted bool
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window onto the pond and drive the player with the keyboard.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(v, func(s *session) error {
				var input obj.InputSource
				if !scripted {
					input = newKeyboard()
				}
				return runViewer(s, input)
			})
		},
	}
	cmd.Flags().BoolVar(&scripted, "scripted", false, "drive the player from the configured script instead of the keyboard")
	return cmd
}

// bind ties config keys to flags. A missing flag is a wiring bug, so it
// panics while the command tree is built.
func bind(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			panic(fmt.Sprintf("bind %s to --%s: %v", key, flag, err))
		}
	}
}

// session carries what every command needs once config is loaded.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	watcher *prefabs.Watcher
}

func withSession(v *viper.Viper, f func(s *session) error) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger, nil)
	if err != nil {
		return err
	}
	defer observability.Sync(logger)
	logger = logger.With(zap.String("run_id", uuid.New().String()))

	s := &session{cfg: cfg, logger: logger}
	if cfg.Sim.Watch {
		s.watcher, err = prefabs.NewWatcher(cfg.Sim.PrefabDir)
		if err != nil {
			logger.Error("prefab watch failed", zap.String("dir", cfg.Sim.PrefabDir), zap.Error(err))
			return err
		}
		defer s.watcher.Close()
		go func() {
			for err := range s.watcher.Errors {
				logger.Warn("prefab watcher", zap.Error(err))
			}
		}()
	}

	if err := f(s); err != nil {
		logger.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *session) newWorld(input obj.InputSource) (*system.World, error) {
	w, err := system.NewWorld(system.Options{
		Source: prefabs.Source{Dir: s.cfg.Sim.PrefabDir},
		Sim:    s.cfg.Sim,
		Logger: s.logger,
		Input:  input,
	})
	if err != nil {
		return nil, err
	}
	w.OnTransition(func(t system.Transition) {
		s.logger.Debug("duck transition",
			zap.Int("tick", t.Tick),
			zap.String("duck", t.Duck),
			zap.Stringer("from", t.From),
			zap.Stringer("to", t.To),
		)
	})
	if s.watcher != nil {
		w.Watch(s.watcher.Events)
	}
	return w, nil
}
