package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sethgrid/watchbuddy/internal/activity"
	"github.com/sethgrid/watchbuddy/internal/art"
	"github.com/sethgrid/watchbuddy/internal/conditions"
	"github.com/sethgrid/watchbuddy/internal/config"
	"github.com/sethgrid/watchbuddy/internal/discovery"
	"github.com/sethgrid/watchbuddy/internal/engine"
	"github.com/sethgrid/watchbuddy/internal/health"
	"github.com/sethgrid/watchbuddy/internal/pet"
	"github.com/sethgrid/watchbuddy/internal/storage"
)

const Version = "v0.1.0"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "watchbuddy",
		Short:         "WatchBuddy - a pet that grows with your workouts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if version, _ := cmd.Flags().GetBool("version"); version {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("dir", "", "Pet data directory (default: nearest .watchbuddy, then ~/.watchbuddy)")
	rootCmd.PersistentFlags().String("config", "", "Path to watchbuddy.toml")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	rootCmd.AddCommand(
		newInitCmd(),
		newStatusCmd(),
		newFeedCmd(),
		newPlayCmd(),
		newCleanCmd(),
		newSleepCmd(),
		newSelectCmd(),
		newTapCmd(),
		newCancelCmd(),
		newShopCmd(),
		newBuyCmd(),
		newRenameCmd(),
		newSyncCmd(),
		newKillCmd(),
		newEraseCmd(),
		newRunCmd(),
	)
	return rootCmd
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Hatch a new pet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			global, _ := cmd.Flags().GetBool("global")
			force, _ := cmd.Flags().GetBool("force")

			dataDir, _ := cmd.Flags().GetString("dir")
			if dataDir == "" {
				if global {
					dataDir = discovery.GlobalDataDir()
				} else {
					cwd, err := os.Getwd()
					if err != nil {
						return fmt.Errorf("failed to get current directory: %w", err)
					}
					dataDir = filepath.Join(cwd, discovery.DirName)
				}
			}

			if _, err := config.WriteDefault(dataDir); err != nil {
				return err
			}
			env, err := openEnv(cmd, dataDir)
			if err != nil {
				return err
			}
			defer env.Close()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			st, err := storage.InitPet(cmd.Context(), env.store, name, force)
			if err != nil {
				return err
			}
			env.logger.Info("pet created", zap.String("name", st.Name), zap.String("dir", dataDir))
			fmt.Fprintf(cmd.OutOrStdout(), "%s hatched in %s!\n", st.Name, dataDir)
			return nil
		},
	}
	cmd.Flags().Bool("global", false, "Create the pet in your home directory")
	cmd.Flags().Bool("force", false, "Replace an existing pet")
	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show your pet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return executeStatefulCommand(cmd, func(e *engine.Engine, env *env) error {
				printStatus(cmd.OutOrStdout(), e.Snapshot(), health.ComputationMode(env.cfg.Wellbeing), verbose)
				return nil
			})
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Show the full stats card")
	return cmd
}

func printStatus(w io.Writer, s pet.State, mode health.ComputationMode, verbose bool) {
	mood := conditions.DeriveMood(s.Vitals)
	fmt.Fprintf(w, "%s is %s %s\n\n", s.Name, mood, conditions.Emoji(mood))

	if verbose {
		fmt.Fprintf(w, "state: %s\n", conditions.FormatMatching(conditions.Matching(s.Vitals)))
		fmt.Fprintf(w, "wellbeing: %d\n", health.ComputeWellbeing(s.Vitals, mode))
		fmt.Fprintf(w, "hunger: %.0f\n", s.Vitals.Hunger)
		fmt.Fprintf(w, "happiness: %.0f\n", s.Vitals.Happiness)
		fmt.Fprintf(w, "cleanliness: %.0f\n", s.Vitals.Cleanliness)
		fmt.Fprintf(w, "sleepiness: %.0f\n", s.Vitals.Sleepiness)
		fmt.Fprintf(w, "stage: %s\n", s.Stage)
		fmt.Fprintf(w, "running: level %.0f (%s total)\n", s.Activity.RunningLevel, humanize.SIWithDigits(s.Totals.Running, 1, "m"))
		fmt.Fprintf(w, "swimming: level %.0f (%s total)\n", s.Activity.SwimmingLevel, humanize.SIWithDigits(s.Totals.Swimming, 1, "m"))
		fmt.Fprintf(w, "cycling: level %.0f (%s total)\n", s.Activity.CyclingLevel, humanize.SIWithDigits(s.Totals.Cycling, 1, "m"))
		fmt.Fprintf(w, "last sleep: %.1fh\n", s.Activity.LastSleepHours)
		fmt.Fprintf(w, "points: %s\n", humanize.Comma(int64(s.Points)))
		if s.ActiveAction != pet.ActionNone {
			fmt.Fprintf(w, "selected: %s\n", describeSelection(s))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, art.Static(s.Stage, mood))
}

func describeSelection(s pet.State) string {
	switch {
	case s.SelectedFood != nil:
		return fmt.Sprintf("%s (%s)", s.ActiveAction, s.SelectedFood.Label())
	case s.SelectedToy != nil:
		return fmt.Sprintf("%s (%s)", s.ActiveAction, s.SelectedToy.Label())
	}
	return string(s.ActiveAction)
}

func parseCategory(arg string, want pet.Category) (pet.Item, error) {
	item, err := pet.ParseItem(arg)
	if err != nil {
		return pet.Item{}, err
	}
	if item.Category != want {
		return pet.Item{}, fmt.Errorf("%s is not a %s", item.Label(), want)
	}
	return item, nil
}

func newFeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed <food>",
		Short: "Feed your pet (kibble, treat, fruit)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := parseCategory(args[0], pet.CategoryFood)
			if err != nil {
				return err
			}
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out, err := e.Feed(item.Food)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fed %s some %s! (%d left)\n", out.Snapshot.Name, item.Label(), out.Snapshot.Stock(item))
				if out.RanOut {
					fmt.Fprintln(cmd.OutOrStdout(), "That was the last one. Selection cleared.")
				}
				return nil
			})
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <toy>",
		Short: "Play with your pet (ball, rope, squeaky-toy)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := parseCategory(args[0], pet.CategoryToy)
			if err != nil {
				return err
			}
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out, err := e.Play(item.Toy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Played with %s using the %s! (%d left)\n", out.Snapshot.Name, item.Label(), out.Snapshot.Stock(item))
				if out.RanOut {
					fmt.Fprintln(cmd.OutOrStdout(), "That was the last one. Selection cleared.")
				}
				return nil
			})
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Give your pet a bath",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out := e.Clean()
				fmt.Fprintf(cmd.OutOrStdout(), "%s is squeaky clean!\n", out.Snapshot.Name)
				return nil
			})
		},
	}
}

func newSleepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sleep",
		Short: "Put your pet down for a nap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out := e.Sleep()
				fmt.Fprintf(cmd.OutOrStdout(), "%s took a nap.\n", out.Snapshot.Name)
				return nil
			})
		},
	}
}

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <feed|play|clean|sleep|none> [item]",
		Short: "Choose what tapping the pet does",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := pet.ParseAction(args[0])
			if !ok {
				return fmt.Errorf("unknown action %q", args[0])
			}
			var item *pet.Item
			if len(args) == 2 {
				it, err := pet.ParseItem(args[1])
				if err != nil {
					return err
				}
				item = &it
			}
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out, err := e.SelectAction(action, item)
				if err != nil {
					return err
				}
				if out.Snapshot.ActiveAction == pet.ActionNone {
					fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s. Use 'watchbuddy tap' to do it.\n", describeSelection(out.Snapshot))
				return nil
			})
		},
	}
}

func newTapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tap",
		Short: "Tap the pet to perform the selected action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out, err := e.PerformActiveAction()
				if err != nil && !out.RanOut {
					return err
				}
				w := cmd.OutOrStdout()
				if err == nil {
					fmt.Fprintf(w, "%s: %s\n", out.Kind, effectMessage(out))
				}
				if out.RanOut {
					fmt.Fprintln(w, "That was the last one. Selection cleared.")
				}
				return err
			})
		},
	}
}

func effectMessage(out engine.Outcome) string {
	switch out.Effect {
	case engine.EffectFeed:
		return fmt.Sprintf("%s ate the %s", out.Snapshot.Name, out.Item.Label())
	case engine.EffectPlay:
		return fmt.Sprintf("%s played with the %s", out.Snapshot.Name, out.Item.Label())
	case engine.EffectClean:
		return fmt.Sprintf("%s got cleaned", out.Snapshot.Name)
	case engine.EffectSleep:
		return fmt.Sprintf("%s took a nap", out.Snapshot.Name)
	}
	return "nothing happened"
}

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Clear the selected action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				e.CancelAction()
				fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared.")
				return nil
			})
		},
	}
}

func newShopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shop",
		Short: "List prices and what you own",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				s := e.Snapshot()
				c := e.Catalog()
				w := cmd.OutOrStdout()

				fmt.Fprintf(w, "Points: %s\n\n", humanize.Comma(int64(s.Points)))
				fmt.Fprintf(w, "%-12s %6s %6s\n", "ITEM", "PRICE", "OWNED")
				for _, item := range shopItems() {
					price, _ := c.Price(item)
					fmt.Fprintf(w, "%-12s %6d %6d\n", item.Label(), price, s.Stock(item))
				}
				return nil
			})
		},
	}
}

func shopItems() []pet.Item {
	var items []pet.Item
	for _, f := range pet.FoodKinds {
		items = append(items, pet.FoodItem(f))
	}
	for _, t := range pet.ToyKinds {
		items = append(items, pet.ToyItem(t))
	}
	return items
}

func newBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <item> [quantity]",
		Short: "Buy food or toys with points",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := pet.ParseItem(args[0])
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				qty, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity must be a number: %w", err)
				}
			}
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out, err := e.BuyFromCatalog(item, qty)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Bought %d %s for %s points. %s points left.\n",
					qty, item.Label(), humanize.Comma(int64(out.PointsSpent)), humanize.Comma(int64(out.Snapshot.Points)))
				return nil
			})
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename your pet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out, err := e.Rename(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Your pet is now called %s.\n", out.Snapshot.Name)
				return nil
			})
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [activity.csv]",
		Short: "Import today's activity and sleep",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, env *env) error {
				path := env.cfg.Activity.CSV
				if len(args) == 1 {
					path = args[0]
				}
				if path == "" {
					return fmt.Errorf("no activity log given. Pass a CSV path or set activity.csv")
				}
				out, err := syncActivity(cmd.Context(), e, env, path)
				if errors.Is(err, activity.ErrAuthorizationDenied) {
					fmt.Fprintf(cmd.OutOrStdout(), "Can't read %s; nothing synced.\n", path)
					return nil
				}
				if err != nil {
					return err
				}
				printSync(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

// syncActivity fetches from the CSV log and ingests through the daily
// watermark kept next to the pet.
func syncActivity(ctx context.Context, e *engine.Engine, env *env, path string) (engine.Outcome, error) {
	wmPath := filepath.Join(env.dataDir, activity.WatermarkFileName)
	wm, err := activity.LoadWatermark(wmPath)
	if err != nil {
		env.logger.Warn("resetting activity watermark", zap.Error(err))
		wm = activity.Watermark{}
	}

	fetcher := activity.NewFetcher(activity.NewCSVSource(path), env.cfg.Activity.SleepLookback, env.logger)

	// The watermark is persisted before ingesting; a failed write leaves the
	// pet untouched.
	var out engine.Outcome
	_, err = fetcher.Sync(ctx, &wm, func(r pet.Reading) error {
		if err := wm.Save(wmPath); err != nil {
			return err
		}
		out = e.IngestActivity(r)
		return nil
	})
	if err != nil {
		return engine.Outcome{}, err
	}
	return out, nil
}

func printSync(w io.Writer, out engine.Outcome) {
	s := out.Snapshot
	fmt.Fprintf(w, "Synced! +%s points (%s total).\n", humanize.Comma(int64(out.PointsAwarded)), humanize.Comma(int64(s.Points)))
	fmt.Fprintf(w, "Totals: running %s, swimming %s, cycling %s. Last sleep %.1fh.\n",
		humanize.SIWithDigits(s.Totals.Running, 1, "m"),
		humanize.SIWithDigits(s.Totals.Swimming, 1, "m"),
		humanize.SIWithDigits(s.Totals.Cycling, 1, "m"),
		s.Activity.LastSleepHours)
	if out.Evolved {
		fmt.Fprintf(w, "%s evolved from %s to %s!\n", s.Name, out.From, out.To)
	}
}

func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Start over with a fresh pet, keeping points, items and evolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				name := e.Snapshot().Name
				out := e.SoftReset()
				fmt.Fprintf(cmd.OutOrStdout(), "%s has passed on. Say hello to %s.\n", name, out.Snapshot.Name)
				return nil
			})
		},
	}
}

func newEraseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Erase points, items and evolution progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("this erases all progress. Re-run with --yes to confirm")
			}
			return executeStatefulCommand(cmd, func(e *engine.Engine, _ *env) error {
				out := e.HardReset()
				fmt.Fprintf(cmd.OutOrStdout(), "Progress erased. %s is an egg again with %d points.\n", out.Snapshot.Name, out.Snapshot.Points)
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm erasing progress")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep the pet on screen; stats decay while it runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, _ := cmd.Flags().GetDuration("for")
			return executeStatefulCommand(cmd, func(e *engine.Engine, env *env) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				if duration > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, duration)
					defer cancel()
				}

				w := cmd.OutOrStdout()
				e.Attach(art.NewRenderer(w, func() pet.Stage { return e.Snapshot().Stage }))

				if env.cfg.Activity.SyncOnStart && env.cfg.Activity.CSV != "" {
					out, err := syncActivity(ctx, e, env, env.cfg.Activity.CSV)
					switch {
					case err == nil:
						printSync(w, out)
					case errors.Is(err, activity.ErrAuthorizationDenied):
						env.logger.Info("activity sync skipped", zap.String("csv", env.cfg.Activity.CSV))
					default:
						env.logger.Warn("activity sync failed", zap.Error(err))
					}
				}

				ticker := engine.NewTicker(e, env.cfg.TickInterval, env.logger)
				ticker.Run(ctx)

				env.logger.Info("run finished", zap.Int64("ticks", ticker.Ticks()))
				fmt.Fprintf(w, "Bye for now! (%s ticks)\n", humanize.Comma(ticker.Ticks()))
				return nil
			})
		},
	}
	cmd.Flags().Duration("for", 0, "Stop after this long (default: until interrupted)")
	return cmd
}
