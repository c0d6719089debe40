package app

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/chadcn/registry-catalog/internal/theme"
)

// settingsFile is the preference file under the XDG config home
const settingsFile = "chadcn/settings.json"

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Read or change the stored theme preference",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	cmd.PersistentFlags().String("file", "", "Preference file (default $XDG_CONFIG_HOME/"+settingsFile+")")

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the stored preference and the theme it resolves to",
		Args:  cobra.NoArgs,
		RunE:  runThemeGet,
	}
	setCmd := &cobra.Command{
		Use:       "set light|dark|system",
		Short:     "Store a new preference",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.Light), string(theme.Dark), string(theme.System)},
		RunE:      runThemeSet,
	}
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the terminal background and print the resolved theme on change",
		Args:  cobra.NoArgs,
		RunE:  runThemeWatch,
	}
	watchCmd.Flags().Duration("interval", theme.DefaultPollInterval, "How often to probe the terminal background")

	cmd.AddCommand(getCmd, setCmd, watchCmd)
	return cmd
}

func themeService(cmd *cobra.Command) (*theme.Service, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path, err = xdg.ConfigFile(settingsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to locate settings file: %w", err)
		}
	}

	svc := theme.NewService(theme.NewFileStore(path))
	if _, err := svc.Init(cmd.Context()); err != nil {
		return nil, err
	}
	return svc, nil
}

func runThemeGet(cmd *cobra.Command, _ []string) error {
	svc, err := themeService(cmd)
	if err != nil {
		return err
	}
	terminal := theme.TerminalScheme(theme.DefaultPollInterval)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", svc.Get(), svc.Effective(terminal))
	return err
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	svc, err := themeService(cmd)
	if err != nil {
		return err
	}
	t, err := theme.Parse(args[0])
	if err != nil {
		return err
	}
	if err := svc.Set(cmd.Context(), t); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", t)
	return err
}

func runThemeWatch(cmd *cobra.Command, _ []string) error {
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return err
	}
	svc, err := themeService(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	classes := theme.NewClasses()
	terminal := theme.TerminalScheme(interval)

	last := svc.Apply(classes, terminal).String()
	_, _ = fmt.Fprintln(out, last)

	detach := svc.WatchScheme(&notifyingWatcher{SchemeWatcher: terminal, after: func() {
		if current := classes.String(); current != last {
			last = current
			_, _ = fmt.Fprintln(out, current)
		}
	}}, classes)
	defer detach()

	<-ctx.Done()
	return nil
}

// notifyingWatcher calls after once the service has handled a scheme change.
type notifyingWatcher struct {
	theme.SchemeWatcher
	after func()
}

func (n *notifyingWatcher) Watch(fn func(dark bool)) (stop func()) {
	return n.SchemeWatcher.Watch(func(dark bool) {
		fn(dark)
		n.after()
	})
}
