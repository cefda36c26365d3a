package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	baseURL  string
	token    string
	theme    string
	logLevel string
	mine     bool
}

type listOptions struct {
	search string
	tag    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "soundalt",
		Short:         "soundalt is a terminal sound board for a soundalt backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", defaultBaseURL, "backend base URL")
	flags.StringVar(&opts.token, "token", "", "auth token for the user listing")
	flags.StringVar(&opts.theme, "theme", "default", "color theme ("+strings.Join(themeNames(), ", ")+")")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.mine, "mine", false, "only list sounds uploaded by the token's owner")

	rootCmd.AddCommand(newListCmd(opts))
	return rootCmd
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the sounds matching a search and tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "case-insensitive title substring")
	cmd.Flags().StringVarP(&opts.tag, "tag", "t", "", "only sounds carrying this tag")
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup merges flags that were set explicitly over the environment and builds
// the logger.
func setup(cmd *cobra.Command, opts *rootOptions) (*Config, *zap.Logger, error) {
	cfg, envLoaded := LoadConfig()

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if flags.Changed("token") {
		cfg.Token = opts.token
	}
	if flags.Changed("theme") {
		cfg.ThemeName = opts.theme
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	if envLoaded {
		log.Debug("loaded .env file")
	}
	return cfg, log, nil
}

// catalogFetch picks the listing the board shows.
func catalogFetch(catalog *CatalogClient, mine bool) fetchFunc {
	if mine {
		return catalog.FetchUserSounds
	}
	return catalog.FetchSounds
}

func runBoard(cmd *cobra.Command, opts *rootOptions) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync()

	catalog, err := NewCatalogClient(cfg.BaseURL, cfg.Token, nil, log)
	if err != nil {
		return err
	}
	if opts.mine {
		// The board swallows fetch errors, so token problems are reported here.
		if cfg.Token == "" {
			return ErrTokenRequired
		}
		if err := checkToken(cfg.Token, time.Now()); err != nil {
			return err
		}
	}

	engine, err := NewMediaEngine(nil, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := newModel(ctx, cfg.Theme(), catalog.Host(), catalogFetch(catalog, opts.mine), engine, log)
	defer m.zones.Close()

	log.Info("starting board",
		zap.String("baseURL", cfg.BaseURL),
		zap.String("theme", cfg.ThemeName),
		zap.Bool("mine", opts.mine))

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

func runList(cmd *cobra.Command, root *rootOptions, opts *listOptions) error {
	cfg, log, err := setup(cmd, root)
	if err != nil {
		return err
	}
	defer log.Sync()

	catalog, err := NewCatalogClient(cfg.BaseURL, cfg.Token, nil, log)
	if err != nil {
		return err
	}
	items, err := catalogFetch(catalog, root.mine)(cmd.Context())
	if err != nil {
		return err
	}

	filter := NewFilterEngine()
	filter.SetItems(items)
	if opts.search != "" {
		filter.SetSearchText(opts.search)
	}
	if tag := strings.TrimSpace(opts.tag); tag != "" {
		filter.ToggleTag(tag)
	}
	printVisible(cmd.OutOrStdout(), filter, cfg.Theme().Styles())
	return nil
}

func printVisible(w io.Writer, filter *FilterEngine, styles ThemeStyles) {
	visible := filter.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(w, styles.Error.Render("No sounds match."))
		return
	}
	fmt.Fprintf(w, "%d of %d sounds:\n", len(visible), len(filter.Items()))
	for i, item := range visible {
		line := fmt.Sprintf("%d. %s", i+1, item.Title)
		if by := item.byline(); by != "" {
			line += " " + by
		}
		if len(item.Tags) > 0 {
			line += " [" + strings.Join(item.Tags, ", ") + "]"
		}
		fmt.Fprintln(w, line)
		fmt.Fprintln(w, "   "+item.URL)
	}
}
