// Package main provides the CLI entry point for sheetview.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetview-go/pkg/sheetview"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/config"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/dsn"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/merge"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/numfmt"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/output"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/parser"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/source"
	"github.com/xuri/excelize/v2"
)

var (
	logLevel string

	// Document source
	dir    string
	docURL string
	token  string
	locale string

	// Render options
	mode         string
	byRef        bool
	asHTML       bool
	pretty       bool
	rootID       string
	ignoreStyles bool
	extraCSS     string
	noCalc       bool
	noFormat     bool
	outputPath   string

	port string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetview",
		Short: "Render spreadsheet regions addressed by data source names",
		Long: `sheetview resolves data source names such as "file:5|0!A1:D20" to a
region of a workbook and renders it as JSON or an HTML table with merge
spans and CSS style buckets.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(logLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "Log level: debug, info, warn, error")

	renderCmd := &cobra.Command{
		Use:   "render <dsn>",
		Short: "Render the region a data source name points to",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	addSourceFlags(renderCmd)
	renderCmd.Flags().StringVar(&mode, "mode", "", "Rows to render without a selection: head, body, all")
	renderCmd.Flags().BoolVar(&byRef, "by-ref", false, "Key rows by row number and cells by column name")
	renderCmd.Flags().BoolVar(&asHTML, "html", false, "Render an HTML table instead of JSON")
	renderCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	renderCmd.Flags().StringVar(&rootID, "root-id", "", "Element id the stylesheet is scoped under")
	renderCmd.Flags().BoolVar(&ignoreStyles, "ignore-styles", false, "Skip stylesheet generation")
	renderCmd.Flags().StringVar(&extraCSS, "css", "", "Extra CSS appended to the stylesheet")
	renderCmd.Flags().BoolVar(&noCalc, "no-calc", false, "Show formulas instead of their results")
	renderCmd.Flags().BoolVar(&noFormat, "no-format", false, "Show raw numbers without number formats")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	dsnCmd := &cobra.Command{
		Use:   "dsn <dsn>",
		Short: "Print the canonical form of a data source name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := dsn.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc.String())
			return nil
		},
	}

	cssCmd := &cobra.Command{
		Use:   "css <input.xlsx>",
		Short: "Print the stylesheet of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runCSS,
	}
	cssCmd.Flags().StringVar(&rootID, "root-id", "", "Element id the stylesheet is scoped under")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered regions over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addSourceFlags(serveCmd)
	serveCmd.Flags().StringVar(&port, "port", "", "Listen port (default: SHEETVIEW_PORT or 8080)")

	rootCmd.AddCommand(renderCmd, dsnCmd, cssCmd, serveCmd)
	return rootCmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding <id>.xlsx documents")
	cmd.Flags().StringVar(&docURL, "url", "", "Document server base URL")
	cmd.Flags().StringVar(&token, "token", "", "Document server API token")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale for number formatting (BCP 47)")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadConfig reads the environment and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir = dir
	}
	if flags.Changed("url") {
		cfg.URL = docURL
	}
	if flags.Changed("token") {
		cfg.Token = token
	}
	if flags.Changed("locale") {
		cfg.Render.Locale = locale
	}
	if flags.Changed("mode") {
		cfg.Render.Mode = mode
	}
	if flags.Changed("root-id") {
		cfg.Render.RootID = rootID
	}
	if flags.Changed("css") {
		cfg.Render.AdditionalCSS = extraCSS
	}
	if flags.Changed("by-ref") {
		cfg.Render.ByRef = byRef
	}
	if flags.Changed("ignore-styles") {
		cfg.Render.IgnoreStyles = ignoreStyles
	}
	if flags.Changed("no-calc") {
		calc := !noCalc
		cfg.Render.Calculate = &calc
	}
	if flags.Changed("no-format") {
		format := !noFormat
		cfg.Render.Format = &format
	}
	if flags.Changed("port") {
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRenderer wires the document store, merge cache and formatter.
func newRenderer(cfg *config.Config) (*sheetview.Renderer, *source.Store, error) {
	tag, err := numfmt.ParseLocale(cfg.Render.Locale)
	if err != nil {
		return nil, nil, err
	}

	var resolver source.Resolver
	if cfg.URL != "" {
		resolver = source.NewHTTPResolver(cfg.URL, cfg.Token, cfg.Timeout)
	} else {
		d := source.NewDirResolver(cfg.Dir)
		d.Pattern = cfg.Pattern
		resolver = d
	}
	store := source.NewStore(resolver, cfg.Capacity)

	fm := numfmt.New(tag)
	fm.Logger = slog.Default()
	ex := parser.NewExtractor(merge.NewIndexer(merge.NewMemoryCache()), fm)
	ex.Logger = slog.Default()

	r := sheetview.NewRenderer(store, ex)
	r.Logger = slog.Default()
	return r, store, nil
}

func renderOptions(cfg *config.Config) (sheetview.Options, error) {
	m, err := sheetview.ParseMode(cfg.Render.Mode)
	if err != nil {
		return sheetview.Options{}, err
	}
	return sheetview.Options{
		Mode:          m,
		ByRef:         cfg.Render.ByRef,
		IgnoreStyles:  cfg.Render.IgnoreStyles,
		AdditionalCSS: cfg.Render.AdditionalCSS,
		RootID:        cfg.Render.RootID,
		Calculate:     cfg.Render.Calculate,
		Format:        cfg.Render.Format,
	}, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	opts, err := renderOptions(cfg)
	if err != nil {
		return err
	}
	r, store, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := r.Render(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	var data []byte
	if asHTML {
		data, err = output.HTML(result, opts.RootID)
	} else {
		data, err = output.ToJSON(result, pretty)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runCSS(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	css, err := sheetview.Stylesheet(f, rootID, "")
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), css)
	return nil
}
