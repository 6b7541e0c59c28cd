package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/quantmind-br/pdfremix/internal/app"
	"github.com/quantmind-br/pdfremix/internal/config"
	"github.com/quantmind-br/pdfremix/internal/remix"
	"github.com/quantmind-br/pdfremix/internal/tui"
	"github.com/quantmind-br/pdfremix/internal/utils"
	"github.com/quantmind-br/pdfremix/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Dependencies for testing
	pickStyle  = tui.PickStyle
	runTUI     = tui.Run
	runStepper = tui.RunRemix
	osStat     = os.Stat
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds state shared by every subcommand of one invocation
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "pdfremix",
		Short: "Remix public-domain PDFs with a style bundle",
		Long: `pdfremix sends a style bundle and the source PDFs its manifest names to a
PDF patch service and saves the restyled result.

A bundle is a zip archive with a manifest.yml listing the source PDFs
(file name, download URL, md5sum) and the available styles.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ~/.pdfremix/config.yaml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	flags.Bool("force", false, "Overwrite existing files")
	flags.String("endpoint", config.DefaultRemixEndpoint, "Remix service URL")
	flags.Duration("timeout", config.DefaultRemixTimeout, "Remix request timeout")
	flags.String("user-agent", "", "Custom User-Agent for source downloads")

	_ = c.v.BindPFlag("output.overwrite", flags.Lookup("force"))
	_ = c.v.BindPFlag("remix.endpoint", flags.Lookup("endpoint"))
	_ = c.v.BindPFlag("remix.timeout", flags.Lookup("timeout"))
	_ = c.v.BindPFlag("fetch.user_agent", flags.Lookup("user-agent"))

	rootCmd.AddCommand(
		c.remixCmd(),
		c.inspectCmd(),
		c.fetchCmd(),
		c.configCmd(),
		c.doctorCmd(),
		versionCmd(),
	)
	return rootCmd
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	}
	cfg, err := config.LoadFrom(c.v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// configPath is the file settings edits are saved to
func (c *cli) configPath() string {
	if path := c.v.ConfigFileUsed(); path != "" {
		return path
	}
	return config.ConfigFilePath()
}

func (c *cli) orchestrator(cmd *cobra.Command) (*app.Orchestrator, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: c.verbose,
	})

	o, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:  cfg,
		Verbose: c.verbose,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	return o, cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func (c *cli) remixCmd() *cobra.Command {
	var (
		styleSheet string
		accessible bool
	)

	cmd := &cobra.Command{
		Use:   "remix [BUNDLE PDF...]",
		Short: "Restyle source PDFs with a bundle",
		Long: `Submits the bundle, every source PDF its manifest requires, and the chosen
style sheet to the remix service, then saves the patched PDF.

Without --style an interactive picker lists the bundle's styles. Without
arguments a step-by-step session asks for the bundle, the source PDFs and
the style.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, cfg, err := c.orchestrator(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			force, _ := cmd.Flags().GetBool("force")
			if len(args) == 0 {
				return runStepper(tui.StepperOptions{
					Context: ctx,
					Session: o.NewSession(),
					Config:  cfg,
					SaveResult: func(result *remix.Result, current *config.Config) (string, error) {
						return o.SaveResult(result, current.Output.File, force || current.Output.Overwrite)
					},
					SaveConfig: func(updated *config.Config) error {
						return config.Save(updated, c.configPath())
					},
					Accessible: accessible,
				})
			}

			out, err := o.Remix(ctx, app.RemixOptions{
				BundlePath:  args[0],
				SourcePaths: args[1:],
				StyleSheet:  styleSheet,
				Output:      cfg.Output.File,
				Force:       force,
				PickStyle:   pickStyle,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&styleSheet, "style", "s", "", "Style sheet to apply (e.g. book.css)")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use accessible forms for screen readers")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile, "Output file")
	_ = c.v.BindPFlag("output.file", cmd.Flags().Lookup("output"))

	return cmd
}

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect BUNDLE [PDF...]",
		Short: "Show a bundle's sources and styles",
		Long: `Lists the source PDFs and styles a bundle's manifest declares. Given PDFs,
also reports which required files they provide and which are missing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := c.orchestrator(cmd)
			if err != nil {
				return err
			}

			report, err := o.Inspect(args[0], args[1:])
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report, len(args) > 1)
			return nil
		},
	}
}

func printReport(w io.Writer, report *app.Report, checked bool) {
	m := report.Bundle.Manifest

	fmt.Fprintf(w, "Sources (%d):\n", len(m.Sources))
	present := make(map[string]bool, len(report.Present))
	for _, name := range report.Present {
		present[name] = true
	}
	for _, src := range m.Sources {
		status := ""
		if checked {
			status = "  missing"
			if present[src.FileName] {
				status = "  present"
			}
		}
		fmt.Fprintf(w, "  %s%s\n    %s\n    md5sum %s\n", src.FileName, status, src.URL, src.MD5Sum)
	}

	fmt.Fprintf(w, "Styles (%d):\n", len(m.Styles))
	for _, style := range m.Styles {
		fmt.Fprintf(w, "  %s\n", app.Describe(style))
	}

	if len(report.Rejected) > 0 {
		names := make([]string, 0, len(report.Rejected))
		for name := range report.Rejected {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w, "Not required:")
		for _, name := range names {
			fmt.Fprintf(w, "  %v\n", report.Rejected[name])
		}
	}

	if checked {
		if len(report.Missing) == 0 {
			fmt.Fprintln(w, "All required files present")
		} else {
			fmt.Fprintf(w, "%d required file(s) missing\n", len(report.Missing))
		}
	}
}

func (c *cli) fetchCmd() *cobra.Command {
	var (
		dir     string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fetch BUNDLE",
		Short: "Download the source PDFs a bundle requires",
		Long: `Downloads every source PDF listed in the bundle's manifest, verifies its
md5sum, and writes it to the target directory under its manifest file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, _, err := c.orchestrator(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			force, _ := cmd.Flags().GetBool("force")
			paths, err := o.Fetch(ctx, app.FetchOptions{
				BundlePath: args[0],
				Dir:        dir,
				Force:      force,
				NoCache:    noCache,
			})
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", p)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the source PDFs to")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the download cache")

	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	var accessible bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Edit configuration interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			path := c.configPath()
			return runTUI(tui.Options{
				Config:     cfg,
				Accessible: accessible,
				SaveFunc: func(updated *config.Config) error {
					return config.Save(updated, path)
				},
			})
		},
	}

	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use accessible forms for screen readers")
	return cmd
}

func (c *cli) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and connectivity",
		Long:  "Verifies the configuration loads, the remix service is reachable, and output can be written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Checking pdfremix setup...")
			allPassed := true

			// Check 1: Config file
			fmt.Fprint(w, "  Config: ")
			cfg, err := c.loadConfig()
			if err != nil {
				fmt.Fprintf(w, "FAILED (%v)\n", err)
				cfg = config.Default()
				allPassed = false
			} else if used := c.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(w, "OK (%s)\n", used)
			} else {
				fmt.Fprintln(w, "OK (defaults)")
			}

			// Check 2: Remix service
			fmt.Fprintf(w, "  Remix service (%s): ", cfg.Remix.Endpoint)
			if checkEndpoint(cmd.Context(), cfg.Remix.Endpoint) {
				fmt.Fprintln(w, "OK")
			} else {
				fmt.Fprintln(w, "UNREACHABLE")
				allPassed = false
			}

			// Check 3: Write permissions for output
			fmt.Fprint(w, "  Write permissions: ")
			if checkWritePermissions(filepath.Dir(cfg.Output.File)) {
				fmt.Fprintln(w, "OK")
			} else {
				fmt.Fprintln(w, "FAILED")
				allPassed = false
			}

			// Check 4: Cache directory
			fmt.Fprint(w, "  Cache directory: ")
			if checkCacheDir(cfg.Cache.Directory) {
				fmt.Fprintf(w, "OK (%s)\n", cfg.Cache.Directory)
			} else {
				fmt.Fprintln(w, "WARN (will be created on first use)")
			}

			fmt.Fprintln(w)
			if allPassed {
				fmt.Fprintln(w, "All critical checks passed!")
			} else {
				fmt.Fprintln(w, "Some checks failed. Please resolve the issues above.")
			}
			return nil
		},
	}
}

// checkEndpoint reports whether the remix service is up. The service only
// accepts POST, so 4xx replies to the HEAD probe count as reachable; 5xx
// replies and transport errors do not.
func checkEndpoint(ctx context.Context, endpoint string) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// checkWritePermissions checks if we can write to dir
func checkWritePermissions(dir string) bool {
	f, err := os.CreateTemp(dir, ".pdfremix_test_write")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// checkCacheDir checks if the cache directory exists
func checkCacheDir(path string) bool {
	info, err := osStat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
