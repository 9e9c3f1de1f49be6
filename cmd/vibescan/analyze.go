package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/vibescan/app"
	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/service"
	"github.com/spf13/cobra"
)

// scanOptions holds the flags shared by analyze and check
type scanOptions struct {
	configPath     string
	format         string
	selectPatterns []string
	minSeverity    string
	exclude        []string
	outputPath     string
	noColor        bool
	noSnippets     bool
	noSuggestions  bool
	noProgress     bool
	followSymlinks bool
	verbose        bool
}

func (o *scanOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "",
		"Path to config file (default: discovered from the first path)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "text",
		"Output format: text, json, yaml, sarif")
	cmd.Flags().StringSliceVarP(&o.selectPatterns, "select", "s", nil,
		"Pattern types to detect (comma-separated, default: all enabled in config)")
	cmd.Flags().StringVar(&o.minSeverity, "min-severity", "",
		"Lowest severity to report: info, warning, critical")
	cmd.Flags().StringSliceVarP(&o.exclude, "exclude", "e", nil,
		"Additional gitignore-style exclude patterns")
	cmd.Flags().StringVarP(&o.outputPath, "output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false,
		"Disable colored output")
	cmd.Flags().BoolVar(&o.noSnippets, "no-snippets", false,
		"Hide code snippets in text output")
	cmd.Flags().BoolVar(&o.noSuggestions, "no-suggestions", false,
		"Hide suggestions in text output")
	cmd.Flags().BoolVar(&o.noProgress, "no-progress", false,
		"Disable the progress bar")
	cmd.Flags().BoolVar(&o.followSymlinks, "follow-symlinks", false,
		"Follow symbolic links to files")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false,
		"Enable debug logging on stderr")
}

func analyzeCmd() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Scan JavaScript/TypeScript files for AI code smells",
		Long: `Scan JavaScript/TypeScript files and report every detected pattern.

Examples:
  vibescan analyze src/
  vibescan analyze --select hardcoded_secret,unsafe_eval src/
  vibescan analyze --min-severity warning --format json src/
  vibescan analyze --format sarif -o vibescan.sarif .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runScan(cmd, opts, args)
			return err
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// runScan loads configuration, applies flag overrides, scans args and writes
// the report
func runScan(cmd *cobra.Command, opts *scanOptions, args []string) (*domain.PatternResponse, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no paths specified")
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	loader := service.NewConfigurationLoader()

	cfg, err := loader.LoadConfig(opts.configPath, args[0])
	if err != nil {
		return nil, err
	}
	if opts.configPath == "" {
		if found := loader.FindConfigFile(args[0]); found != "" {
			logger.Debug("using configuration file", "path", found)
		}
	} else {
		logger.Debug("using configuration file", "path", opts.configPath)
	}

	if cmd.Flags().Changed("format") {
		cfg.Output.Format = opts.format
	}
	cfg.Analysis.ExcludePatterns = append(cfg.Analysis.ExcludePatterns, opts.exclude...)
	if opts.followSymlinks {
		cfg.Analysis.FollowSymlinks = true
	}

	resolved, err := loader.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	var patternTypes []domain.PatternType
	if len(opts.selectPatterns) > 0 {
		patternTypes, err = service.ParsePatternTypes(opts.selectPatterns)
		if err != nil {
			return nil, domain.NewInvalidInputError("invalid --select", err)
		}
	}
	var minSeverity domain.Severity
	if opts.minSeverity != "" {
		minSeverity, err = domain.ParseSeverity(opts.minSeverity)
		if err != nil {
			return nil, domain.NewInvalidInputError("invalid --min-severity", err)
		}
	}

	format := domain.OutputFormat(cfg.Output.Format)
	writer, closeWriter, err := openOutput(cmd.OutOrStdout(), opts.outputPath)
	if err != nil {
		return nil, err
	}
	defer closeWriter()

	// Progress bars only make sense next to human-readable output
	showProgress := cfg.Performance.ShowProgress && !opts.noProgress && format == domain.OutputFormatText
	pm := service.NewProgressManager(showProgress)
	defer pm.Close()

	svc := service.NewPatternService(&cfg.Performance, pm, logger)
	useCase := app.NewAnalyzeUseCase(svc, service.NewOutputFormatter())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	response, err := useCase.Execute(ctx, app.AnalyzeConfig{
		Config:          resolved,
		PatternTypes:    patternTypes,
		MinSeverity:     minSeverity,
		OutputFormat:    format,
		OutputWriter:    writer,
		ShowSnippets:    cfg.Output.ShowSnippets && !opts.noSnippets,
		ShowSuggestions: cfg.Output.ShowSuggestions && !opts.noSuggestions,
		NoColor:         opts.noColor || !cfg.Output.Color || opts.outputPath != "",
		Recursive:       cfg.Analysis.Recursive,
		FollowSymlinks:  cfg.Analysis.FollowSymlinks,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	}, args)
	if err != nil {
		return nil, err
	}

	logger.Debug("scan finished",
		"files", response.Summary.TotalFiles,
		"patterns", response.Summary.TotalPatterns,
		"errors", len(response.Errors))

	if opts.outputPath != "" {
		displayPath := opts.outputPath
		if absPath, err := filepath.Abs(opts.outputPath); err == nil {
			displayPath = absPath
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", displayPath)
	}

	return response, nil
}

// openOutput returns the report destination: stdout or a created file
func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, nil, domain.NewOutputError(fmt.Sprintf("directory does not exist: %s", dir), err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, domain.NewOutputError("failed to create output file", err)
	}
	return file, func() { _ = file.Close() }, nil
}
