package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thiremani/cvxsym/canon"
)

type rootFlags struct {
	verbose bool

	params  string
	stage   string
	format  string
	solver  string
	noCache bool
}

func newLogger(w *os.File, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "cvxsym",
		Short:         "Canonicalize convex optimization problems into conic form",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log every rewrite stage")

	compile := &cobra.Command{
		Use:   "compile FILE...",
		Short: "Compile .cvx problems to c, A, b, G, h and cone dimensions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, flags, args)
		},
	}
	compile.Flags().StringVarP(&flags.params, "params", "p", "", "YAML file of parameter values")
	compile.Flags().StringVar(&flags.stage, "stage", "canon", "stop after stage: smith, relax, graph or canon")
	compile.Flags().StringVarP(&flags.format, "format", "f", formatText, "output format: text or json")
	compile.Flags().StringVar(&flags.solver, "solver", "", "registered solver to run on the numeric matrices")
	compile.Flags().BoolVar(&flags.noCache, "no-cache", false, "always recompile, ignoring the result cache")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}

	root.AddCommand(compile, version)
	return root
}

func runCompile(cmd *cobra.Command, flags *rootFlags, files []string) error {
	logger := newLogger(os.Stderr, flags.verbose)

	stage, err := canon.ParseStage(flags.stage)
	if err != nil {
		return err
	}
	if flags.format != formatText && flags.format != formatJSON {
		return fmt.Errorf("unknown format %q", flags.format)
	}
	opts := compileOptions{stage: stage, format: flags.format, solver: flags.solver}
	if flags.params != "" {
		if opts.params, err = os.ReadFile(flags.params); err != nil {
			return fmt.Errorf("read params: %w", err)
		}
	}

	var cache *resultCache
	if !flags.noCache {
		cache = &resultCache{dir: defaultCacheDir(), logger: logger}
		logger.Debug("using cache", "dir", cache.dir)
	}

	outputs := make([][]byte, len(files))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		fileOpts := opts
		fileOpts.logger = logger.With("file", file)
		g.Go(func() error {
			out, err := compileFile(gctx, file, fileOpts, cache)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, out := range outputs {
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
