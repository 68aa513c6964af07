package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blcs-lang/blcspp/internal/bclog"
	"github.com/blcs-lang/blcspp/internal/walk"
	"github.com/blcs-lang/blcspp/internal/watch"
	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
	"github.com/blcs-lang/blcspp/pkg/blcs/orchestrate"
	"github.com/blcs-lang/blcspp/pkg/blcspp"
)

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var directory, watchMode, cliMode, quiet, outputEmpty bool

	cmd := &cobra.Command{
		Use:           "blcspp PATH",
		Short:         "Preprocess BLCS source into plain scripting-language output",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !watchMode && !cliMode {
				return fmt.Errorf("one of -w/--watch or -X/--cli is required")
			}

			logger := bclog.New(quiet)
			opts := blcspp.Options{OutputEmpty: outputEmpty}
			path := args[0]

			if watchMode {
				return runWatch(cmd.Context(), path, directory, opts, logger)
			}
			return runOnce(path, directory, opts, logger)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.Flags()
	flags.BoolVarP(&directory, "directory", "d", false, "treat PATH as a directory of BLCS sources")
	flags.BoolVarP(&watchMode, "watch", "w", false, "watch PATH for changes and reprocess on each one")
	flags.BoolVarP(&cliMode, "cli", "X", false, "process PATH once and exit")
	flags.BoolVarP(&quiet, "quiet", "q", false, "emit structured JSON logs instead of text")
	flags.BoolVarP(&outputEmpty, "output-empty", "e", false, "write output files even when the processed body is empty")
	cmd.MarkFlagsMutuallyExclusive("watch", "cli")

	return cmd
}

func runOnce(path string, directory bool, opts blcspp.Options, logger *bclog.Logger) error {
	entries := []string{path}
	if directory {
		files, err := walk.Files(path)
		if err != nil {
			return err
		}
		entries = files
	}

	failed := false
	for _, entry := range entries {
		if err := processOne(entry, opts, logger); err != nil {
			logger.Job(entry).WithError(err).WithField("class", blcserr.Class(err)).Error("preprocessing failed")
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more files failed to preprocess")
	}
	return nil
}

func runWatch(ctx context.Context, path string, directory bool, opts blcspp.Options, logger *bclog.Logger) error {
	root := path
	if !directory {
		root = filepath.Dir(path)
	}

	w, err := watch.New(root)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runOnce(path, directory, opts, logger); err != nil {
		logger.WithError(err).Warn("initial pass reported failures")
	}

	absPath, _ := filepath.Abs(path)

	return w.Run(ctx, func(ev watch.Event) {
		if filepath.Ext(ev.Path) != orchestrate.Extension {
			return
		}
		if !directory {
			if absEv, err := filepath.Abs(ev.Path); err != nil || absEv != absPath {
				return
			}
		}
		if err := processOne(ev.Path, opts, logger); err != nil {
			logger.Job(ev.Path).WithError(err).WithField("class", blcserr.Class(err)).Error("preprocessing failed")
		}
	})
}

func processOne(entry string, opts blcspp.Options, logger *bclog.Logger) error {
	results, err := blcspp.PreprocessFile(entry, opts)
	if err != nil {
		return err
	}
	for _, result := range results {
		if result.Empty && !opts.OutputEmpty {
			logger.Job(entry).WithField("output", result.Path).Info("empty output suppressed")
			continue
		}
		if err := os.WriteFile(result.Path, []byte(result.Text), 0o644); err != nil {
			return err
		}
		logger.Job(entry).WithField("output", result.Path).Info("wrote output")
	}
	return nil
}
