package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/sbu/pkg/archive"
	"github.com/walteh/sbu/pkg/backuplist"
	"github.com/walteh/sbu/pkg/config"
	"github.com/walteh/sbu/pkg/log"
	"github.com/walteh/sbu/pkg/operation"
	"github.com/walteh/sbu/pkg/pathset"
	"github.com/walteh/sbu/pkg/status"
	"gitlab.com/tozd/go/errors"
)

type rootFlags struct {
	configFile   string
	pretend      bool
	compress     string
	force        bool
	interactive  bool
	quiet        bool
	verbose      bool
	debug        bool
	abortOnError bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "sbu <backup-list> <destination>",
		Short: "Back up files and directories listed in a backup list",
		Long: `sbu reads a list of paths from a text file, reduces it to the minimal
covering set, and copies it into the destination directory, merging into
directories a previous backup already created. With --compress the result
is packed into a single archive instead.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "settings file (.hcl, .yaml or .json)")
	cmd.Flags().BoolVarP(&flags.pretend, "pretend", "p", false, "show what would be copied without copying anything")
	cmd.Flags().StringVarP(&flags.compress, "compress", "c", "", "pack the backup into an archive ("+joinAlgorithms()+")")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite existing files")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "ask before overwriting a file")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "do not show warnings")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "show more information")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "show debug output")
	cmd.Flags().BoolVar(&flags.abortOnError, "abort-on-error", false, "abort the run on the first per-file copy failure")
	cmd.MarkFlagsMutuallyExclusive("force", "interactive")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose", "debug")

	return cmd
}

func joinAlgorithms() string {
	out := ""
	for i, a := range archive.Algorithms() {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

func run(ctx context.Context, flags *rootFlags, listPath, destArg string) error {
	// Settings file first; every flag below overrides it.
	var cfg *config.Config
	var err error
	if flags.configFile != "" {
		cfg, err = config.Load(ctx, flags.configFile)
	} else {
		cfg, err = config.Discover(ctx)
	}
	if err != nil {
		return errors.Errorf("loading settings: %w", err)
	}

	level := logLevel(flags, cfg)
	zerolog.SetGlobalLevel(level)
	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	ctx = zlog.WithContext(ctx)

	userLogger := log.New(os.Stdout, level)
	ctx = log.NewContext(ctx, userLogger)

	pretend := flags.pretend || cfg.Pretend
	abortOnError := flags.abortOnError || cfg.AbortOnError
	mode := conflictMode(flags, cfg)
	compress := flags.compress
	if compress == "" {
		compress = cfg.Compress
	}

	paths, err := backuplist.Parse(ctx, listPath)
	if err != nil {
		return err
	}

	// In archive mode the destination may name the archive file itself;
	// the directory the pipeline guards against is then its parent.
	destDir := destArg
	if compress != "" {
		if fi, err := os.Stat(destArg); err != nil || !fi.IsDir() {
			destDir = filepath.Dir(destArg)
		}
	}
	dest, err := operation.ResolveDestination(destDir)
	if err != nil {
		return err
	}

	filtered := pathset.Filter(ctx, paths, dest)
	minimized, err := pathset.Minimize(ctx, filtered)
	if err != nil {
		return errors.Errorf("minimizing paths: %w", err)
	}

	tracker := status.NewTracker()
	opts := operation.Options{
		Sources:      minimized,
		Destination:  dest,
		Mode:         mode,
		Pretend:      pretend,
		AbortOnError: abortOnError,
		Confirmer:    operation.NewPromptConfirmer(),
		Tracker:      tracker,
		Logger:       userLogger,
	}

	var op operation.Operation
	if compress != "" {
		algo, err := archive.ParseAlgorithm(compress)
		if err != nil {
			return err
		}
		absDest, err := filepath.Abs(destArg)
		if err != nil {
			return errors.Errorf("making destination absolute: %w", err)
		}
		target, err := archive.ResolveTarget(absDest, algo)
		if err != nil {
			return err
		}
		userLogger.Header(target)
		op, err = operation.NewArchiveOperation(opts, algo, target)
		if err != nil {
			return err
		}
	} else {
		userLogger.Header(dest)
		op, err = operation.NewCopyOperation(opts)
		if err != nil {
			return err
		}
	}

	runErr := operation.NewRunner().Run(ctx, op)
	userLogger.Summary(tracker.Summarize())
	return runErr
}

func conflictMode(flags *rootFlags, cfg *config.Config) operation.ConflictMode {
	switch {
	case flags.force:
		return operation.Overwrite
	case flags.interactive:
		return operation.Ask
	}
	switch cfg.Conflict {
	case "overwrite":
		return operation.Overwrite
	case "ask":
		return operation.Ask
	default:
		return operation.NoOverwrite
	}
}

func logLevel(flags *rootFlags, cfg *config.Config) zerolog.Level {
	switch {
	case flags.quiet:
		return zerolog.ErrorLevel
	case flags.verbose:
		return zerolog.InfoLevel
	case flags.debug:
		return zerolog.DebugLevel
	}
	switch cfg.Verbosity {
	case "quiet":
		return zerolog.ErrorLevel
	case "verbose":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	default:
		return zerolog.WarnLevel
	}
}
