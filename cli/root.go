package cli

import (
	"context"
	"errors"
	"fmt"
	"mindmap-share/config"
	"mindmap-share/core"
	"mindmap-share/stores"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitNotFound = 2 // show: unknown token
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the mindmap command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "mindmap",
		Short:         "Mind-map share service",
		Long:          "Create mind-maps in the browser and share them read-only through a random link.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// openStore loads the configuration and returns an initialized store.
func openStore(ctx context.Context, opts *RootOptions) (*config.Config, *logrus.Logger, core.DocumentStore, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitFailure, "failed to load config", err)
	}
	log := config.NewLogger(cfg.Log)

	store, err := stores.GetStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitFailure, "failed to create store", err)
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, nil, nil, WrapExitError(ExitFailure, "failed to initialize storage", err)
	}
	return cfg, log, store, nil
}
