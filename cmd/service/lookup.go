// cmd/service/lookup.go
package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github-profile-finder/internal/github"
	"github-profile-finder/internal/model"
	"github-profile-finder/internal/query"
	"github-profile-finder/internal/view"
)

// errLookupFailed makes the process exit non-zero after the error view was printed.
var errLookupFailed = errors.New("lookup failed")

var lookupCmd = &cobra.Command{
	Use:   "lookup <username>",
	Short: "Look up one profile and print it",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ghClient, err := github.NewClient(cfg.GithubAPIURL, nil, logger.With("component", "github"))
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	controller := query.NewController(ghClient, logger.With("component", "query"), nil, cfg.RequestTimeout)

	select {
	case <-controller.Submit(ctx, args[0]):
	case <-ctx.Done():
		return ctx.Err()
	}

	state := controller.State()
	if err := view.RenderText(cmd.OutOrStdout(), state); err != nil {
		return fmt.Errorf("failed to print profile: %w", err)
	}
	if state.Phase() == model.PhaseError {
		return errLookupFailed
	}
	return nil
}
