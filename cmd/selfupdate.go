package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"leakctl/pkg/logging"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const githubRepoSlug = "leakctl/leakctl"

// detectLatest looks up the newest release of slug. Replaced in tests.
var detectLatest = func(ctx context.Context, slug string) (*selfupdate.Release, bool, error) {
	return selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(slug))
}

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update leakctl to the latest release",
		Long: `Checks for the latest release of leakctl on GitHub and, when it is
newer than the running version, replaces the current binary with it.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	current := rootCmd.Version
	if current == "" || current == "dev" {
		return errors.New("cannot self-update a development version")
	}

	ctx := context.Background()
	var out io.Writer = os.Stdout
	if cmd != nil {
		out = cmd.OutOrStdout()
		if cmd.Context() != nil {
			ctx = cmd.Context()
		}
	}

	latest, found, err := detectLatest(ctx, githubRepoSlug)
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s could not be found", githubRepoSlug)
	}

	if latest.LessOrEqual(current) {
		fmt.Fprintf(out, "Current version (%s) is the latest\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	logging.Info("SelfUpdate", "Updating %s from %s to %s", exe, current, latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
