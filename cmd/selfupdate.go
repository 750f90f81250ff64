package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the owner/repo releases are published to. Release
// builds set it with -ldflags "-X svcseq/cmd.githubRepoSlug=owner/repo".
var githubRepoSlug = ""

// release is the newest published version as seen from the running one.
type release struct {
	Version string
	// Newer is false when the running version is the same or later.
	Newer bool

	asset *selfupdate.Release
}

// updater finds and installs releases.
type updater interface {
	DetectLatest(ctx context.Context, current string) (release, bool, error)
	Apply(ctx context.Context, r release) error
}

// githubUpdater reads releases of one GitHub repository.
type githubUpdater struct {
	slug string
}

func (g githubUpdater) DetectLatest(ctx context.Context, current string) (release, bool, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(g.slug))
	if err != nil || !found {
		return release{}, found, err
	}
	return release{
		Version: latest.Version(),
		Newer:   !latest.LessOrEqual(current),
		asset:   latest,
	}, true, nil
}

func (g githubUpdater) Apply(ctx context.Context, r release) error {
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	return selfupdate.UpdateTo(ctx, r.asset.AssetURL, r.asset.AssetName, exe)
}

// newUpdater is replaced in tests.
var newUpdater = func(slug string) updater {
	return githubUpdater{slug: slug}
}

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update svcseq to the latest version",
		Long: `Checks for the latest release of svcseq on GitHub and
replaces the running binary with it when it is newer.

The release repository is fixed at build time. Development builds and
builds without a release repository cannot self-update.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}
	if githubRepoSlug == "" {
		return fmt.Errorf("no release repository configured for this build")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	u := newUpdater(githubRepoSlug)
	latest, found, err := u.DetectLatest(ctx, currentVersion)
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s/%s could not be found from github repository %s", runtime.GOOS, runtime.GOARCH, githubRepoSlug)
	}

	if !latest.Newer {
		fmt.Fprintf(out, "Current version (%s) is the latest\n", currentVersion)
		return nil
	}

	if err := u.Apply(ctx, latest); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version)
	return nil
}
