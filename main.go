package main

import "svcseq/cmd"

// version is set at build time with -ldflags "-X main.version=...". The
// release repository for self-update is set the same way through
// svcseq/cmd.githubRepoSlug.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
