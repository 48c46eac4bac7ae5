// Package cmd holds the build metadata the release pipeline stamps in
// at link time, for example:
//
//	go build -ldflags "-X github.com/protonpatch/protonpatch/cmd.Version=v1.2.3"
package cmd

// The defaults mark a from-source build.
var (
	// Version is the release tag, without a leading v.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
