// helmdd downloads benchmark run data from the public HELM archive.
package main

import (
	"os"

	"github.com/helm-tools/helmdd/internal/cli"
)

// Version information, overridden via LDFLAGS for release builds:
//
//	go build -ldflags "-X main.Version=... -X main.BuildTime=..." ./cmd/helmdd
var (
	Version   = "v1.0.0"
	BuildTime = "2026-08-26"
)

func main() {
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
