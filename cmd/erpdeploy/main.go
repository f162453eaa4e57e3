// Package main is the entry point for the erpdeploy CLI.
//
// erpdeploy provisions a single host to run Odoo with Postgres under docker
// compose behind nginx, with a Let's Encrypt certificate and a ufw firewall.
// Every run converges the host to the configured state; steps that are
// already satisfied are skipped.
//
// Commands: init, plan, apply, render, version, completion.
//
// For detailed usage information, run:
//
//	erpdeploy --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/erpdeploy/cmd/erpdeploy/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
