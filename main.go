package main

import (
	// Lambda images ship without a zoneinfo database.
	_ "time/tzdata"

	"github.com/teemow/inboxdigest/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Set the version from build-time variable
	cmd.SetVersion(version)

	// Execute the root command
	cmd.Execute()
}
