// ProfilePack: box and pallet planner for cut linear profiles.
//
// Build:
//   go build -o profilepack ./cmd/profilepack
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o profilepack.exe ./cmd/profilepack
//   GOOS=darwin  GOARCH=arm64 go build -o profilepack-darwin ./cmd/profilepack

package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/piwi3910/ProfilePack/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file next to the binary may carry PROFILEPACK_* overrides; it is optional.
	_ = godotenv.Load()

	os.Exit(cli.Execute(version))
}
