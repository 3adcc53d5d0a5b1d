// Package main is the entry point for the voicekit CLI.
//
// Usage:
//
//	voicekit [flags] <command> [args]
//
// Commands:
//
//	enroll     - Add enrollment samples for an owner
//	samples    - List enrolled samples
//	identify   - Identify the speaker in an audio file
//	config     - Show the active configuration
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/voicekit/cmd/voicekit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
