// Package main provides the speechkit CLI tool.
//
// Usage:
//
//	speechkit [flags] <command> [args]
//
// Commands:
//
//	recognize  - Short-audio speech recognition
//	transcribe - Long-audio asynchronous recognition
//	stream     - Streaming speech recognition
//	synthesize - Text-to-speech synthesis
//	iam        - Credential management (tokens, keys, accounts)
//	config     - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.speechkit/config.yaml.
//	Use 'speechkit config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/vocalhq/speechkit/cmd/speechkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
