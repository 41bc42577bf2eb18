// Package cli provides shared plumbing for the speechkit command-line
// tool: context-based configuration, output formatting and request file
// loading.
//
// Configuration is stored in ~/.speechkit/config.yaml and supports
// multiple named contexts, similar to kubectl. A context bundles the
// material for one cloud folder: the SpeechKit credentials, the folder
// ID and optional object storage settings used for long-audio staging.
//
//	cfg, err := cli.LoadConfig()
//	ctx, err := cfg.GetCurrentContext()
//
//	cli.Output(result, cli.OutputOptions{Format: cli.FormatJSON})
package cli
