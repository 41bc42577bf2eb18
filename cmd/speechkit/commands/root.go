package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vocalhq/speechkit/pkg/cli"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	outputJSON  bool
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "speechkit",
	Short: "Yandex SpeechKit CLI tool",
	Long: `speechkit - A command line interface for the Yandex SpeechKit speech APIs.

This tool lets you interact with the speech services:
  - recognize:  short-audio recognition (up to 1 MB / 30 s)
  - transcribe: long-audio asynchronous recognition via object storage
  - stream:     live streaming recognition over WebSocket
  - synthesize: text-to-speech synthesis
  - iam:        IAM tokens, Api-Keys and AWS-compatible storage keys

Configuration is stored in ~/.speechkit/config.yaml and supports
multiple contexts, similar to kubectl's context management.

Examples:
  # Set up a context with an Api-Key
  speechkit config add-context myctx --api-key YOUR_KEY --folder-id YOUR_FOLDER

  # Recognize a short clip
  speechkit -c myctx recognize -f clip.ogg

  # Transcribe an hour-long recording
  speechkit -c myctx transcribe -f meeting.ogg --interval 10s

  # Synthesize speech
  speechkit -c myctx synthesize --text "привет мир" -o hello.ogg
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.speechkit/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input file (audio, or YAML/JSON request)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(recognizeCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(synthesizeCmd)
	rootCmd.AddCommand(iamCmd)
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getContext returns the context configuration to use
func getContext() (*cli.Context, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	ctx, err := globalConfig.ResolveContext(contextName)
	if err != nil {
		if contextName == "" {
			return nil, fmt.Errorf("no context specified. Use -c flag or set a default context with 'speechkit config use-context'")
		}
		return nil, err
	}

	return ctx, nil
}

// requireInputFile checks if input file is specified
func requireInputFile() error {
	if inputFile == "" {
		return fmt.Errorf("input file is required, use -f flag")
	}
	return nil
}

// outputResult outputs the result using the cli package
func outputResult(result any) error {
	format := cli.FormatYAML
	if outputJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputFile,
	})
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
