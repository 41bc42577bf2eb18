package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vocalhq/speechkit/pkg/cli"
	"github.com/vocalhq/speechkit/pkg/speechkit"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Long-audio asynchronous recognition",
	Long: `Transcribe a long audio file.

The audio is staged in object storage, submitted as an asynchronous
recognition job and polled until done. The staged object is removed
once the job completes. Recognizing one minute of single-channel audio
takes the service roughly ten seconds.

The recognition specification can be supplied as a YAML/JSON file:

  # spec.yaml
  language_code: ru-RU
  audio_encoding: LINEAR16_PCM
  sample_rate_hertz: 48000
  audio_channel_count: 1

Example:
  speechkit transcribe -f meeting.ogg
  speechkit transcribe -f meeting.pcm --spec spec.yaml --interval 10s --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}

		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		var spec speechkit.RecognitionSpec
		if specFile, _ := cmd.Flags().GetString("spec"); specFile != "" {
			if err := cli.LoadRequest(specFile, &spec); err != nil {
				return err
			}
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		reqCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		client, err := createClient(reqCtx, cliCtx)
		if err != nil {
			return err
		}
		stager, err := createStager(reqCtx, cliCtx)
		if err != nil {
			return err
		}

		job := client.STT.NewLongAudioJob(stager, spec)

		start := time.Now()
		if err := job.Submit(reqCtx, inputFile); err != nil {
			return err
		}
		printVerbose("job %s submitted", job.ID())

		for {
			done, err := job.Poll(reqCtx)
			if err != nil {
				return err
			}
			if done {
				break
			}
			printVerbose("not done yet, waiting %s (elapsed %s)",
				interval, cli.FormatDuration(time.Since(start).Seconds()))

			select {
			case <-reqCtx.Done():
				return fmt.Errorf("gave up after %s, job %s may still finish server-side", timeout, job.ID())
			case <-time.After(interval):
			}
		}
		printVerbose("done in %s", cli.FormatDuration(time.Since(start).Seconds()))

		if outputJSON {
			chunks, err := job.Results()
			if err != nil {
				return err
			}
			return outputResult(map[string]any{"chunks": chunks})
		}

		text, err := job.RawText()
		if err != nil {
			return err
		}
		if outputFile != "" {
			return cli.Output(text, cli.OutputOptions{Format: cli.FormatRaw, File: outputFile})
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	flags := transcribeCmd.Flags()
	flags.String("spec", "", "recognition specification file (YAML or JSON)")
	flags.Duration("interval", 5*time.Second, "poll interval")
	flags.Duration("timeout", 4*time.Hour, "overall deadline")
}
