package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vocalhq/speechkit/pkg/cli"
	"github.com/vocalhq/speechkit/pkg/speechkit"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Synthesize speech from text",
	Long: `Synthesize speech from text or SSML.

Pass text with --text, or a full request file with -f:

  text: Привет, мир
  voice: alena
  speed: 1.1
  format: oggopus

The audio is written to the file given with -o.

Example:
  speechkit synthesize --text "hello world" -o hello.ogg
  speechkit synthesize -f request.yaml -o out.ogg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		text, _ := cmd.Flags().GetString("text")
		voice, _ := cmd.Flags().GetString("voice")
		speed, _ := cmd.Flags().GetFloat64("speed")
		format, _ := cmd.Flags().GetString("format")
		rate, _ := cmd.Flags().GetInt("rate")
		lang, _ := cmd.Flags().GetString("lang")

		var req speechkit.SynthesisRequest
		switch {
		case inputFile != "":
			if err := cli.LoadRequest(inputFile, &req); err != nil {
				return err
			}
		case text != "":
			req.Text = text
		default:
			return fmt.Errorf("pass --text or a request file with -f")
		}

		if voice != "" {
			req.Voice = voice
		}
		if req.Voice == "" {
			req.Voice = cliCtx.DefaultVoice
		}
		if speed != 0 {
			req.Speed = speed
		}
		if format != "" {
			req.Format = format
		}
		if rate != 0 {
			req.SampleRateHertz = speechkit.SampleRate(rate)
		}
		if lang != "" {
			req.Lang = speechkit.Language(lang)
		}

		if outputFile == "" {
			return fmt.Errorf("synthesis writes binary audio, pass -o")
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		client, err := createClient(reqCtx, cliCtx)
		if err != nil {
			return err
		}

		audio, err := client.TTS.Synthesize(reqCtx, &req)
		if err != nil {
			return err
		}

		if err := cli.OutputBytes(audio, outputFile); err != nil {
			return err
		}
		cli.PrintSuccess("wrote %s (%s)", outputFile, cli.FormatBytes(int64(len(audio))))
		return nil
	},
}

func init() {
	flags := synthesizeCmd.Flags()
	flags.String("text", "", "text to synthesize")
	flags.String("voice", "", "voice name (overrides context default)")
	flags.Float64("speed", 0, "speech rate, 0.1 to 3.0")
	flags.String("format", "", "audio format (lpcm, oggopus)")
	flags.Int("rate", 0, "sample rate in hertz for lpcm output")
	flags.String("lang", "", "synthesis language")
}
