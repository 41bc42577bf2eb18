package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vocalhq/speechkit/pkg/speechkit"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Short-audio speech recognition",
	Long: `Recognize speech in a short audio fragment.

Accepts OggOpus (default) or headerless LPCM audio up to 1 MB.
LPCM is additionally limited to 30 seconds.

Example:
  speechkit recognize -f clip.ogg
  speechkit recognize -f clip.pcm --format lpcm --rate 16000 --lang en-US`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}

		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		audio, err := readAudioFile(inputFile)
		if err != nil {
			return err
		}

		lang, _ := cmd.Flags().GetString("lang")
		topic, _ := cmd.Flags().GetString("topic")
		format, _ := cmd.Flags().GetString("format")
		rate, _ := cmd.Flags().GetInt("rate")
		profanity, _ := cmd.Flags().GetBool("profanity-filter")

		reqCtx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		client, err := createClient(reqCtx, cliCtx)
		if err != nil {
			return err
		}

		text, err := client.STT.Recognize(reqCtx, audio, &speechkit.RecognizeOptions{
			Lang:            speechkit.Language(lang),
			Topic:           topic,
			ProfanityFilter: profanity,
			Format:          format,
			SampleRateHertz: speechkit.SampleRate(rate),
		})
		if err != nil {
			return err
		}

		if outputJSON || outputFile != "" {
			return outputResult(map[string]string{"text": text})
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	flags := recognizeCmd.Flags()
	flags.String("lang", "", "recognition language (ru-RU, en-US, tr-TR)")
	flags.String("topic", "", "language model topic")
	flags.String("format", "", "audio format: oggopus or lpcm")
	flags.Int("rate", 0, "sample rate in hertz for lpcm (8000, 16000, 48000)")
	flags.Bool("profanity-filter", false, "mask profanity in results")
}
