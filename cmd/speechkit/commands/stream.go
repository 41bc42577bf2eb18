package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vocalhq/speechkit/pkg/audio/pcm"
	"github.com/vocalhq/speechkit/pkg/speechkit"
)

var (
	partialStyle = lipgloss.NewStyle().Faint(true)
	finalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	eouStyle     = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("12"))
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Streaming speech recognition",
	Long: `Stream an audio file through live recognition.

The file is cut into chunks and sent at the configured pace while
results are printed as they arrive: partial hypotheses dimmed, final
ones highlighted. With --realtime the pace matches the audio clock for
LPCM input, simulating a live microphone.

Example:
  speechkit stream -f speech.pcm --rate 16000
  speechkit stream -f speech.pcm --rate 16000 --realtime --partial`,
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
		rate, _ := cmd.Flags().GetInt("rate")
		partial, _ := cmd.Flags().GetBool("partial")
		single, _ := cmd.Flags().GetBool("single-utterance")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		realtime, _ := cmd.Flags().GetBool("realtime")

		reqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		client, err := createClient(reqCtx, cliCtx)
		if err != nil {
			return err
		}

		var pace time.Duration
		if realtime {
			format, ok := pcm.ForRate(rate)
			if !ok {
				return fmt.Errorf("--realtime needs a supported lpcm rate, got %d", rate)
			}
			pace = format.Duration(int64(chunkSize))
			printVerbose("pacing %d-byte chunks every %v", chunkSize, pace)
		}

		producer := func(yield func([]byte) bool) {
			for off := 0; off < len(audio); off += chunkSize {
				end := min(off+chunkSize, len(audio))
				if !yield(audio[off:end]) {
					return
				}
				if pace > 0 {
					time.Sleep(pace)
				}
			}
		}

		results := client.STT.Recognize(reqCtx, &speechkit.StreamingConfig{
			LanguageCode:    speechkit.Language(lang),
			PartialResults:  partial,
			SingleUtterance: single,
			AudioEncoding:   speechkit.EncodingLinear16PCM,
			SampleRateHertz: speechkit.SampleRate(rate),
		}, producer)

		for result, err := range results {
			if err != nil {
				return err
			}
			if len(result.Alternatives) == 0 {
				continue
			}
			switch {
			case result.Final:
				fmt.Println(finalStyle.Render(result.Alternatives[0]))
			case result.EndOfUtterance:
				fmt.Println(eouStyle.Render("— " + result.Alternatives[0]))
			default:
				fmt.Println(partialStyle.Render(result.Alternatives[0]))
			}
		}

		return nil
	},
}

func init() {
	flags := streamCmd.Flags()
	flags.String("lang", "", "recognition language (ru-RU, en-US, tr-TR)")
	flags.Int("rate", 48000, "sample rate in hertz (8000, 16000, 48000)")
	flags.Bool("partial", false, "print partial hypotheses")
	flags.Bool("single-utterance", false, "stop after the first utterance")
	flags.Int("chunk-size", 4096, "audio chunk size in bytes")
	flags.Bool("realtime", false, "pace chunks at the audio clock (lpcm only)")
}
