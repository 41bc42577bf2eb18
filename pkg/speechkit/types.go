package speechkit

// ================== Audio Encoding ==================

// AudioEncoding represents the format of submitted audio.
type AudioEncoding string

const (
	EncodingLinear16PCM AudioEncoding = "LINEAR16_PCM" // LPCM with no WAV header
	EncodingOggOpus     AudioEncoding = "OGG_OPUS"     // OggOpus container (service default)
)

// ================== Sample Rate ==================

// SampleRate represents audio sample rate in hertz.
type SampleRate int

const (
	SampleRate8000  SampleRate = 8000
	SampleRate16000 SampleRate = 16000
	SampleRate48000 SampleRate = 48000
)

// ================== Language ==================

// Language represents a recognition or synthesis language code.
type Language string

const (
	LanguageRuRU Language = "ru-RU" // Russian (service default)
	LanguageEnUS Language = "en-US" // English (US)
	LanguageTrTR Language = "tr-TR" // Turkish
)

// ================== Long-Audio Recognition ==================

// RecognitionSpec enumerates the long-audio recognition parameters. All
// fields are optional; the service applies its documented defaults for
// zero values.
type RecognitionSpec struct {
	LanguageCode      Language      `json:"languageCode,omitempty" yaml:"language_code,omitempty"`
	Model             string        `json:"model,omitempty" yaml:"model,omitempty"`
	ProfanityFilter   bool          `json:"profanityFilter,omitempty" yaml:"profanity_filter,omitempty"`
	AudioEncoding     AudioEncoding `json:"audioEncoding,omitempty" yaml:"audio_encoding,omitempty"`
	SampleRateHertz   SampleRate    `json:"sampleRateHertz,omitempty" yaml:"sample_rate_hertz,omitempty"`
	AudioChannelCount int           `json:"audioChannelCount,omitempty" yaml:"audio_channel_count,omitempty"`
	RawResults        bool          `json:"rawResults,omitempty" yaml:"raw_results,omitempty"`
}

// Word carries word-level timing for one recognized word. Time stamps
// are protobuf duration strings as received from the service, e.g.
// "1.820s"; an error of a second or two is possible.
type Word struct {
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Alternative is one recognized text variant for a chunk, best first.
type Alternative struct {
	Words      []Word  `json:"words,omitempty"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Chunk is one segment of a long-audio result.
type Chunk struct {
	Alternatives []Alternative `json:"alternatives"`
	ChannelTag   string        `json:"channelTag,omitempty"`
}

// RecognitionResponse is the terminal payload of a completed job.
// Chunks may be empty when the audio contained no recognizable speech.
type RecognitionResponse struct {
	Chunks []Chunk `json:"chunks,omitempty"`
}

// Operation mirrors the long-running operation resource.
type Operation struct {
	ID       string               `json:"id"`
	Done     bool                 `json:"done"`
	Response *RecognitionResponse `json:"response,omitempty"`
}

// ================== Short Recognition ==================

// RecognizeOptions carries the short-audio recognition query parameters.
// All fields are optional and service-defaulted.
type RecognizeOptions struct {
	Lang            Language   `json:"lang,omitempty" yaml:"lang,omitempty"`
	Topic           string     `json:"topic,omitempty" yaml:"topic,omitempty"`
	ProfanityFilter bool       `json:"profanityFilter,omitempty" yaml:"profanity_filter,omitempty"`
	Format          string     `json:"format,omitempty" yaml:"format,omitempty"` // "lpcm" or "oggopus"
	SampleRateHertz SampleRate `json:"sampleRateHertz,omitempty" yaml:"sample_rate_hertz,omitempty"`
}

// ================== Streaming Recognition ==================

// StreamingConfig enumerates the streaming recognition parameters sent
// in the configuration handshake. All fields are optional and
// service-defaulted; validation happens at session construction.
type StreamingConfig struct {
	LanguageCode    Language      `json:"languageCode,omitempty" yaml:"language_code,omitempty"`
	Model           string        `json:"model,omitempty" yaml:"model,omitempty"`
	ProfanityFilter bool          `json:"profanityFilter,omitempty" yaml:"profanity_filter,omitempty"`
	PartialResults  bool          `json:"partialResults,omitempty" yaml:"partial_results,omitempty"`
	SingleUtterance bool          `json:"singleUtterance,omitempty" yaml:"single_utterance,omitempty"`
	AudioEncoding   AudioEncoding `json:"audioEncoding,omitempty" yaml:"audio_encoding,omitempty"`
	SampleRateHertz SampleRate    `json:"sampleRateHertz,omitempty" yaml:"sample_rate_hertz,omitempty"`
	RawResults      bool          `json:"rawResults,omitempty" yaml:"raw_results,omitempty"`
}

// StreamingResult is one inbound message from a streaming session:
// the alternative texts of the message's first chunk, in service order,
// with its final and end-of-utterance flags.
type StreamingResult struct {
	Alternatives   []string `json:"alternatives"`
	Final          bool     `json:"final"`
	EndOfUtterance bool     `json:"endOfUtterance"`
}

// ================== Synthesis ==================

// SynthesisRequest carries the synthesis form parameters. Exactly one
// of Text or SSML must be set; Text is limited to 5000 characters.
type SynthesisRequest struct {
	Text            string     `json:"text,omitempty" yaml:"text,omitempty"`
	SSML            string     `json:"ssml,omitempty" yaml:"ssml,omitempty"`
	Lang            Language   `json:"lang,omitempty" yaml:"lang,omitempty"`
	Voice           string     `json:"voice,omitempty" yaml:"voice,omitempty"`
	Emotion         string     `json:"emotion,omitempty" yaml:"emotion,omitempty"`
	Speed           float64    `json:"speed,omitempty" yaml:"speed,omitempty"`
	Format          string     `json:"format,omitempty" yaml:"format,omitempty"` // "lpcm" or "oggopus"
	SampleRateHertz SampleRate `json:"sampleRateHertz,omitempty" yaml:"sample_rate_hertz,omitempty"`
}
