package transcoder

// Strategy selects how a segment is trimmed.
type Strategy string

const (
	// StrategyReencode re-encodes the segment to shrink delivery size.
	StrategyReencode Strategy = "reencode"
	// StrategyStreamCopy trims the container without re-encoding.
	StrategyStreamCopy Strategy = "copy"
)

func (s Strategy) String() string {
	return string(s)
}

// ReencodeThresholdMBps is the average source bitrate above which a
// segment is re-encoded instead of stream-copied. High-bitrate material
// benefits from re-encoding; already-modest clips are cheaper and
// visually safer to trim losslessly.
const ReencodeThresholdMBps = 1.5

const bytesPerMB = 1 << 20

// Decision holds the strategy and encoder parameters chosen for one
// segment. Parameters are fixed by policy, not caller-tunable.
type Decision struct {
	Strategy Strategy

	// Re-encode parameters; zero-valued for StrategyStreamCopy.
	VideoCodec       string
	CRF              int
	Preset           string
	AudioCodec       string
	AudioBitrateKbps int
	// ScaleFilter floors both dimensions to the nearest even integer,
	// required by the codec's macroblock constraint, while preserving
	// aspect ratio.
	ScaleFilter string
}

// Decide maps a source size and segment duration to a trim decision.
// It is deterministic, and monotonic in size for a fixed duration:
// growing the source never moves the decision from reencode back to copy.
func Decide(sizeBytes int64, durationSeconds float64) Decision {
	avgMBps := float64(sizeBytes) / durationSeconds / bytesPerMB
	if avgMBps > ReencodeThresholdMBps {
		return Decision{
			Strategy:         StrategyReencode,
			VideoCodec:       "libx264",
			CRF:              28,
			Preset:           "fast",
			AudioCodec:       "aac",
			AudioBitrateKbps: 128,
			ScaleFilter:      "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		}
	}
	return Decision{Strategy: StrategyStreamCopy}
}
