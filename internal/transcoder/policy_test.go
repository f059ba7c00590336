package transcoder

import "testing"

func TestDecide(t *testing.T) {
	const mb = int64(1 << 20)

	tests := []struct {
		name            string
		sizeBytes       int64
		durationSeconds float64
		expected        Strategy
	}{
		{"modest bitrate stream-copies", 8 * mb, 8, StrategyStreamCopy},
		{"exactly at threshold stream-copies", 12 * mb, 8, StrategyStreamCopy},
		{"just above threshold re-encodes", 12*mb + 1, 8, StrategyReencode},
		{"20MB over 8s re-encodes", 20 * mb, 8, StrategyReencode},
		{"long low-bitrate clip stream-copies", 50 * mb, 60, StrategyStreamCopy},
		{"tiny clip stream-copies", mb / 2, 1, StrategyStreamCopy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.sizeBytes, tt.durationSeconds)
			if got.Strategy != tt.expected {
				t.Errorf("Decide(%d, %v).Strategy = %s, expected %s",
					tt.sizeBytes, tt.durationSeconds, got.Strategy, tt.expected)
			}
		})
	}
}

func TestDecide_Deterministic(t *testing.T) {
	first := Decide(20<<20, 8)
	for i := 0; i < 10; i++ {
		if got := Decide(20<<20, 8); got != first {
			t.Fatalf("Decide is not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestDecide_MonotonicInSize(t *testing.T) {
	// Growing the source for a fixed duration must never move the
	// decision from reencode back to copy.
	const duration = 8.0
	sawReencode := false
	for size := int64(1 << 20); size <= 64<<20; size += 1 << 20 {
		d := Decide(size, duration)
		if d.Strategy == StrategyReencode {
			sawReencode = true
		}
		if sawReencode && d.Strategy != StrategyReencode {
			t.Fatalf("decision regressed to %s at size %d", d.Strategy, size)
		}
	}
	if !sawReencode {
		t.Fatal("expected the sweep to cross the reencode threshold")
	}
}

func TestDecide_ReencodeParameters(t *testing.T) {
	d := Decide(20<<20, 8)

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"VideoCodec", d.VideoCodec, "libx264"},
		{"CRF", d.CRF, 28},
		{"Preset", d.Preset, "fast"},
		{"AudioCodec", d.AudioCodec, "aac"},
		{"AudioBitrateKbps", d.AudioBitrateKbps, 128},
		{"ScaleFilter", d.ScaleFilter, "scale=trunc(iw/2)*2:trunc(ih/2)*2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestDecide_StreamCopyHasNoEncoderParams(t *testing.T) {
	d := Decide(1<<20, 8)
	if d.Strategy != StrategyStreamCopy {
		t.Fatalf("expected stream copy, got %s", d.Strategy)
	}
	if d.VideoCodec != "" || d.CRF != 0 || d.AudioCodec != "" {
		t.Errorf("stream copy decision carries encoder params: %+v", d)
	}
}
