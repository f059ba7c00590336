package transcoder

import (
	"context"
)

// TrimRequest describes one segment trim operation.
type TrimRequest struct {
	// StartSeconds is the segment start offset in the source video.
	StartSeconds float64
	// EndSeconds is the segment end offset. Must be > StartSeconds.
	EndSeconds float64
	// Decision selects the trim strategy and its encoder parameters.
	Decision Decision
}

// SegmentTranscoder defines the capability interface over the external
// transcoding binary. It exists so the pipeline can be tested without
// invoking a real binary.
type SegmentTranscoder interface {
	// Available reports whether the underlying binary can be invoked.
	// Callers treat false as a soft failure and skip processing.
	Available(ctx context.Context) bool

	// TrimSegment cuts the requested segment out of the file at
	// inputPath and writes the result to outputPath, re-encoding or
	// stream-copying according to the request's decision.
	//
	// The invocation is synchronous and bounded by the implementation's
	// configured run timeout. A nonzero exit is returned as an error
	// carrying the tail of the captured diagnostic output.
	TrimSegment(ctx context.Context, inputPath, outputPath string, req TrimRequest) error
}
