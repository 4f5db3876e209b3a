package launcher

import "bytes"

// excerptWriter keeps only the first limit bytes written to it, so a
// chatty runner can never grow worker memory without bound. Writes
// past the limit are counted but discarded.
type excerptWriter struct {
	limit     int
	buf       bytes.Buffer
	truncated int64
}

const truncationMarker = "\n... [truncated]"

func newExcerptWriter(limit int) *excerptWriter {
	return &excerptWriter{limit: limit}
}

func (w *excerptWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining > 0 {
		if len(p) <= remaining {
			w.buf.Write(p)
			return len(p), nil
		}
		w.buf.Write(p[:remaining])
	}

	w.truncated += int64(len(p) - max(remaining, 0))
	return len(p), nil
}

func (w *excerptWriter) String() string {
	if w.truncated > 0 {
		return w.buf.String() + truncationMarker
	}
	return w.buf.String()
}
