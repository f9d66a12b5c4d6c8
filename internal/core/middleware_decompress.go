package core

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"slskdrelay/internal/types"
)

// maxZstdWindow caps the decoder window so a hostile frame header cannot make
// the decoder allocate arbitrarily large buffers.
const maxZstdWindow = 8 << 20

// DecompressRequest inflates gzip and zstd request bodies according to
// Content-Encoding. Identity bodies pass through untouched. Unknown encodings
// are rejected with a 400. Size limits are applied by the handler on the
// decoded stream, so a small compressed body cannot expand past them.
func DecompressRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding")))

		switch encoding {
		case "", "identity":
			next.ServeHTTP(w, r)
			return

		case "gzip", "x-gzip":
			gz, err := gzip.NewReader(r.Body)
			if err != nil {
				Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidBody, "request body is not valid gzip", err))
				return
			}
			defer gz.Close()
			r.Body = decodedBody{Reader: gz, Closer: r.Body}

		case "zstd":
			dec, err := zstd.NewReader(r.Body,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderMaxWindow(maxZstdWindow),
			)
			if err != nil {
				Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidBody, "request body is not valid zstd", err))
				return
			}
			defer dec.Close()
			r.Body = decodedBody{Reader: dec, Closer: r.Body}

		default:
			Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationUnsupportedEncoding,
				"unsupported Content-Encoding",
				nil,
				map[string]any{"encoding": encoding, "supported": []string{"gzip", "zstd"}},
			))
			return
		}

		r.Header.Del("Content-Encoding")
		r.Header.Del("Content-Length")
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}

// decodedBody reads from the decompressor and closes the original body.
type decodedBody struct {
	io.Reader
	io.Closer
}
