package handlers

import (
	"net/http"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/preston-bernstein/twin-reveal-service/internal/http/requestutil"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// QR renders a PNG QR code that opens ?path on this host, so guests can join from their phones.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("path")
	if target == "" {
		target = "/"
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		writeError(w, r, http.StatusBadRequest, "path must be a local path", h.logger)
		return
	}

	size := h.qrSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			writeError(w, r, http.StatusBadRequest, "size must be between 64 and 1024", h.logger)
			return
		}
		size = n
	}

	png, err := qrcode.Encode(requestutil.PublicOrigin(r)+target, qrcode.Medium, size)
	if err != nil {
		logging.Error(loggerFromContext(r, h.logger), "qr encode failed", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to render QR code", h.logger)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	// The encoded origin depends on forwarded headers, so shared caches must not keep it.
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("Vary", "Host, X-Forwarded-Host, X-Forwarded-Proto")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
