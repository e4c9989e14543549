/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// serveQRCode renders the frontend URL as a PNG, so the host can put it on
// screen for players to join from their phones.
func serveQRCode(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		if cfg.frontendURL == "" {
			writeJSON(cfg, w, http.StatusNotFound, errorResponse{Error: "no frontend url configured"})

			return
		}

		png, err := qrcode.Encode(cfg.frontendURL, qrcode.Medium, qrSize)
		if err != nil {
			writeError(cfg, w, err)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
