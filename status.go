/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

func writeText(cfg *Config, w http.ResponseWriter, body string, errs chan<- error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	securityHeaders(cfg, w)

	if _, err := w.Write([]byte(body)); err != nil {
		errs <- err
	}
}

func serveLiveness(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeText(cfg, w, "Backend is running", errs)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeText(cfg, w, "Ok\n", errs)
	}
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		body := "killergame v" + releaseVersion + "\n"
		writeText(cfg, w, body, errs)

		logf(cfg, "SERVE: Version page (%s) to %s in %s",
			humanReadableSize(int64(len(body))),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))

		writeText(cfg, w, "User-agent: *\nDisallow: /\n", errs)
	}
}
