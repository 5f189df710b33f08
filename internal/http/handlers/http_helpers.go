package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rogerio-castellano/catalog-proxy/internal/logger"
	repo "github.com/rogerio-castellano/catalog-proxy/internal/repo"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func respond(ctx context.Context, w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		logger.ErrorLog(ctx, err, "failed to write JSON response")
	}
}

func recordStat(ctx context.Context, key repo.StatsKey) {
	if statsRepo == nil {
		return
	}
	if err := statsRepo.Incr(ctx, key); err != nil {
		logger.WarnLog(ctx, "stats: incr %s: %v", key, err)
	}
}
