// Package batch generates plans for many independent trips in parallel.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"itinera/internal/logger"
	"itinera/internal/planner"
	"itinera/internal/trip"
)

const DefaultConcurrency = 4

// PlanGenerator is satisfied by *planner.Planner.
type PlanGenerator interface {
	Generate(ctx context.Context, prefs trip.Preferences) (*planner.Plan, error)
}

type Result struct {
	Index       int
	Preferences trip.Preferences
	Plan        *planner.Plan
	Err         error
	Duration    time.Duration
}

// Run generates a plan per trip with at most limit calls in flight. Results
// come back in input order. A failed trip records its error and never stops
// the others; a cancelled ctx fails the trips that have not started yet.
func Run(ctx context.Context, gen PlanGenerator, trips []trip.Preferences, limit int) []Result {
	if limit < 1 {
		limit = DefaultConcurrency
	}
	results := make([]Result, len(trips))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, prefs := range trips {
		results[i] = Result{Index: i, Preferences: prefs}
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					results[i].Err = fmt.Errorf("panic: %v", rec)
					logger.Log.Errorw("Batch item panicked", "index", i, "panic", rec)
				}
			}()
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			start := time.Now()
			plan, err := gen.Generate(ctx, prefs)
			results[i].Duration = time.Since(start)
			results[i].Plan, results[i].Err = plan, err
			if err != nil {
				logger.Log.Warnw("Batch item failed", "index", i, "destination", prefs.Destination, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

type tripFile struct {
	Trips []trip.Preferences `json:"trips" yaml:"trips"`
}

// LoadTrips reads preference records from a .json file or a YAML file.
// Either a bare list or a document with a top-level "trips" list is
// accepted. Records are normalized but not validated.
func LoadTrips(path string) ([]trip.Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trips %s: %w", path, err)
	}
	trips, err := decodeTrips(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("parse trips %s: %w", path, err)
	}
	if len(trips) == 0 {
		return nil, fmt.Errorf("parse trips %s: no trips found", path)
	}
	for i := range trips {
		trips[i] = trips[i].Normalized()
	}
	return trips, nil
}

func decodeTrips(data []byte, isJSON bool) ([]trip.Preferences, error) {
	unmarshal := yaml.Unmarshal
	if isJSON {
		unmarshal = json.Unmarshal
	}
	var list []trip.Preferences
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc tripFile
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Trips, nil
}
