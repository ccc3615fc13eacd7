package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/gamarr/pkg/release"
)

// DefaultMinConfidence is the lowest score a candidate may have to be returned.
const DefaultMinConfidence = 0.8

// Candidate is a ranked catalog match for a raw release name.
type Candidate struct {
	Title      string  // Canonical title, trademark symbols removed
	Platform   string  // Platform slug the catalog belongs to
	ExternalID string  // Catalog slug or id
	Score      float64 // Similarity in [0, 1]
}

// Resolver matches raw release names against a catalog source.
type Resolver struct {
	source        Source
	minConfidence float64
	log           *slog.Logger
}

// NewResolver creates a resolver. A minConfidence of zero or less uses
// DefaultMinConfidence.
func NewResolver(source Source, minConfidence float64, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Resolver{
		source:        source,
		minConfidence: minConfidence,
		log:           log.With("component", "resolver"),
	}
}

// Resolve returns catalog candidates for rawName on platform, best first.
// An empty result means no candidate cleared the confidence threshold.
// Errors are only returned when the catalog itself cannot be loaded.
func (r *Resolver) Resolve(ctx context.Context, rawName, platform string) ([]Candidate, error) {
	info := release.Parse(rawName)
	if info.Title == "" {
		return nil, nil
	}

	games, err := r.source.Games(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	slug := release.Slug(info.Title)
	for _, g := range games {
		if g.Slug != "" && release.Slug(g.Slug) == slug {
			r.log.Debug("exact slug match", "raw", rawName, "slug", g.Slug)
			return []Candidate{newCandidate(g, platform, 1.0)}, nil
		}
	}

	titles := make([]string, len(games))
	for i, g := range games {
		titles[i] = release.StripTrademarks(g.Title)
	}

	ranked := release.Rank(info.Title, titles, r.minConfidence)
	candidates := make([]Candidate, 0, len(ranked))
	for _, rk := range ranked {
		candidates = append(candidates, newCandidate(games[rk.Index], platform, rk.Score))
	}

	if len(candidates) == 0 {
		r.log.Debug("no candidate above threshold", "raw", rawName, "parsed", info.Title, "min_confidence", r.minConfidence)
	} else {
		r.log.Debug("resolved",
			"raw", rawName,
			"title", candidates[0].Title,
			"score", candidates[0].Score,
			"confidence", release.ConfidenceFor(candidates[0].Score).String(),
			"candidates", len(candidates))
	}
	return candidates, nil
}

func newCandidate(g Game, platform string, score float64) Candidate {
	return Candidate{
		Title:      release.StripTrademarks(g.Title),
		Platform:   platform,
		ExternalID: g.ExternalID(),
		Score:      score,
	}
}
