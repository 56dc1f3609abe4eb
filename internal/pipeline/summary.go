package pipeline

import (
	"path/filepath"

	"github.com/linuxmatters/heartbeatsart/internal/report"
)

// Summary converts res into report form, listing the artifacts in out.
func (g *Generator) Summary(res *Result, out Outputs) report.Summary {
	s := report.Summary{
		Title:     g.card.GetTitle(),
		RunID:     res.RunID,
		Generated: res.Started,
		Source:    filepath.Base(res.Request.InputPath),
		Extract:   res.Request.Extract,
		Provider:  res.Provider,
		Color:     string(res.Request.Color),
		ColorHex:  res.Request.Color.Hex(),
	}

	if comp := res.Composition; comp != nil {
		p := comp.Profile
		s.Count = p.Count
		s.Mean, s.Min, s.Max, s.Range, s.StdDev = p.Mean, p.Min, p.Max, p.Range, p.StdDev

		s.EnergyBand = string(comp.EnergyBand)
		s.VolatilityBand = string(comp.VolatilityBand)
		s.RangeBand = string(comp.RangeBand)
		s.EnergyWord = comp.EnergyWord
		s.VolatilityWord = comp.VolatilityWord
		s.RangeWord = comp.RangeWord
		s.Prompt = comp.Text
	}

	if res.Rhythm.Valid {
		s.RhythmPeriod = res.Rhythm.Period
		s.RhythmStrength = res.Rhythm.Strength
	}

	if out.Card != "" {
		s.Artifacts = append(s.Artifacts, report.Artifact{Label: "Card", Path: out.Card, Image: true})
	}
	if out.Image != "" {
		s.Artifacts = append(s.Artifacts, report.Artifact{Label: "Artwork", Path: out.Image, Image: true})
	}
	if out.Pulse != "" {
		s.Artifacts = append(s.Artifacts, report.Artifact{Label: "Pulse track", Path: out.Pulse})
	}

	return s
}
