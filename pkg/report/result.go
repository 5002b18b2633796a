package report

import (
	"github.com/OFFIS-RIT/holocron/pkg/stats"
)

// Result is the merged, final output of one computation. It is built once
// both engines have finished and never modified afterwards; accessors hand
// out copies.
type Result struct {
	LongestCrawl             string                     `json:"longestCrawl"`
	MostCharacterAppearances string                     `json:"mostCharacterAppearances"`
	TopSpecies               []stats.SpeciesAppearances `json:"topSpecies"`
	TopPilotProvider         *PilotProvider             `json:"topPilotProvider"`
}

// PilotProvider is the planet supplying the most distinct pilots.
type PilotProvider struct {
	Planet         string        `json:"planet"`
	NumberOfPilots int           `json:"number_of_pilots"`
	Pilots         []stats.Pilot `json:"pilots"`
}

// Merge assembles a Result from both engines' outputs.
func Merge(films stats.FilmStats, pilots stats.PilotStats) Result {
	res := Result{
		LongestCrawl:             films.LongestCrawlTitle,
		MostCharacterAppearances: films.MostFrequentCharacter,
		TopSpecies:               make([]stats.SpeciesAppearances, len(films.TopSpecies)),
	}
	copy(res.TopSpecies, films.TopSpecies)

	if top := pilots.TopPlanet; top != nil {
		p := &PilotProvider{
			Planet:         top.Planet,
			NumberOfPilots: top.PilotCount(),
			Pilots:         make([]stats.Pilot, len(top.Pilots)),
		}
		copy(p.Pilots, top.Pilots)
		res.TopPilotProvider = p
	}
	return res
}

func (r Result) clone() Result {
	out := r
	out.TopSpecies = append([]stats.SpeciesAppearances(nil), r.TopSpecies...)
	if out.TopSpecies == nil {
		out.TopSpecies = []stats.SpeciesAppearances{}
	}
	if r.TopPilotProvider != nil {
		p := *r.TopPilotProvider
		p.Pilots = append([]stats.Pilot(nil), r.TopPilotProvider.Pilots...)
		out.TopPilotProvider = &p
	}
	return out
}
