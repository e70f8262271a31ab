// Package ontology builds a consistent hierarchical geographic ontology
// out of parsed administrative areas and named point places: containment
// resolution, country detection, rule-based typing, parent assignment,
// orphan-place tessellation and label synthesis.
package ontology

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/typer"
)

type Config struct {
	// CountryCode forces every area into one country and skips per-area
	// country resolution.
	CountryCode string

	// DisablePlaces turns off orphan-place tessellation; no synthetic
	// areas are created and coverage gaps remain unfilled.
	DisablePlaces bool

	// Languages for which hierarchical labels are computed, in addition
	// to the default name.
	Languages []string

	// Rules overrides the embedded per-country rule tables.
	Rules *typer.Rules

	Threads int
	Logger  *slog.Logger
}

// Build runs the whole pipeline over the parsed input and returns the
// final typed, parented and labeled area set plus build statistics.
// The input slice is taken over and must not be used afterwards.
//
// The only fatal condition is the absence of any country identity
// source; every per-area problem degrades into statistics.
func Build(areas []geomodel.Area, places []geomodel.Place, cfg Config) ([]geomodel.Area, geomodel.Stats, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	rules := cfg.Rules
	if rules == nil {
		var err error
		if rules, err = typer.Default(); err != nil {
			return nil, geomodel.Stats{}, fmt.Errorf("loading default rules: %w", err)
		}
	}

	for i := range areas {
		areas[i].ID = geomodel.AreaID(i)
		areas[i].Parent = geomodel.NoArea
	}
	stats := geomodel.NewStats()

	log.Info("computing inclusions", "areas", len(areas))
	sizes := areaSizes(areas)
	inclusions, tree := findInclusions(areas, sizes)

	if err := typeAreas(areas, inclusions, rules, &stats, cfg, threads, log); err != nil {
		return nil, stats, err
	}

	log.Info("building hierarchy")
	buildHierarchy(areas, inclusions, sizes)

	if !cfg.DisablePlaces {
		// sizes only covers the administrative areas; synthetic ones are
		// appended behind them and never looked up by size.
		areas = computeAdditionalPlaces(areas, places, tree, sizes, log)
	}

	computeLabels(areas, cfg.Languages)

	// The single removal pass. It invalidates indices, so it must stay
	// the last step; parent references are remapped while pruning.
	areas = pruneUntyped(areas, log)

	stats.Compute(areas)
	return areas, stats, nil
}

type typeOutcome struct {
	country  string
	found    bool
	areaType geomodel.AreaType
	err      error
}

// typeAreas classifies every area in parallel against immutable inputs,
// then applies the outcomes and updates statistics in a single
// sequential pass. The split keeps the concurrent map phase free of any
// mutation of the area set it is reading.
func typeAreas(areas []geomodel.Area, inclusions [][]geomodel.AreaID, rules *typer.Rules, stats *geomodel.Stats, cfg Config, threads int, log *slog.Logger) error {
	finder := newCountryFinder(areas)
	if cfg.CountryCode == "" && finder.Empty() {
		return errors.New("no country code provided and no country area found, the ontology cannot be typed")
	}

	log.Info("typing areas", "threads", threads)
	outcomes := make([]typeOutcome, len(areas))

	p := pool.New().WithMaxGoroutines(threads)
	for i := range areas {
		p.Go(func() {
			a := &areas[i]

			var country string
			var found bool
			if cfg.CountryCode != "" {
				country, found = strings.ToUpper(cfg.CountryCode), true
			} else {
				country, found = finder.Find(a, inclusions[i], areas)
			}
			if !found {
				return
			}

			t, err := rules.Type(a, country, inclusions[i], areas)
			outcomes[i] = typeOutcome{country: country, found: true, areaType: t, err: err}
		})
	}
	p.Wait()

	var unknownCountry *typer.UnknownCountryError
	var unknownLevel *typer.UnknownLevelError
	for i := range areas {
		a := &areas[i]
		o := outcomes[i]
		switch {
		case !o.found:
			log.Info("no country found for area, skipping", "osm_id", a.OsmID, "name", a.Name)
			stats.AreasWithoutCountry++
		case o.err == nil:
			a.CountryCode = o.country
			a.Type = o.areaType
		case errors.As(o.err, &unknownCountry):
			a.CountryCode = o.country
			log.Info("no rules for country", "country", o.country, "osm_id", a.OsmID)
			stats.CountUnknownCountry(o.country)
		case errors.As(o.err, &unknownLevel):
			a.CountryCode = o.country
			log.Debug("no rule for admin level", "country", o.country, "level", unknownLevel.Level, "osm_id", a.OsmID)
			stats.CountUnhandledLevel(o.country, unknownLevel.Level)
		default:
			return fmt.Errorf("typing area %d: %w", a.OsmID, o.err)
		}
	}
	return nil
}

// pruneUntyped drops areas without a semantic type. Parent references of
// the kept areas are remapped through pruned ancestors to the nearest
// surviving one.
func pruneUntyped(areas []geomodel.Area, log *slog.Logger) []geomodel.Area {
	remap := make([]geomodel.AreaID, len(areas))
	kept := make([]geomodel.Area, 0, len(areas))
	for i := range areas {
		if areas[i].Typed() {
			remap[i] = geomodel.AreaID(len(kept))
			kept = append(kept, areas[i])
		} else {
			remap[i] = geomodel.NoArea
		}
	}

	for i := range kept {
		parent := kept[i].Parent
		for parent != geomodel.NoArea && remap[parent] == geomodel.NoArea {
			parent = areas[parent].Parent
		}
		if parent == geomodel.NoArea {
			kept[i].Parent = geomodel.NoArea
		} else {
			kept[i].Parent = remap[parent]
		}
		kept[i].ID = geomodel.AreaID(i)
	}

	log.Info("cleaned untyped areas", "removed", len(areas)-len(kept), "kept", len(kept))
	return kept
}
