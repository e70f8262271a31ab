// Package geoparser extracts administrative areas and named point places
// from OSM PBF extracts. Parsing runs in three streaming passes: node
// coordinates, way geometries, then boundary relations assembled into
// multipolygons. Relations that do not resolve to a valid boundary
// polygon never reach the ontology pipeline.
package geoparser

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/sourcegraph/conc/pool"

	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/kv"
)

type GeoParser struct {
	threads int
	log     *slog.Logger

	nodeCache kv.KVS[osm.NodeID, orb.Point]
	wayCache  kv.KVS[osm.WayID, orb.LineString]

	mu     sync.Mutex
	areas  []geomodel.Area
	places []geomodel.Place
}

func New(threads int, log *slog.Logger) *GeoParser {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &GeoParser{
		threads:   threads,
		log:       log,
		nodeCache: kv.NewXMap[osm.NodeID, orb.Point](),
		wayCache:  kv.NewBTreeMap[osm.WayID, orb.LineString](),
	}
}

// ParseFile scans the extract and returns the candidate areas and the
// named point places, both ordered by OSM id.
func (p *GeoParser) ParseFile(ctx context.Context, path string) ([]geomodel.Area, []geomodel.Place, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	if err := p.scanNodes(ctx, file); err != nil {
		return nil, nil, fmt.Errorf("scanning nodes: %w", err)
	}
	if err := p.scanWays(ctx, file); err != nil {
		return nil, nil, fmt.Errorf("scanning ways: %w", err)
	}
	if err := p.scanRelations(ctx, file); err != nil {
		return nil, nil, fmt.Errorf("scanning relations: %w", err)
	}

	// relations are parsed by a worker pool, restore a stable order
	slices.SortFunc(p.areas, func(a, b geomodel.Area) int {
		return cmp.Compare(a.OsmID, b.OsmID)
	})
	slices.SortFunc(p.places, func(a, b geomodel.Place) int {
		return cmp.Compare(a.OsmID, b.OsmID)
	})

	p.log.Info("parsing done",
		"areas", humanize.Comma(int64(len(p.areas))),
		"places", humanize.Comma(int64(len(p.places))),
		"nodes_cached", humanize.Comma(int64(p.nodeCache.Len())),
		"ways_cached", humanize.Comma(int64(p.wayCache.Len())),
	)
	return p.areas, p.places, nil
}

func (p *GeoParser) scanNodes(ctx context.Context, file *os.File) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	stat, err := file.Stat()
	if err != nil {
		return err
	}

	scanner := osmpbf.New(ctx, file, p.threads)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	return scanWithProgress(scanner, stat.Size(), "1/3 caching nodes", func(object osm.Object) {
		node, ok := object.(*osm.Node)
		if !ok {
			return
		}
		p.nodeCache.Set(node.ID, orb.Point{node.Lon, node.Lat})
		if place, ok := parsePlace(node); ok {
			p.places = append(p.places, place)
		}
	})
}

func (p *GeoParser) scanWays(ctx context.Context, file *os.File) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	stat, err := file.Stat()
	if err != nil {
		return err
	}

	scanner := osmpbf.New(ctx, file, p.threads)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	return scanWithProgress(scanner, stat.Size(), "2/3 caching ways", func(object osm.Object) {
		way, ok := object.(*osm.Way)
		if !ok {
			return
		}
		if ls := p.makeLineString(way.Nodes); len(ls) > 0 {
			p.wayCache.Set(way.ID, ls)
		}
	})
}

func (p *GeoParser) scanRelations(ctx context.Context, file *os.File) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	stat, err := file.Stat()
	if err != nil {
		return err
	}

	scanner := osmpbf.New(ctx, file, p.threads)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipWays = true

	workers := pool.New().WithMaxGoroutines(p.threads)
	err = scanWithProgress(scanner, stat.Size(), "3/3 assembling boundaries", func(object osm.Object) {
		rel, ok := object.(*osm.Relation)
		if !ok || !isAdminRelation(rel) {
			return
		}
		workers.Go(func() {
			if area, ok := p.parseRelation(rel); ok {
				p.mu.Lock()
				p.areas = append(p.areas, area)
				p.mu.Unlock()
			}
		})
	})
	workers.Wait()
	return err
}

func (p *GeoParser) parseRelation(rel *osm.Relation) (geomodel.Area, bool) {
	name := rel.Tags.Find(nameKey)
	if name == "" {
		return geomodel.Area{}, false
	}

	mpoly, err := p.buildPolygon(rel.Members)
	if err != nil {
		p.log.Debug("skipping relation without a valid boundary",
			"osm_id", rel.ID, "name", name, "error", err.Error())
		return geomodel.Area{}, false
	}
	if len(mpoly) == 0 || mpoly.Bound().IsZero() {
		return geomodel.Area{}, false
	}

	level, _ := strconv.Atoi(rel.Tags.Find("admin_level"))
	center, _ := planar.CentroidArea(mpoly)

	return geomodel.Area{
		OsmID:      int64(rel.ID),
		Name:       name,
		Names:      collectNames(rel.Tags),
		AdminLevel: level,
		ISOCode:    isoCode(rel.Tags),
		Parent:     geomodel.NoArea,
		Boundary:   mpoly,
		Center:     center,
	}, true
}
