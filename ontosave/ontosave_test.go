package ontosave_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/ontosave"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRoundtrip(t *testing.T) {
	stats := geomodel.NewStats()
	stats.CountUnknownCountry("ZZ")
	ont := ontosave.Ontology{
		Meta: ontosave.Metadata{
			Version:     1,
			Languages:   []string{"fr", "ru"},
			Source:      "france.osm.pbf",
			DateCreated: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		Areas: []geomodel.Area{
			{
				ID:          0,
				OsmID:       42,
				Name:        "France",
				Names:       geomodel.Names{"ru": "Франция"},
				Label:       "France",
				AdminLevel:  2,
				Type:        geomodel.TypeCountry,
				CountryCode: "FR",
				Parent:      geomodel.NoArea,
				Boundary: orb.MultiPolygon{orb.Polygon{orb.Ring{
					{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
				}}},
				Center: orb.Point{5, 5},
			},
		},
		Stats: stats,
	}

	var buf bytes.Buffer
	if err := ontosave.Save(&buf, ont); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := ontosave.Load(&buf, discardLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Meta.Version != 1 || got.Meta.Source != "france.osm.pbf" {
		t.Fatalf("metadata mismatch: %+v", got.Meta)
	}
	if !got.Meta.DateCreated.Equal(ont.Meta.DateCreated) {
		t.Fatalf("date mismatch: %v", got.Meta.DateCreated)
	}
	if len(got.Areas) != 1 {
		t.Fatalf("expected 1 area, got %d", len(got.Areas))
	}
	a := got.Areas[0]
	if a.Name != "France" || a.Names["ru"] != "Франция" || a.Type != geomodel.TypeCountry {
		t.Fatalf("area mismatch: %+v", a)
	}
	if len(a.Boundary) != 1 || len(a.Boundary[0][0]) != 5 {
		t.Fatalf("boundary mismatch: %+v", a.Boundary)
	}
	if got.Stats.UnknownCountryRules["ZZ"] != 1 {
		t.Fatalf("stats mismatch: %+v", got.Stats)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := ontosave.Load(bytes.NewReader([]byte("not an ontology file")), discardLogger())
	if err == nil {
		t.Fatalf("expected an error for foreign data")
	}
}

func TestLoadRejectsUnsupportedLevel(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GEONT")
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})

	_, err := ontosave.Load(&buf, discardLogger())
	if err == nil {
		t.Fatalf("expected an error for an unknown compatibility level")
	}
}
