package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/paulmach/orb"
	"github.com/valyala/fasthttp"

	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/locator"
	"github.com/royalcat/geontology/ontosave"
)

func testServer(areas []geomodel.Area) *server {
	metricAreaCallCount, _ := meter.Int64Counter("http_area_call_total")
	metricAreaMultiCallCount, _ := meter.Int64Counter("http_area_multi_call_total")
	metricAreasLocated, _ := meter.Int64Counter("areas_located_total")

	return &server{
		loc: locator.New(ontosave.Ontology{Areas: areas}),

		metricAreaCallCount:      metricAreaCallCount,
		metricAreaMultiCallCount: metricAreaMultiCallCount,
		metricAreasLocated:       metricAreasLocated,
	}
}

func testAreas() []geomodel.Area {
	return []geomodel.Area{{
		ID:     0,
		Name:   "France",
		Type:   geomodel.TypeCountry,
		Parent: geomodel.NoArea,
		Boundary: orb.MultiPolygon{orb.Polygon{orb.Ring{
			{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
		}}},
	}}
}

func areaRequestCtx(lat, lon string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.SetUserValue("lat", lat)
	ctx.SetUserValue("lon", lon)
	return ctx
}

func TestAreaHandler(t *testing.T) {
	s := testServer(testAreas())

	ctx := areaRequestCtx("5.0", "5.0")
	s.AreaHandler(ctx)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
	var area geomodel.Area
	if err := json.Unmarshal(ctx.Response.Body(), &area); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if area.Name != "France" {
		t.Fatalf("expected France, got %q", area.Name)
	}

	ctx = areaRequestCtx("50.0", "50.0")
	s.AreaHandler(ctx)
	if ctx.Response.StatusCode() != http.StatusNoContent {
		t.Fatalf("expected 204 outside coverage, got %d", ctx.Response.StatusCode())
	}

	ctx = areaRequestCtx("not-a-number", "5.0")
	s.AreaHandler(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad coordinate, got %d", ctx.Response.StatusCode())
	}
}

func TestChainHandler(t *testing.T) {
	s := testServer(testAreas())

	ctx := areaRequestCtx("5.0", "5.0")
	s.ChainHandler(ctx)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
	var chain []geomodel.Area
	if err := json.Unmarshal(ctx.Response.Body(), &chain); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(chain) != 1 || chain[0].Name != "France" {
		t.Fatalf("unexpected chain: %v", chain)
	}
}

func TestMultiAreaHandler(t *testing.T) {
	s := testServer(testAreas())

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetBodyString("not json")
	s.MultiAreaHandler(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.Response.StatusCode())
	}

	ctx = &fasthttp.RequestCtx{}
	ctx.Request.SetBodyString("[[5.0, 5.0], [50.0, 50.0]]")
	s.MultiAreaHandler(ctx)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
	var res []geomodel.Area
	if err := json.Unmarshal(ctx.Response.Body(), &res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	if res[0].Name != "France" || res[1].Name != "" {
		t.Fatalf("unexpected results: %v", res)
	}
}

func TestMultiAreaHandlerReusesRequestBuffer(t *testing.T) {
	s := testServer(testAreas())

	body, _ := json.Marshal(make([][2]float64, 100))

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetBody(body)
	s.MultiAreaHandler(ctx)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}

	// the handler must pool the buffer as grown by unmarshal, not the
	// empty header it started with
	got := reqPointsPool.Get().([][2]float64)
	defer reqPointsPool.Put(got)
	if cap(got) < 100 {
		t.Fatalf("pooled buffer capacity %d, expected at least 100", cap(got))
	}
}

func BenchmarkMultiAreaHandler(b *testing.B) {
	s := testServer(testAreas())

	body, _ := json.Marshal(make([][2]float64, 1000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.SetBody(body)
		s.MultiAreaHandler(ctx)
	}
}
