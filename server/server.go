package server

import (
	"context"
	"encoding/json"
	"fmt"
	stdlog "log"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/royalcat/geontology/geomodel"
	"github.com/royalcat/geontology/locator"
)

const MaxBodySize = 32 * 1000 * 1000 // 32MB

var meter = otel.Meter("github.com/royalcat/geontology/server")

func Run(ctx context.Context, address string, loc *locator.Locator) error {
	log := slog.Default()

	metricAreaCallCount, err := meter.Int64Counter("http_area_call_total")
	if err != nil {
		return err
	}
	metricAreaMultiCallCount, err := meter.Int64Counter("http_area_multi_call_total")
	if err != nil {
		return err
	}
	metricAreasLocated, err := meter.Int64Counter("areas_located_total")
	if err != nil {
		return err
	}
	s := &server{
		loc: loc,

		metricAreaCallCount:      metricAreaCallCount,
		metricAreaMultiCallCount: metricAreaMultiCallCount,
		metricAreasLocated:       metricAreasLocated,
	}

	r := router.New()
	r.GET("/ontology/area/{lat}/{lon}", s.AreaHandler)
	r.GET("/ontology/chain/{lat}/{lon}", s.ChainHandler)
	r.POST("/ontology/multiarea", s.MultiAreaHandler)
	r.Handle(http.MethodGet, "/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))

	srv := &fasthttp.Server{
		ReadTimeout:        time.Second,
		MaxRequestBodySize: MaxBodySize,
		Handler:            r.Handler,
	}

	go func() {
		log.Info("Server listening", "address", address)
		if err := srv.ListenAndServe(address); err != nil {
			stdlog.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// wait cancel
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return srv.ShutdownWithContext(shutdownCtx)
}

type server struct {
	loc *locator.Locator

	metricAreaCallCount      metric.Int64Counter
	metricAreaMultiCallCount metric.Int64Counter
	metricAreasLocated       metric.Int64Counter
}

var reqPointsPool = sync.Pool{
	New: func() any {
		return [][2]float64{}
	},
}

func (s *server) point(ctx *fasthttp.RequestCtx) (lat, lon float64, ok bool) {
	latS := ctx.UserValue("lat").(string)
	lonS := ctx.UserValue("lon").(string)

	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(lonS, 64)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		return 0, 0, false
	}
	return lat, lon, true
}

func (s *server) AreaHandler(ctx *fasthttp.RequestCtx) {
	s.metricAreaCallCount.Add(ctx, 1)

	lat, lon, ok := s.point(ctx)
	if !ok {
		return
	}

	area, ok := s.loc.Find(lat, lon)
	if !ok {
		ctx.Response.SetStatusCode(http.StatusNoContent)
		return
	}
	s.metricAreasLocated.Add(ctx, 1)

	writeJSON(ctx, area)
}

// ChainHandler responds with the tightest area containing the point
// followed by its ancestors up to the root.
func (s *server) ChainHandler(ctx *fasthttp.RequestCtx) {
	s.metricAreaCallCount.Add(ctx, 1)

	lat, lon, ok := s.point(ctx)
	if !ok {
		return
	}

	area, ok := s.loc.Find(lat, lon)
	if !ok {
		ctx.Response.SetStatusCode(http.StatusNoContent)
		return
	}
	s.metricAreasLocated.Add(ctx, 1)

	writeJSON(ctx, s.loc.Chain(area.ID))
}

func (s *server) MultiAreaHandler(ctx *fasthttp.RequestCtx) {
	s.metricAreaMultiCallCount.Add(ctx, 1)

	req := reqPointsPool.Get().([][2]float64) // lat, lon
	req = req[:0]
	// unmarshal may reallocate; put back whatever it grew to
	defer func() { reqPointsPool.Put(req) }()

	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return
	}

	s.metricAreasLocated.Add(ctx, int64(len(req)))

	res := make([]geomodel.Area, 0, len(req))
	for _, p := range req {
		area, _ := s.loc.Find(p[0], p[1])
		res = append(res, area)
	}

	writeJSON(ctx, res)
}

func writeJSON(ctx *fasthttp.RequestCtx, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(fmt.Sprintf("failed to marshal response: %s", err))
		return
	}

	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetStatusCode(http.StatusOK)
	ctx.Response.SetBody(out)
}
