package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/royalcat/geontology/geoparser"
	"github.com/royalcat/geontology/internal/stats"
	"github.com/royalcat/geontology/internal/telemetry"
	"github.com/royalcat/geontology/locator"
	"github.com/royalcat/geontology/ontology"
	"github.com/royalcat/geontology/ontosave"
	"github.com/royalcat/geontology/server"
	"github.com/royalcat/geontology/typer"

	_ "net/http/pprof"

	_ "github.com/KimMachineGun/automemlimit"
	_ "go.uber.org/automaxprocs"
)

const appName = "geontology"

func main() {
	app := &cli.App{
		Name:        appName,
		Description: "Administrative ontology builder and point-in-area api",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the point-in-area api over a built ontology",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "ontology",
						Aliases:   []string{"o"},
						Required:  true,
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name: "telemetry.endpoint",
					},
				},
				Action: serve,
			},
			{
				Name:    "build",
				Aliases: []string{"b"},
				Usage:   "build an ontology from an osm pbf extract",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "input",
						Aliases:   []string{"i"},
						Required:  true,
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:      "output",
						Aliases:   []string{"o"},
						Required:  true,
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:    "country-code",
						Aliases: []string{"c"},
						Usage:   "force a country code instead of detecting per area",
					},
					&cli.StringSliceFlag{
						Name:    "languages",
						Aliases: []string{"l"},
						Usage:   "extra label languages",
					},
					&cli.BoolFlag{
						Name:  "disable-places",
						Usage: "skip synthesizing areas for orphan point places",
					},
					&cli.StringFlag{
						Name:      "rules",
						TakesFile: true,
						Usage:     "custom typing rules file, the embedded table is used when empty",
					},
					&cli.IntFlag{
						Name:        "threads",
						Aliases:     []string{"t"},
						DefaultText: "max",
					},
					&cli.StringFlag{
						Name: "stats-report",
					},
					&cli.StringFlag{
						Name: "telemetry.endpoint",
					},
					&cli.StringFlag{
						Name:        "pprof.listen",
						DefaultText: "",
					},
					&cli.BoolFlag{
						Name: "pprof.profile",
					},
					&cli.BoolFlag{
						Name: "pprof.heap",
					},
				},
				Action: build,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func build(ctx *cli.Context) error {
	logger := slog.Default()

	tel, err := telemetry.Setup(ctx.Context, appName, ctx.String("telemetry.endpoint"))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if tel != nil {
		defer tel.Shutdown(ctx.Context)
		defer tel.Flush(ctx.Context)
		logger = slog.Default()
	}

	threads := ctx.Int("threads")
	if threads == 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	logger = logger.With("threads", threads)

	if pprofListen := ctx.String("pprof.listen"); pprofListen != "" {
		go func() {
			logger.Info("Starting pprof server")
			if err := http.ListenAndServe(pprofListen, nil); err != nil {
				logger.Error("Error starting pprof server", "error", err)
			}
		}()
	}

	if ctx.Bool("pprof.profile") {
		f, err := os.OpenFile("profile.cpu.pprof", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("error creating pprof file: %w", err)
		}
		err = pprof.StartCPUProfile(f)
		if err != nil {
			return fmt.Errorf("error starting pprof: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	var collector *stats.Collector
	if ctx.String("stats-report") != "" {
		collector, err = stats.NewCollector(time.Second*5, logger)
		if err != nil {
			return fmt.Errorf("error creating stats collector: %w", err)
		}
		collector.Start()
	}

	var rules *typer.Rules
	if rulesFile := ctx.String("rules"); rulesFile != "" {
		rules, err = typer.LoadFile(rulesFile)
	} else {
		rules, err = typer.Default()
	}
	if err != nil {
		return fmt.Errorf("error loading typing rules: %w", err)
	}

	input := ctx.String("input")
	parser := geoparser.New(threads, logger)
	areas, places, err := parser.ParseFile(ctx.Context, input)
	if err != nil {
		return fmt.Errorf("error parsing osm: %w", err)
	}

	built, buildStats, err := ontology.Build(areas, places, ontology.Config{
		CountryCode:   ctx.String("country-code"),
		DisablePlaces: ctx.Bool("disable-places"),
		Languages:     ctx.StringSlice("languages"),
		Rules:         rules,
		Threads:       threads,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("error building ontology: %w", err)
	}

	logger.Info("build complete",
		"areas", humanize.Comma(int64(buildStats.AreaCount)),
		"typed", humanize.Comma(int64(buildStats.TypedAreaCount)),
		"without_country", humanize.Comma(int64(buildStats.AreasWithoutCountry)),
	)

	if ctx.Bool("pprof.heap") {
		if err := writeHeapProfile("profile"); err != nil {
			return fmt.Errorf("error writing heap profile: %s", err.Error())
		}
	}

	saveFile := ctx.String("output")
	if !strings.HasSuffix(saveFile, ".ont") {
		saveFile = saveFile + ".ont"
	}

	logger.Info("Saving ontology", "file", saveFile)
	err = ontosave.SaveToFile(saveFile, ontosave.Ontology{
		Meta: ontosave.Metadata{
			Version:     1,
			Languages:   ctx.StringSlice("languages"),
			Source:      input,
			DateCreated: time.Now(),
		},
		Areas: built,
		Stats: buildStats,
	})
	if err != nil {
		return fmt.Errorf("failed to save ontology: %s", err.Error())
	}

	if collector != nil {
		summary := collector.Stop()
		if err := summary.SaveToFile(ctx.String("stats-report")); err != nil {
			logger.Error("failed to write stats report", "error", err.Error())
		}
	}

	return nil
}

func writeHeapProfile(name string) error {
	f, err := os.Create(name + ".heap.prof")
	if err != nil {
		return err
	}
	defer f.Close()
	return pprof.WriteHeapProfile(f)
}

func serve(ctx *cli.Context) error {
	runCtx, cancel := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tel, err := telemetry.Setup(runCtx, appName, ctx.String("telemetry.endpoint"))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if tel != nil {
		defer tel.Shutdown(ctx.Context)
	}

	slog.Info("Loading ontology")
	loc, err := locator.LoadFromFile(ctx.String("ontology"), slog.Default())
	if err != nil {
		return err
	}

	return server.Run(runCtx, ctx.String("listen"), loc)
}
