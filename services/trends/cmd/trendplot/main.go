// Command trendplot charts monthly NYC job-posting trends.
//
// trendplot reads one or more posting datasets (JSON arrays or CSV files
// with a header row), filters them to a year and optional facet values,
// and writes the monthly job count or median salary as an SVG line chart.
//
//	trendplot -year 2023 -metric median_salary -facet Career_Level=Manager data_cleaned.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aclements/go-gg/table"
	"go.uber.org/zap"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/config"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/dataset"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/normalizer"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/processor"
)

// facetFlags collects repeated -facet key=value flags.
type facetFlags map[models.Facet]string

func (f facetFlags) String() string {
	var parts []string
	for _, facet := range models.Facets {
		if v, ok := f[facet]; ok {
			parts = append(parts, facet.Key()+"="+v)
		}
	}
	return strings.Join(parts, ",")
}

func (f facetFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("facet %q is not key=value", s)
	}
	facet, err := models.ParseFacet(strings.TrimSpace(key))
	if err != nil {
		return err
	}
	f[facet] = strings.TrimSpace(value)
	return nil
}

func main() {
	log.SetPrefix("trendplot: ")
	log.SetFlags(0)

	facets := facetFlags{}
	var (
		flagYear    = flag.Int("year", 0, "plot postings from `year` (default: latest year in the data)")
		flagMetric  = flag.String("metric", string(models.MetricJobCount), "plot `metric`: job_count or median_salary")
		flagDomain  = flag.String("domain", config.DomainYear, "x axis `domain`: year or extent")
		flagOut     = flag.String("o", "", "write output to `file` (default: stdout)")
		flagWidth   = flag.Int("width", 960, "chart width in pixels")
		flagHeight  = flag.Int("height", 500, "chart height in pixels")
		flagJSON    = flag.Bool("json", false, "output the summary as JSON instead of a plot")
		flagTable   = flag.Bool("table", false, "output the monthly points as a table instead of a plot")
		flagOptions = flag.Bool("options", false, "list the years and facet values in the data and exit")
		flagVerbose = flag.Bool("v", false, "log dataset loading")
	)
	flag.Var(facets, "facet", "filter by facet `key=value`; may be repeated")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] inputs...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *flagVerbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatal(err)
		}
		defer func() { _ = logger.Sync() }()
	}

	ctx := context.Background()
	ds, err := dataset.LoadAll(ctx, logger, normalizer.New(logger), dataset.FileSources(paths...)...)
	if err != nil {
		log.Fatal(err)
	}

	p, err := processor.NewTrendProcessor(logger, ds, nil, &config.Config{
		ChartDomain: *flagDomain,
		ChartWidth:  *flagWidth,
		ChartHeight: *flagHeight,
	})
	if err != nil {
		log.Fatal(err)
	}

	// Prepare for output.
	f := os.Stdout
	if *flagOut != "" {
		f, err = os.Create(*flagOut)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	}

	if *flagOptions {
		writeJSON(f, p.Options(ctx))
		return
	}

	year := *flagYear
	if year == 0 {
		years := ds.Years()
		if len(years) == 0 {
			log.Fatal("no postings with a valid posting month")
		}
		year = years[len(years)-1]
	}

	req := models.SummaryRequest{
		Selection: models.FilterSelection{Year: year, Facets: facets},
		Metric:    models.Metric(*flagMetric),
	}

	switch {
	case *flagJSON:
		resp, err := p.Summarize(ctx, req)
		if err != nil {
			log.Fatal(err)
		}
		writeJSON(f, resp)

	case *flagTable:
		resp, err := p.Summarize(ctx, req)
		if err != nil {
			log.Fatal(err)
		}
		table.Fprint(f, pointsTable(resp.Points))

	default:
		if err := p.Render(ctx, req, f); err != nil {
			log.Fatal(err)
		}
	}
}

func pointsTable(points []models.MonthlySummaryPoint) *table.Table {
	months := make([]string, len(points))
	counts := make([]int, len(points))
	medians := make([]float64, len(points))
	means := make([]float64, len(points))
	for i, pt := range points {
		months[i] = pt.Date.Format("2006-01")
		counts[i] = pt.JobCount
		medians[i] = pt.MedianSalary
		means[i] = pt.MeanSalary
	}
	return new(table.Builder).
		Add("month", months).
		Add("job count", counts).
		Add("median salary", medians).
		Add("mean salary", means).
		Done()
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}
