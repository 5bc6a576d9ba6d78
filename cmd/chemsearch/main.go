package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chemsearch/internal/config"
	"chemsearch/internal/idlist"
	"chemsearch/internal/metrics"
	"chemsearch/internal/metrics/datadog"
	"chemsearch/internal/metrics/prompush"
	"chemsearch/internal/registry"
	"chemsearch/internal/search"

	// register all backends with the registry factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "chemsearch/internal/registry/all"
)

// errValidateOnly signals the -validate early exit; it is not a failure.
var errValidateOnly = errors.New("validate only")

// main is the entry point for the chemsearch binary. It parses flags and
// delegates to run so that deferred cleanup (metrics flush, output close)
// happens on every exit path, including failures.
func main() {
	var (
		cfgPath           string
		idsPath           string
		idsColumn         string
		idsEncoding       string
		queryText         string
		queryPath         string
		dbKind            string
		dbDSN             string
		dbBind            string
		structureCol      string
		rowPolicy         string
		format            string
		outPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "job config JSON path")
	flag.StringVar(&idsPath, "ids", "", "identifier list file (overrides config)")
	flag.StringVar(&idsColumn, "ids-column", "", "CSV column holding identifiers; empty means one per line")
	flag.StringVar(&idsEncoding, "ids-encoding", "", "identifier file encoding (e.g. windows-1252)")
	flag.StringVar(&queryText, "query", "", "inline SQL template (overrides config)")
	flag.StringVar(&queryPath, "query-file", "", "SQL template file (overrides config)")
	flag.StringVar(&dbKind, "db-kind", "", "registry backend: postgres, mssql, mysql, sqlite")
	flag.StringVar(&dbDSN, "dsn", "", "database DSN (overrides config and DB_URL)")
	flag.StringVar(&dbBind, "bind", "", "bind-marker name without the colon (default id)")
	flag.StringVar(&structureCol, "structure-col", "", "connection-table column name (default MOL_CTFILE)")
	flag.StringVar(&rowPolicy, "row-policy", "", "row policy: take-first or exactly-one")
	flag.StringVar(&format, "format", "csv", "output format: csv or json")
	flag.StringVar(&outPath, "out", "", "output file; empty means stdout")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "DogStatsD address for the datadog backend")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	var job config.Job
	if cfgPath != "" {
		var err error
		job, err = config.Load(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}
	config.ApplyEnv(&job)
	overlayFlags(&job, flagOverrides{
		idsPath: idsPath, idsColumn: idsColumn, idsEncoding: idsEncoding,
		queryText: queryText, queryPath: queryPath,
		dbKind: dbKind, dbDSN: dbDSN, dbBind: dbBind,
		structureCol: structureCol, rowPolicy: rowPolicy,
		metricsBackend: metricsBackendFlg,
		pushGatewayURL: pushGatewayURLFlg,
		datadogAddr:    datadogAddrFlg,
	})
	if job.Name == "" {
		job.Name = "chemsearch"
	}

	err := run(job, runFlags{
		validateOnly: validate,
		format:       format,
		outPath:      outPath,
		verbose:      *verbose,
	})
	switch {
	case err == nil, errors.Is(err, errValidateOnly):
		return
	default:
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// runFlags carries the CLI switches that survive past config resolution.
type runFlags struct {
	validateOnly bool
	format       string
	outPath      string
	verbose      bool
}

// run validates the job, wires metrics and logging, executes the batch, and
// writes the output. It returns instead of exiting so deferred cleanup runs:
// the metrics flush in particular must happen for failed batches too, since
// the failure counter is recorded before the error surfaces.
func run(job config.Job, f runFlags) error {
	issues := config.ValidateJob(job)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		return fmt.Errorf("configuration is invalid")
	}
	if f.validateOnly {
		log.Printf("Configuration is valid")
		return errValidateOnly
	}

	setupMetrics(job, f.verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	logger := zap.NewNop()
	if f.verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
			defer logger.Sync()
		}
	}

	query, err := job.QueryText()
	if err != nil {
		return err
	}

	rawIDs, err := idlist.Read(job.Identifiers.Path, idlist.Options{
		Column:   job.Identifiers.Column,
		Encoding: job.Identifiers.Encoding,
	})
	if err != nil {
		return err
	}
	if len(rawIDs) == 0 {
		return fmt.Errorf("no identifiers found in %s", job.Identifiers.Path)
	}
	ids := make([]any, len(rawIDs))
	for i, id := range rawIDs {
		ids[i] = id
	}

	policy, err := search.ParseRowPolicy(job.Search.RowPolicy)
	if err != nil {
		return err
	}

	opts := search.Options{
		Policy:          policy,
		StructureColumn: job.Search.StructureColumn,
		Logger:          logger,
		Job:             job.Name,
	}
	if n := job.Search.ProgressEvery; n > 0 {
		opts.Progress = func(done, total int) {
			if done%n == 0 || done == total {
				log.Printf("progress: %d/%d identifiers", done, total)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := search.Run(ctx, registry.Config{
		Kind:   job.Database.Kind,
		DSN:    job.Database.DSN,
		User:   job.Database.User,
		Secret: job.Database.Secret,
		Bind:   job.Database.Bind,
	}, opts, query, ids)
	if err != nil {
		return err
	}

	out := os.Stdout
	if f.outPath != "" {
		of, err := os.Create(f.outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer of.Close()
		out = of
	}

	switch f.format {
	case "csv":
		err = writeCSV(out, result)
	case "json":
		err = writeJSON(out, result)
	default:
		return fmt.Errorf("unknown output format %q; want csv or json", f.format)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if f.verbose {
		log.Printf("completed %d rows in %s", result.Len(), time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

// flagOverrides carries the CLI flags that overlay the job file. Only
// non-empty values win.
type flagOverrides struct {
	idsPath, idsColumn, idsEncoding string
	queryText, queryPath            string
	dbKind, dbDSN, dbBind           string
	structureCol, rowPolicy         string
	metricsBackend                  string
	pushGatewayURL, datadogAddr     string
}

func overlayFlags(j *config.Job, f flagOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&j.Identifiers.Path, f.idsPath)
	set(&j.Identifiers.Column, f.idsColumn)
	set(&j.Identifiers.Encoding, f.idsEncoding)
	set(&j.Query.SQL, f.queryText)
	set(&j.Query.Path, f.queryPath)
	set(&j.Database.Kind, f.dbKind)
	set(&j.Database.DSN, f.dbDSN)
	set(&j.Database.Bind, f.dbBind)
	set(&j.Search.StructureColumn, f.structureCol)
	set(&j.Search.RowPolicy, f.rowPolicy)
	set(&j.Metrics.Backend, f.metricsBackend)
	set(&j.Metrics.PushgatewayURL, f.pushGatewayURL)
	set(&j.Metrics.DatadogAddr, f.datadogAddr)
}

// setupMetrics installs the configured metrics backend, falling back to the
// nop backend on any failure. Backend selection: flag/config → env → none.
func setupMetrics(job config.Job, verbose bool) {
	backendName := job.Metrics.Backend
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: config → env → default.
		gwURL := job.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(job.Name, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job.Name)
		metrics.SetBackend(b)

	case "datadog":
		addr := job.Metrics.DatadogAddr
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "chemsearch.",
			GlobalTags: []string{"service:" + job.Name},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
