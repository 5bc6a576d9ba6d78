// Package config provides configuration models and helpers for compound
// search jobs.
//
// This file adds a lightweight linter/validator for Job values. It performs
// static checks over a decoded Job and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Job.
//
// Path is a dotted path into the config (e.g. "database.kind",
// "identifiers.path"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateJob performs static validation / linting of a Job.
//
// It does not mutate the job. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	j, err := config.Load(path)
//	if err != nil { ... }
//	issues := config.ValidateJob(j)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidateJob(j Job) []Issue {
	var issues []Issue

	// Top-level job checks.
	if strings.TrimSpace(j.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "name",
			Message:  "name must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateDatabase(j.Database)...)
	issues = append(issues, validateQuery(j.Query)...)
	issues = append(issues, validateIdentifiers(j.Identifiers)...)
	issues = append(issues, validateSearch(j.Search)...)
	issues = append(issues, validateMetrics(j.Metrics)...)

	return issues
}

// validateDatabase validates the registry connection configuration.
func validateDatabase(d Database) []Issue {
	var issues []Issue

	// Kind is required.
	if strings.TrimSpace(d.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.kind",
			Message:  "database.kind must not be empty",
		})
		return issues
	}

	// Known backend kinds. Unknown kinds are warnings (for forward
	// compatibility with backends registered elsewhere).
	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[d.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "database.kind",
			Message:  fmt.Sprintf("unknown database kind %q; ensure a matching backend is registered", d.Kind),
		})
	}

	if strings.TrimSpace(d.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database.dsn",
			Message:  "database.dsn must not be empty; set it in the file or via DB_URL",
		})
	}
	if d.Bind != "" {
		if strings.ContainsAny(d.Bind, ": \t") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "database.bind",
				Message:  fmt.Sprintf("bind name %q must be given without the leading colon and without whitespace", d.Bind),
			})
		}
	}
	if d.Secret != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "database.secret",
			Message:  "secret is set in the job file; prefer injecting it via DB_KEY",
		})
	}

	return issues
}

// validateQuery validates the SQL template configuration.
func validateQuery(q Query) []Issue {
	var issues []Issue

	if strings.TrimSpace(q.SQL) == "" && strings.TrimSpace(q.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "query",
			Message:  "either query.sql or query.path must be set",
		})
		return issues
	}
	if q.SQL != "" && q.Path != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "query",
			Message:  "both query.sql and query.path are set; query.path wins",
		})
	}
	if q.SQL != "" && !strings.Contains(strings.ToUpper(q.SQL), "SELECT") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "query.sql",
			Message:  "query does not look like a SELECT statement; output column names cannot be derived",
		})
	}

	return issues
}

// validateIdentifiers validates the identifier-list source.
func validateIdentifiers(i Identifiers) []Issue {
	var issues []Issue

	if strings.TrimSpace(i.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "identifiers.path",
			Message:  "identifiers.path must not be empty",
		})
	}
	if i.Encoding != "" {
		known := map[string]struct{}{
			"utf-8":        {},
			"windows-1252": {},
			"latin-1":      {},
			"iso-8859-1":   {},
		}
		if _, ok := known[strings.ToLower(i.Encoding)]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "identifiers.encoding",
				Message:  fmt.Sprintf("unsupported encoding %q", i.Encoding),
			})
		}
	}

	return issues
}

// validateSearch validates row-policy and structure-column settings.
func validateSearch(s Search) []Issue {
	var issues []Issue

	switch s.RowPolicy {
	case "", "take-first", "exactly-one":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "search.row_policy",
			Message:  fmt.Sprintf("unknown row policy %q; want take-first or exactly-one", s.RowPolicy),
		})
	}
	if s.ProgressEvery < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "search.progress_every",
			Message:  "progress_every must not be negative",
		})
	}

	return issues
}

// validateMetrics validates the optional metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires metrics.pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend has no address configured; the client default will be used",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; want pushgateway, datadog, or none", m.Backend),
		})
	}

	return issues
}
