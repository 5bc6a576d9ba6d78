// Package config defines the canonical, JSON-serializable configuration model
// for the compound-search application. It is intentionally small, explicit,
// and dependency-free so that jobs can be loaded from disk (or other sources)
// and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in job files.
//  3. Secrets stay out of files: database credentials may be injected from
//     the process environment via ApplyEnv, overriding whatever the file
//     carries.
//
// Example (trimmed):
//
//	{
//	  "name":        "comas-lookup",
//	  "database":    { "kind": "postgres", "dsn": "postgresql://db:5432/registry" },
//	  "query":       { "path": "queries/by_regid.sql" },
//	  "identifiers": { "path": "ids.csv", "column": "Compound_Id" },
//	  "search":      { "row_policy": "take-first", "structure_column": "MOL_CTFILE" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Job describes one compound-search run. It is the top-level object decoded
// from a job file.
type Job struct {
	// Name identifies the run in logs and metric labels.
	Name string `json:"name"`

	// Database selects and configures the registry backend.
	Database Database `json:"database"`

	// Query carries the SQL template, inline or by file path.
	Query Query `json:"query"`

	// Identifiers describes where the identifier list comes from.
	Identifiers Identifiers `json:"identifiers"`

	// Search tunes row normalization and structure-column handling.
	Search Search `json:"search"`

	// Metrics optionally configures a metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Database holds registry connection parameters. User and Secret override
// credentials embedded in the DSN where the backend supports it; they are
// normally injected from the environment rather than written into job files.
type Database struct {
	// Kind selects the backend. Current values: "postgres", "mssql",
	// "mysql", "sqlite".
	Kind string `json:"kind"`

	// DSN is the backend-native connection string.
	DSN string `json:"dsn"`

	// User and Secret are injected credentials; see ApplyEnv.
	User   string `json:"user,omitempty"`
	Secret string `json:"secret,omitempty"`

	// Bind names the query template's placeholder without the leading
	// colon. Empty means "id".
	Bind string `json:"bind,omitempty"`
}

// Query holds the parameterized SQL template. Exactly one of SQL and Path
// should be set; Path wins when both are.
type Query struct {
	// SQL is the inline query template.
	SQL string `json:"sql,omitempty"`

	// Path points at a file containing the query template.
	Path string `json:"path,omitempty"`
}

// Identifiers describes the identifier-list source.
type Identifiers struct {
	// Path is the local file holding identifiers: CSV when Column is set,
	// otherwise one identifier per line.
	Path string `json:"path"`

	// Column names the CSV column to read identifiers from.
	Column string `json:"column,omitempty"`

	// Encoding names the file's character encoding when it is not UTF-8,
	// e.g. "windows-1252" for legacy registry exports.
	Encoding string `json:"encoding,omitempty"`
}

// Search tunes batch behavior.
type Search struct {
	// RowPolicy is "take-first" (default) or "exactly-one".
	RowPolicy string `json:"row_policy,omitempty"`

	// StructureColumn names the connection-table column; empty means
	// MOL_CTFILE.
	StructureColumn string `json:"structure_column,omitempty"`

	// ProgressEvery logs progress every N identifiers; 0 disables it.
	ProgressEvery int `json:"progress_every,omitempty"`
}

// Metrics selects an optional metrics backend.
type Metrics struct {
	// Backend is "pushgateway", "datadog", or "none"/empty.
	Backend string `json:"backend,omitempty"`

	// PushgatewayURL is the Pushgateway base URL for the "pushgateway"
	// backend.
	PushgatewayURL string `json:"pushgateway_url,omitempty"`

	// DatadogAddr is the DogStatsD address for the "datadog" backend.
	DatadogAddr string `json:"datadog_addr,omitempty"`
}

// Load decodes a Job from a JSON file.
func Load(path string) (Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("config: read: %w", err)
	}
	var j Job
	if err := json.Unmarshal(b, &j); err != nil {
		return Job{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return j, nil
}

// Environment variables recognized by ApplyEnv. They mirror the credential
// names used by the registry's legacy tooling.
const (
	EnvDSN    = "DB_URL"
	EnvUser   = "DB_USER"
	EnvSecret = "DB_KEY"
)

// ApplyEnv overlays database credentials from the process environment onto
// the job. Set variables win over file contents; unset variables leave the
// job untouched.
func ApplyEnv(j *Job) {
	if v := os.Getenv(EnvDSN); v != "" {
		j.Database.DSN = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		j.Database.User = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		j.Database.Secret = v
	}
}

// QueryText resolves the SQL template, reading Query.Path when it is set.
func (j Job) QueryText() (string, error) {
	if j.Query.Path != "" {
		b, err := os.ReadFile(j.Query.Path)
		if err != nil {
			return "", fmt.Errorf("config: read query: %w", err)
		}
		return string(b), nil
	}
	if j.Query.SQL == "" {
		return "", fmt.Errorf("config: no query template configured")
	}
	return j.Query.SQL, nil
}
