package config

import (
	"errors"
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.dsn").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static checks over c and returns every issue found. It
// does not mutate c.
//
//	cfg, err := config.Load(path)
//	if err != nil { ... }
//	issues := config.Validate(*cfg)
//	for _, iss := range issues {
//	    fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
//	if err := config.Err(issues); err != nil { ... }
func Validate(c Config) []Issue {
	var issues []Issue
	issues = append(issues, validateStorage(c.Storage, c.Demo.DryRun)...)
	issues = append(issues, validateLog(c.Log)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateDemo(c.Demo)...)
	return issues
}

// Err joins the error-severity issues into one error, or returns nil when
// there are none.
func Err(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}

func validateStorage(s Storage, dryRun bool) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}

	known := map[string]struct{}{
		"postgres": {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	// A dry run only prints SQL and never connects.
	if strings.TrimSpace(s.DSN) == "" && !dryRun {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}
	if s.MaxConns < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.max_conns",
			Message:  "max_conns must not be negative",
		})
	}
	return issues
}

func validateLog(l Log) []Issue {
	if _, err := parseLevel(l.Level); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "log.level",
			Message:  fmt.Sprintf("unknown log level %q; use debug, info, warn or error", l.Level),
		}}
	}
	return nil
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}

	if m.Backend != "" && m.Backend != "none" && strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "metrics.job is empty; the backend default will be used",
		})
	}
	return issues
}

func validateDemo(d Demo) []Issue {
	var issues []Issue

	if d.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "demo.workers",
			Message:  "workers must not be negative",
		})
	} else if d.Workers == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "demo.workers",
			Message:  "workers=0; inserts will run one at a time",
		})
	}
	if d.Figures < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "demo.figures",
			Message:  "figures must not be negative",
		})
	}
	return issues
}
