// Package source loads orbital rows into a model.Table from the supported
// inputs: a CSV export or a PostgreSQL database holding the orbit and phase
// tables.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalsfoundry/tle-generator/model"
)

// Source materializes the orbit⋈phase join result.
type Source interface {
	Load(ctx context.Context) (model.Table, error)
}

// Kind names a source implementation.
type Kind string

const (
	KindCSV      Kind = "csv"
	KindPostgres Kind = "postgres"
)

// ParseKind accepts the CLI spelling of a source kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "":
		return KindCSV, nil
	case "postgres", "postgresql", "pg":
		return KindPostgres, nil
	default:
		return "", fmt.Errorf("unknown source kind %q (want csv or postgres)", s)
	}
}
