// Package pgstore loads exported classifier models from PostgreSQL.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/carepath/internal/classifier/linear"
	"github.com/linnemanlabs/carepath/internal/postgres"
	"github.com/linnemanlabs/carepath/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/carepath/internal/modelstore/pgstore")

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no model with the requested name exists.
var ErrNotFound = errors.New("model not found")

// Model is one stored classifier version.
type Model struct {
	ID        string
	Name      string
	Artifact  []byte
	Metadata  []byte
	CreatedAt time.Time
}

// Store reads and writes classifier artifacts in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, applies the schema, and returns a ready Store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Put stores a new version of the named model and returns its ID.
func (s *Store) Put(ctx context.Context, name string, artifact, metadata []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
		attribute.String("carepath.model.name", name),
	))
	defer span.End()

	if metadata == nil {
		metadata = []byte("null")
	}

	id := ulid.Make().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO classifier_models (id, name, artifact, metadata) VALUES ($1, $2, $3, $4)`,
		id, name, artifact, metadata)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("insert model: %w", err)
	}
	return id, nil
}

// LoadLatest returns the most recently stored version of the named model.
func (s *Store) LoadLatest(ctx context.Context, name string) (*Model, error) {
	ctx, span := tracer.Start(ctx, "pgstore.LoadLatest", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
		attribute.String("carepath.model.name", name),
	))
	defer span.End()

	var m Model
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, artifact, COALESCE(metadata, 'null'::jsonb), created_at
		   FROM classifier_models
		  WHERE name = $1
		  ORDER BY created_at DESC, id DESC
		  LIMIT 1`, name,
	).Scan(&m.ID, &m.Name, &m.Artifact, &m.Metadata, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("select model: %w", err)
	}

	span.SetAttributes(attribute.String("carepath.model.id", m.ID))
	return &m, nil
}

// LoadClassifier builds a linear classifier from the latest stored version
// of the named model.
func (s *Store) LoadClassifier(ctx context.Context, name string) (*linear.Classifier, error) {
	m, err := s.LoadLatest(ctx, name)
	if err != nil {
		return nil, err
	}
	return m.Classifier()
}

// Classifier decodes the stored artifact and metadata.
func (m *Model) Classifier() (*linear.Classifier, error) {
	a, err := linear.ParseArtifact(m.Artifact)
	if err != nil {
		return nil, err
	}

	var info triage.ModelInfo
	if len(m.Metadata) > 0 && string(m.Metadata) != "null" {
		if info, err = linear.ParseMetadata(m.Metadata); err != nil {
			return nil, err
		}
	}
	return linear.New(a, info)
}
