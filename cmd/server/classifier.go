package main

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/go-core/log"

	acfg "github.com/linnemanlabs/carepath/internal/cfg"
	"github.com/linnemanlabs/carepath/internal/classifier/claude"
	"github.com/linnemanlabs/carepath/internal/classifier/linear"
	"github.com/linnemanlabs/carepath/internal/classifier/remote"
	"github.com/linnemanlabs/carepath/internal/modelstore/pgstore"
	"github.com/linnemanlabs/carepath/internal/triage"
)

// buildClassifier selects the classifier backend.
func buildClassifier(ctx context.Context, c *acfg.Config, L log.Logger) (triage.Classifier, error) {
	switch c.Classifier {
	case acfg.ClassifierLinear:
		if c.DatabaseURL != "" {
			store, err := pgstore.New(ctx, c.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("model store: %w", err)
			}
			// the artifact is loaded once; the pool is not needed afterwards
			defer store.Close()
			clf, err := store.LoadClassifier(ctx, c.ModelName)
			if err != nil {
				return nil, fmt.Errorf("load model %q: %w", c.ModelName, err)
			}
			L.Info(ctx, "loaded classifier", "backend", "linear", "source", "postgres", "model_name", c.ModelName, "classes", len(clf.Classes()))
			return clf, nil
		}
		clf, err := linear.Load(c.ModelPath, c.MetadataPath)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		L.Info(ctx, "loaded classifier", "backend", "linear", "source", "file", "model_path", c.ModelPath, "classes", len(clf.Classes()))
		return clf, nil

	case acfg.ClassifierRemote:
		clf, err := remote.New(c.ClassifierURL, c.ClassifierTimeout)
		if err != nil {
			return nil, fmt.Errorf("remote classifier: %w", err)
		}
		L.Info(ctx, "initialized classifier", "backend", "remote", "endpoint", c.ClassifierURL)
		return clf, nil

	case acfg.ClassifierClaude:
		labels, err := claude.LoadLabels(c.LabelsPath)
		if err != nil {
			return nil, fmt.Errorf("claude labels: %w", err)
		}
		clf, err := claude.New(c.ClaudeAPIKey, c.ClaudeModel, labels)
		if err != nil {
			return nil, fmt.Errorf("claude classifier: %w", err)
		}
		L.Info(ctx, "initialized classifier", "backend", "claude", "model", c.ClaudeModel, "labels", len(labels))
		return clf, nil
	}

	return nil, fmt.Errorf("unknown classifier %q", c.Classifier)
}

// loadTables returns the keyword tables with the configured emergency number.
func loadTables(c *acfg.Config) (*triage.Tables, error) {
	tables := triage.DefaultTables()
	if c.TablesPath != "" {
		var err error
		if tables, err = triage.LoadTables(c.TablesPath); err != nil {
			return nil, err
		}
	}
	if c.EmergencyNumber != "" {
		tables.EmergencyNumber = c.EmergencyNumber
	}
	return tables, nil
}
