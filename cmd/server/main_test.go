package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	acfg "github.com/linnemanlabs/carepath/internal/cfg"
	"github.com/linnemanlabs/carepath/internal/triage"
)

func TestNotifySystemd_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	err := notifySystemd()
	if err == nil {
		t.Fatal("expected error when NOTIFY_SOCKET is empty")
	}
	if !strings.Contains(err.Error(), "NOTIFY_SOCKET not set") {
		t.Errorf("error = %q, want substring %q", err, "NOTIFY_SOCKET not set")
	}
}

func TestNotifySystemd_InvalidPath(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", filepath.Join(t.TempDir(), "nonexistent.sock"))

	err := notifySystemd()
	if err == nil {
		t.Fatal("expected error for nonexistent socket")
	}
	if !strings.Contains(err.Error(), "dial failed") {
		t.Errorf("error = %q, want substring %q", err, "dial failed")
	}
}

func TestNotifySystemd_Success(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "notify.sock")

	// Create a real unixgram listener.
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(context.Background(), "unixgram", sockPath)
	if err != nil {
		t.Fatalf("listen unixgram: %v", err)
	}
	defer func() { _ = conn.Close() }()

	t.Setenv("NOTIFY_SOCKET", sockPath)

	if err := notifySystemd(); err != nil {
		t.Fatalf("notifySystemd() = %v, want nil", err)
	}

	buf := make([]byte, 256)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read from socket: %v", err)
	}

	got := string(buf[:n])
	if got != "READY=1" {
		t.Errorf("payload = %q, want %q", got, "READY=1")
	}
}

const tinyArtifact = `{
	"classes": ["Common Cold", "Fungal infection"],
	"vocabulary": {"sneezing": 0, "itching": 1},
	"idf": [1.0, 1.0],
	"ngram_max": 1,
	"coef": [[2.0, -1.0], [-1.0, 2.0]],
	"intercept": [0.0, 0.0]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuildClassifier_LinearFile(t *testing.T) {
	t.Parallel()

	c := &acfg.Config{
		Classifier:   acfg.ClassifierLinear,
		ModelPath:    writeFile(t, "model.json", tinyArtifact),
		MetadataPath: filepath.Join(t.TempDir(), "missing.json"),
	}
	clf, err := buildClassifier(context.Background(), c, log.Nop())
	if err != nil {
		t.Fatalf("buildClassifier: %v", err)
	}

	preds, err := clf.Classify(context.Background(), "constant itching on my arm")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	ranked, err := triage.Rank(preds, 1)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if ranked[0].Label != "Fungal infection" {
		t.Errorf("top label = %q, want Fungal infection", ranked[0].Label)
	}
}

func TestBuildClassifier_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     acfg.Config
		wantSub string
	}{
		{"missing model file", acfg.Config{Classifier: acfg.ClassifierLinear, ModelPath: "/nonexistent/model.json"}, "load model"},
		{"bad remote scheme", acfg.Config{Classifier: acfg.ClassifierRemote, ClassifierURL: "ftp://x", ClassifierTimeout: time.Second}, "remote classifier"},
		{"claude without labels", acfg.Config{Classifier: acfg.ClassifierClaude, ClaudeAPIKey: "k", LabelsPath: "/nonexistent/labels.yaml"}, "claude labels"},
		{"unknown backend", acfg.Config{Classifier: "bayes"}, "unknown classifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := buildClassifier(context.Background(), &tt.cfg, log.Nop())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestBuildClassifier_Claude(t *testing.T) {
	t.Parallel()

	c := &acfg.Config{
		Classifier:   acfg.ClassifierClaude,
		ClaudeAPIKey: "sk-test",
		ClaudeModel:  "claude-sonnet-4-20250514",
		LabelsPath:   writeFile(t, "labels.yaml", "- Migraine\n- Common Cold\n"),
	}
	if _, err := buildClassifier(context.Background(), c, log.Nop()); err != nil {
		t.Fatalf("buildClassifier: %v", err)
	}
}

func TestLoadTables(t *testing.T) {
	t.Parallel()

	t.Run("defaults with emergency number", func(t *testing.T) {
		t.Parallel()
		tables, err := loadTables(&acfg.Config{EmergencyNumber: "911"})
		if err != nil {
			t.Fatalf("loadTables: %v", err)
		}
		if tables.EmergencyNumber != "911" {
			t.Errorf("EmergencyNumber = %q, want 911", tables.EmergencyNumber)
		}
		if !strings.Contains(triage.NewEngine(tables).Disclaimer(), "call 911") {
			t.Error("disclaimer does not quote the configured number")
		}
	})

	t.Run("file override", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "tables.yaml", `critical: ["Chest Pain"]
emergent: ["high fever"]
urgent: ["vomiting"]
specialties:
  - keyword: heart
    specialty: Cardiology
`)
		tables, err := loadTables(&acfg.Config{TablesPath: path, EmergencyNumber: "112"})
		if err != nil {
			t.Fatalf("loadTables: %v", err)
		}
		if len(tables.Critical) != 1 || tables.Critical[0] != "chest pain" {
			t.Errorf("Critical = %v, want [chest pain]", tables.Critical)
		}
		if tables.EmergencyNumber != "112" {
			t.Errorf("EmergencyNumber = %q, want 112", tables.EmergencyNumber)
		}
	})

	t.Run("bad file", func(t *testing.T) {
		t.Parallel()
		if _, err := loadTables(&acfg.Config{TablesPath: "/nonexistent/tables.yaml"}); err == nil {
			t.Fatal("expected error")
		}
	})
}
