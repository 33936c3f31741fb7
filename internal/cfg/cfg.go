package cfg

import (
	"errors"
	"flag"
	"fmt"
	"time"
)

// Classifier backends selectable with -classifier.
const (
	ClassifierLinear = "linear"
	ClassifierRemote = "remote"
	ClassifierClaude = "claude"
)

// Config holds the application flags. go-core packages register their own
// configs alongside it.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int

	Classifier        string
	ModelPath         string
	MetadataPath      string
	DatabaseURL       string
	ModelName         string
	ClassifierURL     string
	ClassifierTimeout time.Duration
	ClaudeAPIKey      string
	ClaudeModel       string
	LabelsPath        string

	DefaultTopN     int
	MaxTopN         int
	TablesPath      string
	EmergencyNumber string

	OverpassEndpoint  string
	NominatimEndpoint string
	GeoUserAgent      string
	GeoRPS            float64
	FacilityCacheTTL  time.Duration

	APIToken        string
	SlackWebhookURL string
	EscalateAtESI   int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")

	fs.StringVar(&c.Classifier, "classifier", ClassifierLinear, "classifier backend: linear, remote or claude")
	fs.StringVar(&c.ModelPath, "model-path", "models/symptom_classifier.json", "path to the linear classifier artifact")
	fs.StringVar(&c.MetadataPath, "metadata-path", "models/model_metadata.json", "path to the classifier metadata (optional file)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL; when set the linear artifact is loaded from the database")
	fs.StringVar(&c.ModelName, "model-name", "symptom_classifier", "artifact name to load from the database")
	fs.StringVar(&c.ClassifierURL, "classifier-url", "", "base URL of the remote classifier service")
	fs.DurationVar(&c.ClassifierTimeout, "classifier-timeout", 10*time.Second, "timeout for remote classifier calls")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for the Claude classifier")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use")
	fs.StringVar(&c.LabelsPath, "labels-path", "", "YAML list of condition labels scored by the Claude classifier")

	fs.IntVar(&c.DefaultTopN, "default-top-n", 3, "candidates returned when a request sets no top_n")
	fs.IntVar(&c.MaxTopN, "max-top-n", 10, "upper bound on top_n (requests above it are clamped)")
	fs.StringVar(&c.TablesPath, "tables-path", "", "YAML file overriding the built-in keyword tables")
	fs.StringVar(&c.EmergencyNumber, "emergency-number", "108", "emergency number quoted in actions and the disclaimer")

	fs.StringVar(&c.OverpassEndpoint, "overpass-endpoint", "https://overpass-api.de/api/interpreter", "Overpass API endpoint for nearby facilities")
	fs.StringVar(&c.NominatimEndpoint, "nominatim-endpoint", "https://nominatim.openstreetmap.org/search", "Nominatim endpoint for place search")
	fs.StringVar(&c.GeoUserAgent, "geo-user-agent", "carepath/1.0", "User-Agent sent to Overpass and Nominatim")
	fs.Float64Var(&c.GeoRPS, "geo-rps", 1, "max upstream map requests per second")
	fs.DurationVar(&c.FacilityCacheTTL, "facility-cache-ttl", 10*time.Minute, "how long facility lookups are cached")

	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on /api routes (empty = no auth)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for escalation notices")
	fs.IntVar(&c.EscalateAtESI, "escalate-at-esi", 2, "notify for assessments at or below this ESI level (0 disables)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	switch c.Classifier {
	case ClassifierLinear:
		if c.DatabaseURL == "" && c.ModelPath == "" {
			errs = append(errs, errors.New("MODEL_PATH or DATABASE_URL is required for the linear classifier"))
		}
		if c.DatabaseURL != "" && c.ModelName == "" {
			errs = append(errs, errors.New("MODEL_NAME is required when DATABASE_URL is set"))
		}
	case ClassifierRemote:
		if c.ClassifierURL == "" {
			errs = append(errs, errors.New("CLASSIFIER_URL is required for the remote classifier"))
		}
		if c.ClassifierTimeout <= 0 {
			errs = append(errs, fmt.Errorf("invalid CLASSIFIER_TIMEOUT %s (must be positive)", c.ClassifierTimeout))
		}
	case ClassifierClaude:
		if c.ClaudeAPIKey == "" {
			errs = append(errs, errors.New("CLAUDE_API_KEY is required for the claude classifier"))
		}
		if c.ClaudeModel == "" {
			errs = append(errs, errors.New("CLAUDE_MODEL is required for the claude classifier"))
		}
		if c.LabelsPath == "" {
			errs = append(errs, errors.New("LABELS_PATH is required for the claude classifier"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid CLASSIFIER %q (must be linear, remote or claude)", c.Classifier))
	}

	if c.MaxTopN < 1 || c.MaxTopN > 100 {
		errs = append(errs, fmt.Errorf("invalid MAX_TOP_N %d (must be 1..100)", c.MaxTopN))
	}
	if c.DefaultTopN < 1 || c.DefaultTopN > c.MaxTopN {
		errs = append(errs, fmt.Errorf("invalid DEFAULT_TOP_N %d (must be 1..MAX_TOP_N)", c.DefaultTopN))
	}
	if c.EmergencyNumber == "" {
		errs = append(errs, errors.New("EMERGENCY_NUMBER is required"))
	}

	if c.OverpassEndpoint == "" {
		errs = append(errs, errors.New("OVERPASS_ENDPOINT is required"))
	}
	if c.NominatimEndpoint == "" {
		errs = append(errs, errors.New("NOMINATIM_ENDPOINT is required"))
	}
	if c.GeoUserAgent == "" {
		errs = append(errs, errors.New("GEO_USER_AGENT is required"))
	}
	if c.GeoRPS <= 0 {
		errs = append(errs, fmt.Errorf("invalid GEO_RPS %v (must be positive)", c.GeoRPS))
	}
	if c.FacilityCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid FACILITY_CACHE_TTL %s (must be positive)", c.FacilityCacheTTL))
	}

	if c.EscalateAtESI < 0 || c.EscalateAtESI > 5 {
		errs = append(errs, fmt.Errorf("invalid ESCALATE_AT_ESI %d (must be 0..5)", c.EscalateAtESI))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
