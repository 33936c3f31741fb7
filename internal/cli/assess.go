package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/carepath/internal/classifier/linear"
	"github.com/linnemanlabs/carepath/internal/classifier/remote"
	"github.com/linnemanlabs/carepath/internal/triage"
)

// ErrAssessmentFailed marks an assessment that was rejected or could not
// be completed. The message has already been printed.
var ErrAssessmentFailed = errors.New("assessment failed")

func newAssessCmd(a *app) *cobra.Command {
	var (
		topN    int
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "assess <symptoms>",
		Short: "Assess a symptom description",
		Long: `Run one triage against a local model artifact (or a remote classifier
when --classifier-url is set) and print severity, action, wait time and the
ranked candidate conditions.`,
		Example: `  carepath assess "severe chest pain and sweating"
  carepath assess --top-n 5 --json "itchy rash on both arms"`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bind(cmd.Flags(), "model-path", "metadata-path", "classifier-url")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			svc, err := a.service()
			if err != nil {
				return err
			}

			result, err := svc.Predict(ctx, triage.Query{Text: strings.Join(args, " "), TopN: topN})
			if err != nil {
				resp := triage.NewErrorResponse(err, svc.Disclaimer())
				if asJSON {
					_ = json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
				} else {
					printError(cmd.ErrOrStderr(), resp)
				}
				return fmt.Errorf("%w: %w", ErrAssessmentFailed, err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top-n", 0, "number of candidate conditions (default 3)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall time limit")
	cmd.Flags().String("model-path", "models/symptom_classifier.json", "path to the linear classifier artifact")
	cmd.Flags().String("metadata-path", "models/model_metadata.json", "path to the classifier metadata")
	cmd.Flags().String("classifier-url", "", "base URL of a remote classifier (overrides --model-path)")

	return cmd
}

// service assembles a triage service from the resolved configuration.
func (a *app) service() (*triage.Service, error) {
	tables, err := a.tables()
	if err != nil {
		return nil, err
	}

	var clf triage.Classifier
	if url := a.v.GetString("classifier-url"); url != "" {
		if clf, err = remote.New(url, 30*time.Second); err != nil {
			return nil, err
		}
	} else {
		if clf, err = linear.Load(a.v.GetString("model-path"), a.v.GetString("metadata-path")); err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
	}

	return triage.NewService(clf, triage.NewEngine(tables), log.Nop()), nil
}

// tables loads the keyword tables with the configured emergency number.
func (a *app) tables() (*triage.Tables, error) {
	tables := triage.DefaultTables()
	if path := a.v.GetString("tables-path"); path != "" {
		var err error
		if tables, err = triage.LoadTables(path); err != nil {
			return nil, err
		}
	}
	if n := a.v.GetString("emergency-number"); n != "" {
		tables.EmergencyNumber = n
	}
	return tables, nil
}
