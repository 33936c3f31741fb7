package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linnemanlabs/carepath/internal/classifier/linear"
	"github.com/linnemanlabs/carepath/internal/modelstore/pgstore"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage classifier artifacts stored in PostgreSQL",
	}

	push := &cobra.Command{
		Use:   "push",
		Short: "Validate a local artifact and store it as the newest version",
		Example: `  carepath model push --database-url postgres://localhost/carepath \
    --model-path models/symptom_classifier.json --metadata-path models/model_metadata.json`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bind(cmd.Flags(), "database-url", "model-name", "model-path", "metadata-path")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbURL := a.v.GetString("database-url")
			if dbURL == "" {
				return errors.New("--database-url (or CAREPATH_DATABASE_URL) is required")
			}
			modelPath := a.v.GetString("model-path")
			metadataPath := a.v.GetString("metadata-path")

			// refuse artifacts the server would fail to load
			clf, err := linear.Load(modelPath, metadataPath)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}

			artifact, err := os.ReadFile(modelPath) //nolint:gosec // G304: operator-supplied path
			if err != nil {
				return fmt.Errorf("read model: %w", err)
			}
			var metadata []byte
			if metadataPath != "" {
				metadata, err = os.ReadFile(metadataPath) //nolint:gosec // G304: operator-supplied path
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("read metadata: %w", err)
				}
			}

			store, err := pgstore.New(cmd.Context(), dbURL)
			if err != nil {
				return fmt.Errorf("model store: %w", err)
			}
			defer store.Close()

			name := a.v.GetString("model-name")
			id, err := store.Put(cmd.Context(), name, artifact, metadata)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s version %s (%d classes)\n", name, id, len(clf.Classes()))
			return nil
		},
	}

	push.Flags().String("database-url", "", "PostgreSQL connection URL")
	push.Flags().String("model-name", "symptom_classifier", "name the artifact is stored under")
	push.Flags().String("model-path", "models/symptom_classifier.json", "path to the linear classifier artifact")
	push.Flags().String("metadata-path", "models/model_metadata.json", "path to the classifier metadata")

	cmd.AddCommand(push)
	return cmd
}
