package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/imdm/pkg/file"
	"github.com/dmitrymomot/imdm/pkg/logger"
	"github.com/dmitrymomot/imdm/pkg/model"
	"github.com/dmitrymomot/imdm/pkg/printer"
	"github.com/dmitrymomot/imdm/pkg/result"
	"github.com/dmitrymomot/imdm/pkg/schema"
)

// Size limits of sample and schema documents.
const (
	maxSampleBytes = 16 << 20
	maxSchemaBytes = 1 << 20
)

// Output formats of the validate command.
const (
	OutputText = "text"
	OutputJSON = "json"
)

type validateFlags struct {
	schema       string
	output       string
	messages     bool
	failuresOnly bool
}

// sampleReport is the JSON form of one validated sample.
type sampleReport struct {
	Sample string       `json:"sample"`
	OK     bool         `json:"ok"`
	Result *result.Tree `json:"result"`
}

func newValidateCmd(app *App) *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate --schema SCHEMA SAMPLE...",
		Short: "Validate samples against a schema",
		Long: `Validate YAML or JSON sample documents against a YAML schema.

Data file paths inside a sample are resolved against local storage rooted at
the sample's directory (or IMDM_DATA_ROOT), or against S3 when IMDM_STORAGE=s3.
The command fails when any check of any sample fails.`,
		Example: `  # Validate two samples and show failure messages
  imdm validate --schema model.yaml --messages a.yaml b.yaml

  # Machine-readable output
  imdm validate --schema model.yaml -o json sample.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), app, flags, args)
		},
	}
	cmd.Flags().StringVarP(&flags.schema, "schema", "s", "", "schema file (YAML)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", OutputText, "output format: text or json")
	cmd.Flags().BoolVar(&flags.messages, "messages", false, "show check messages")
	cmd.Flags().BoolVar(&flags.failuresOnly, "failures-only", false, "show failed checks only")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func runValidate(ctx context.Context, app *App, flags *validateFlags, samples []string) error {
	if flags.output != OutputText && flags.output != OutputJSON {
		return fmt.Errorf("%w: %q", ErrInvalidOutput, flags.output)
	}
	log := app.Logger.With(logger.Component("validate"))

	var opts []printer.Option
	if flags.messages {
		opts = append(opts, printer.WithMessages())
	}
	if flags.failuresOnly {
		opts = append(opts, printer.WithFailuresOnly())
	}

	models, err := app.loadSchema(ctx, flags.schema)
	if err != nil {
		return err
	}

	reports := make([]sampleReport, 0, len(samples))
	failed := 0
	for _, path := range samples {
		start := time.Now()
		tree, err := models.validate(ctx, path)
		if err != nil {
			return err
		}
		ok := tree.OK()
		if !ok {
			failed++
		}
		log.InfoContext(ctx, "sample validated",
			logger.Path(path),
			slog.Bool("ok", ok),
			logger.Duration(time.Since(start)),
		)

		if flags.output == OutputJSON {
			reports = append(reports, sampleReport{Sample: path, OK: ok, Result: tree})
			continue
		}
		if _, err := fmt.Fprintln(app.out, path); err != nil {
			return err
		}
		if err := printer.Print(app.out, tree, opts...); err != nil {
			return err
		}
		if err := printer.Summary(app.out, tree); err != nil {
			return err
		}
	}

	if flags.output == OutputJSON {
		if err := printer.JSON(app.out, reports); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d samples", ErrValidationFailed, failed, len(samples))
	}
	return nil
}

// schemaModels holds a schema document and the models built from it. File
// fields bind their storage when the schema is parsed, so one model is built
// per storage root.
type schemaModels struct {
	app    *App
	path   string
	data   []byte
	models map[string]*model.Model
}

func (a *App) loadSchema(ctx context.Context, path string) (*schemaModels, error) {
	data, err := file.ReadAll(ctx, file.Local(), path, maxSchemaBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrLoadFailed, err)
	}
	return &schemaModels{app: a, path: path, data: data, models: map[string]*model.Model{}}, nil
}

// model returns the model for samples stored under sampleDir.
func (s *schemaModels) model(ctx context.Context, sampleDir string) (*model.Model, error) {
	root := s.app.storageRoot(sampleDir)
	if m, ok := s.models[root]; ok {
		return m, nil
	}

	src, err := s.app.storage(ctx, sampleDir)
	if err != nil {
		return nil, err
	}
	m, err := schema.Parse(s.data,
		schema.WithSource(src),
		schema.WithLogger(s.app.Logger.With(logger.Path(s.path))),
		schema.WithMaxFileBytes(s.app.Config.MaxFileBytes),
	)
	if err != nil {
		return nil, err
	}
	s.models[root] = m
	return m, nil
}

func (s *schemaModels) validate(ctx context.Context, samplePath string) (*result.Tree, error) {
	sample, err := loadSample(ctx, samplePath)
	if err != nil {
		return nil, err
	}
	m, err := s.model(ctx, filepath.Dir(samplePath))
	if err != nil {
		return nil, err
	}
	return m.Validate(sample), nil
}

// loadSample reads a YAML or JSON mapping from the local filesystem.
func loadSample(ctx context.Context, path string) (map[string]any, error) {
	data, err := file.ReadAll(ctx, file.Local(), path, maxSampleBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSample, path, err)
	}
	var sample map[string]any
	if err := yaml.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSample, path, err)
	}
	if sample == nil {
		return nil, fmt.Errorf("%w: %s: empty document", ErrInvalidSample, path)
	}
	return sample, nil
}
