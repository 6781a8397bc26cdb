package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/imdm/pkg/array"
	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/file"
	"github.com/dmitrymomot/imdm/pkg/formats"
	"github.com/dmitrymomot/imdm/pkg/logger"
	"github.com/dmitrymomot/imdm/pkg/printer"
)

// fileReport describes one inspected data file.
type fileReport struct {
	Path     string   `json:"path"`
	MIMEType string   `json:"mime_type"`
	Size     int64    `json:"size"`
	Shape    []int    `json:"shape,omitempty"`
	DType    string   `json:"dtype,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func newInspectCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect PATH...",
		Short: "Show format, shape and value range of data files",
		Example: `  imdm inspect scans/0001.dcm labels.npy
  IMDM_STORAGE=s3 IMDM_S3_BUCKET=scans imdm inspect s3://scans/0001.dcm`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != OutputText && output != OutputJSON {
				return fmt.Errorf("%w: %q", ErrInvalidOutput, output)
			}
			reports, err := app.inspect(cmd.Context(), args)
			if err != nil {
				return err
			}
			if output == OutputJSON {
				return printer.JSON(app.out, reports)
			}
			_, err = fmt.Fprintln(app.out, reportTable(reports))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputText, "output format: text or json")
	return cmd
}

func (a *App) inspect(ctx context.Context, paths []string) ([]fileReport, error) {
	src, err := a.storage(ctx, "")
	if err != nil {
		return nil, err
	}
	read := formats.ReadAuto(src)
	log := a.Logger.With(logger.Component("inspect"))

	reports := make([]fileReport, 0, len(paths))
	for _, p := range paths {
		r, err := inspectFile(ctx, src, read, p)
		if err != nil {
			r.Error = err.Error()
			log.DebugContext(ctx, "inspect failed", logger.Path(p), logger.Error(err))
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func inspectFile(ctx context.Context, src file.Source, read func(any) (any, error), p string) (fileReport, error) {
	r := fileReport{Path: p}
	entry, err := src.Stat(ctx, p)
	if err != nil {
		return r, err
	}
	r.Size = entry.Size
	if r.MIMEType, err = file.DetectMIMEType(ctx, src, p); err != nil {
		return r, err
	}

	decoded, err := decode(read, p)
	if err != nil {
		return r, err
	}
	arr, err := array.From(decoded)
	if err != nil {
		return r, err
	}
	r.Shape = arr.Shape()
	r.DType = arr.DType()
	if lo, hi, err := arr.Bounds(); err == nil {
		r.Min, r.Max = &lo, &hi
	}
	return r, nil
}

// decode runs read, turning a decoder panic into an error.
func decode(read func(any) (any, error), p string) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: decoder panicked: %v", formats.ErrDecodeFailed, p, r)
		}
	}()
	return read(p)
}

func reportTable(reports []fileReport) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PATH", "TYPE", "SIZE", "SHAPE", "DTYPE", "MIN", "MAX", "ERROR")
	for _, r := range reports {
		shape := ""
		if r.Shape != nil {
			shape = check.FormatShape(r.Shape)
		}
		t.Row(r.Path, r.MIMEType, strconv.FormatInt(r.Size, 10), shape, r.DType,
			formatFloat(r.Min), formatFloat(r.Max), r.Error)
	}
	return t.String()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
