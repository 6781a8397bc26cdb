package schema

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/imdm/pkg/array"
	"github.com/dmitrymomot/imdm/pkg/check"
	"github.com/dmitrymomot/imdm/pkg/file"
	"github.com/dmitrymomot/imdm/pkg/formats"
	"github.com/dmitrymomot/imdm/pkg/logger"
	"github.com/dmitrymomot/imdm/pkg/model"
	"github.com/dmitrymomot/imdm/pkg/validator"
)

// maxSchemaBytes bounds the size of schema files read by Load.
const maxSchemaBytes = 1 << 20

// Option configures schema parsing.
type Option func(*parser)

// WithSource sets the file source used by file-backed fields.
func WithSource(src file.Source) Option {
	return func(p *parser) {
		p.src = src
	}
}

// WithLogger sets the logger handed to every field validator.
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxFileBytes limits the size of data files loaded by file-backed fields.
func WithMaxFileBytes(n int64) Option {
	return func(p *parser) {
		p.maxBytes = n
	}
}

type parser struct {
	src      file.Source
	logger   *slog.Logger
	maxBytes int64
}

// Load reads and parses a schema file from the local filesystem.
func Load(path string, opts ...Option) (*model.Model, error) {
	data, err := file.ReadAll(context.Background(), file.Local(), path, maxSchemaBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return Parse(data, opts...)
}

// Parse builds a model from a YAML document.
func Parse(data []byte, opts ...Option) (*model.Model, error) {
	p := &parser{
		logger:   logger.Discard(),
		maxBytes: formats.DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(p)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSchema)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document must be a mapping", ErrInvalidSchema)
	}

	var (
		fields *yaml.Node
		mopts  []model.Option
	)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "fields":
			fields = value
		case "structure", "strict":
			var on bool
			if err := value.Decode(&on); err != nil {
				return nil, invalid(key, "%v", err)
			}
			if !on {
				continue
			}
			if key == "strict" {
				mopts = append(mopts, model.WithStrict())
			} else {
				mopts = append(mopts, model.WithStructureChecks())
			}
		default:
			return nil, invalid(key, "unknown key")
		}
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: missing \"fields\"", ErrInvalidSchema)
	}

	m, err := p.model(fields, "fields")
	if err != nil {
		return nil, err
	}
	if err := m.Configure(mopts...); err != nil {
		return nil, invalid("fields", "%v", err)
	}
	return m, nil
}

func invalid(at, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSchema, at, fmt.Sprintf(format, args...))
}

func (p *parser) model(n *yaml.Node, at string) (*model.Model, error) {
	if n.Kind != yaml.MappingNode {
		return nil, invalid(at, "must be a mapping of field names")
	}
	m, err := model.New()
	if err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		node, err := p.node(n.Content[i+1], at+"."+name)
		if err != nil {
			return nil, err
		}
		if err := m.Add(name, node); err != nil {
			return nil, invalid(at+"."+name, "%v", err)
		}
	}
	return m, nil
}

type fieldSpec struct {
	Type     string            `yaml:"type"`
	Length   *int              `yaml:"length"`
	Shape    []any             `yaml:"shape"`
	Range    []*float64        `yaml:"range"`
	DType    string            `yaml:"dtype"`
	Format   string            `yaml:"format"`
	Metadata map[string]string `yaml:"metadata"`
	Strict   bool              `yaml:"strict"`
	Checks   yaml.Node         `yaml:"checks"`
	Fields   yaml.Node         `yaml:"fields"`
	Each     yaml.Node         `yaml:"each"`
}

var fieldKeys = []string{"type", "length", "shape", "range", "dtype", "format", "metadata", "strict", "checks", "fields", "each"}

type checkSpec struct {
	Stage string `yaml:"stage"`
	Expr  string `yaml:"expr"`
}

func (p *parser) node(n *yaml.Node, at string) (model.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, invalid(at, "field must be a mapping")
	}
	for i := 0; i < len(n.Content); i += 2 {
		if key := n.Content[i].Value; !slices.Contains(fieldKeys, key) {
			return nil, invalid(at, "unknown key %q", key)
		}
	}

	var spec fieldSpec
	if err := n.Decode(&spec); err != nil {
		return nil, invalid(at, "%v", err)
	}

	switch {
	case spec.Fields.Kind != 0:
		if len(n.Content) != 2 {
			return nil, invalid(at, "\"fields\" cannot be combined with other keys")
		}
		return p.model(&spec.Fields, at)
	case spec.Each.Kind != 0:
		if len(n.Content) != 2 {
			return nil, invalid(at, "\"each\" cannot be combined with other keys")
		}
		inner, err := p.node(&spec.Each, at+"[*]")
		if err != nil {
			return nil, err
		}
		return model.Each(inner), nil
	}

	v, err := p.validator(&spec, at)
	if err != nil {
		return nil, err
	}
	return model.Leaf(v), nil
}

func (p *parser) validator(spec *fieldSpec, at string) (*validator.Validator, error) {
	opts := []validator.Option{validator.WithLogger(p.logger)}

	if spec.Type != "" {
		types, ok := typeNames[spec.Type]
		if !ok {
			return nil, invalid(at, "unknown type %q", spec.Type)
		}
		opts = append(opts, validator.WithType(types...))
	}
	if spec.Length != nil {
		if *spec.Length < 0 {
			return nil, invalid(at, "length must not be negative")
		}
		opts = append(opts, validator.WithLength(*spec.Length))
	}
	if spec.Shape != nil {
		dims, err := parseShape(spec.Shape)
		if err != nil {
			return nil, invalid(at, "shape: %v", err)
		}
		opts = append(opts, validator.WithShape(dims...))
	}
	if spec.Range != nil {
		if len(spec.Range) != 2 {
			return nil, invalid(at, "range must be [lo, hi]")
		}
		lo, hi := spec.Range[0], spec.Range[1]
		if (lo != nil && math.IsNaN(*lo)) || (hi != nil && math.IsNaN(*hi)) {
			return nil, invalid(at, "range bounds must be numbers")
		}
		if lo != nil && hi != nil && *lo > *hi {
			return nil, invalid(at, "range lower bound exceeds upper bound")
		}
		opts = append(opts, validator.WithRange(lo, hi))
	}
	if spec.DType != "" {
		opts = append(opts, validator.WithDType(spec.DType))
	}
	if spec.Strict {
		opts = append(opts, validator.WithStrict())
	}

	var v *validator.Validator
	switch spec.Format {
	case "":
		if len(spec.Metadata) > 0 {
			opts = append(opts, validator.WithCheck(formats.CheckMetadata, check.Metadata(spec.Metadata), validator.Preprocessed))
		}
		v = validator.New(opts...)
	default:
		preset, ok := presets[spec.Format]
		if !ok {
			return nil, invalid(at, "unknown format %q", spec.Format)
		}
		v = preset(
			formats.WithSource(p.src),
			formats.WithMaxBytes(p.maxBytes),
			formats.WithMetadata(spec.Metadata),
			formats.WithValidatorOptions(opts...),
		)
	}

	if err := p.checks(v, &spec.Checks, at); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *parser) checks(v *validator.Validator, n *yaml.Node, at string) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return invalid(at, "checks must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		loc := at + ".checks." + name

		var cs checkSpec
		if err := n.Content[i+1].Decode(&cs); err != nil {
			return invalid(loc, "%v", err)
		}
		stage := validator.Value
		if cs.Stage != "" {
			s, err := validator.ParseStage(cs.Stage)
			if err != nil {
				return invalid(loc, "%v", err)
			}
			stage = s
		}
		c, err := check.Expr(cs.Expr)
		if err != nil {
			return invalid(loc, "%v", err)
		}
		if err := v.AddCheck(name, c, stage); err != nil {
			return invalid(loc, "%v", err)
		}
	}
	return nil
}

func parseShape(items []any) ([]int, error) {
	dims := make([]int, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case nil:
			dims[i] = check.AnyDim
		case int:
			if v < 0 {
				return nil, fmt.Errorf("negative dimension %d", v)
			}
			dims[i] = v
		case string:
			switch strings.TrimSpace(v) {
			case "*":
				dims[i] = check.AnyDim
			case "...":
				dims[i] = check.AnyDims
			default:
				return nil, fmt.Errorf("unknown dimension %q", v)
			}
		default:
			return nil, fmt.Errorf("unknown dimension %v", v)
		}
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("at least one dimension is required")
	}
	return dims, nil
}

var presets = map[string]func(...formats.Option) *validator.Validator{
	"dicom": formats.DICOMFile,
	"image": formats.ImageFile,
	"numpy": formats.NumpyFile,
	"nifti": formats.NIfTIFile,
	"auto":  formats.AutoFile,
}

var (
	intTypes = []reflect.Type{
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
	}
	floatTypes = []reflect.Type{reflect.TypeFor[float32](), reflect.TypeFor[float64]()}

	typeNames = map[string][]reflect.Type{
		"string": {reflect.TypeFor[string]()},
		"int":    intTypes,
		"float":  floatTypes,
		"number": append(slices.Clone(intTypes), floatTypes...),
		"bool":   {reflect.TypeFor[bool]()},
		"list":   {reflect.TypeFor[[]any]()},
		"map":    {reflect.TypeFor[map[string]any]()},
		"array":  {reflect.TypeFor[array.Array]()},
	}
)
