package testdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound indicates the data file does not exist.
	ErrNotFound = errors.New("test data file not found")
	// ErrUnsupportedFormat indicates the file extension has no loader.
	ErrUnsupportedFormat = errors.New("unsupported test data format")
	// ErrInvalidShape indicates the parsed content is not a sequence of
	// mappings.
	ErrInvalidShape = errors.New("invalid test data shape")
	// ErrMissingKey indicates a record lacks a key present in the first
	// record's canonical column order.
	ErrMissingKey = errors.New("missing key")
)

// Loader loads test data files from a directory.
type Loader struct {
	dir        string
	logger     *slog.Logger
	strict     bool
	schemaPath string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithStrictColumns validates every record's key set against the
// canonical column order before any tuple is built, instead of failing
// on the first record that is missing a key.
func WithStrictColumns() Option {
	return func(l *Loader) {
		l.strict = true
	}
}

// WithSchema validates every record against a JSON schema file before
// flattening.
func WithSchema(path string) Option {
	return func(l *Loader) {
		l.schemaPath = path
	}
}

// NewLoader creates a loader rooted at the given data directory.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadTestData loads a data file and flattens it into positional tuples
// for parameterized execution. The parser is chosen by file extension.
func (l *Loader) LoadTestData(fileName string) ([]Tuple, error) {
	table, err := l.LoadTable(fileName)
	if err != nil {
		return nil, err
	}
	return table.Tuples, nil
}

// LoadTable loads a data file and returns both the canonical column
// order and the flattened tuples.
func (l *Loader) LoadTable(fileName string) (*Table, error) {
	var (
		records []*Record
		err     error
	)

	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".csv"):
		records, err = l.LoadCSV(fileName)
	case strings.HasSuffix(strings.ToLower(fileName), ".json"):
		records, err = l.LoadJSON(fileName)
	case strings.HasSuffix(strings.ToLower(fileName), ".yaml"),
		strings.HasSuffix(strings.ToLower(fileName), ".yml"):
		records, err = l.LoadYAML(fileName)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
	if err != nil {
		return nil, err
	}

	if l.schemaPath != "" {
		if err := l.validateSchema(records); err != nil {
			return nil, err
		}
	}

	return flatten(records, l.strict)
}

// LoadCSV loads a CSV file using the first row as the header. All cell
// values are strings.
func (l *Loader) LoadCSV(fileName string) ([]*Record, error) {
	path, err := l.resolve(fileName, ".csv")
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("test data parse failure for %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]*Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := &Record{}
		for i, col := range header {
			rec.set(col, row[i])
		}
		records = append(records, rec)
	}

	l.logger.Debug("loaded test data", "path", path, "records", len(records))
	return records, nil
}

// LoadJSON loads a JSON file whose top level must be an array of
// objects. Key order within each object is preserved.
func (l *Loader) LoadJSON(fileName string) ([]*Record, error) {
	path, err := l.resolve(fileName, ".json")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("test data parse failure for %s: invalid JSON", path)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: %s: top level must be an array of objects", ErrInvalidShape, path)
	}

	var records []*Record
	var shapeErr error
	root.ForEach(func(_, elem gjson.Result) bool {
		if !elem.IsObject() {
			shapeErr = fmt.Errorf("%w: %s: element %d is not an object", ErrInvalidShape, path, len(records))
			return false
		}
		rec := &Record{}
		elem.ForEach(func(key, value gjson.Result) bool {
			rec.set(key.String(), value.Value())
			return true
		})
		records = append(records, rec)
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}

	l.logger.Debug("loaded test data", "path", path, "records", len(records))
	return records, nil
}

// LoadYAML loads a YAML file whose top level must be a sequence of
// mappings. When the name carries neither yaml extension, .yaml is tried
// before .yml.
func (l *Loader) LoadYAML(fileName string) ([]*Record, error) {
	lower := strings.ToLower(fileName)

	var path string
	var err error
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		path, err = l.resolve(fileName, "")
	} else {
		path, err = l.resolve(fileName, ".yaml")
		if errors.Is(err, ErrNotFound) {
			path, err = l.resolve(fileName, ".yml")
		}
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("test data parse failure for %s: %w", path, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s: top level must be a sequence of mappings", ErrInvalidShape, path)
	}

	records := make([]*Record, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %s: element %d is not a mapping", ErrInvalidShape, path, i)
		}
		rec := &Record{}
		for j := 0; j+1 < len(item.Content); j += 2 {
			keyNode, valNode := item.Content[j], item.Content[j+1]
			var value any
			if err := valNode.Decode(&value); err != nil {
				return nil, fmt.Errorf("test data parse failure for %s: %w", path, err)
			}
			rec.set(keyNode.Value, value)
		}
		records = append(records, rec)
	}

	l.logger.Debug("loaded test data", "path", path, "records", len(records))
	return records, nil
}

// resolve builds the full path for a data file, appending the extension
// when not already present, and fails when the file does not exist.
func (l *Loader) resolve(fileName, ext string) (string, error) {
	if ext != "" && !strings.HasSuffix(strings.ToLower(fileName), ext) {
		fileName += ext
	}
	path := filepath.Join(l.dir, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return path, nil
}

func (l *Loader) validateSchema(records []*Record) error {
	abs, err := filepath.Abs(l.schemaPath)
	if err != nil {
		return fmt.Errorf("resolving schema path: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + abs))
	if err != nil {
		return fmt.Errorf("loading schema %s: %w", l.schemaPath, err)
	}

	for i, rec := range records {
		result, err := schema.Validate(gojsonschema.NewGoLoader(rec.Map()))
		if err != nil {
			return fmt.Errorf("validating record %d: %w", i, err)
		}
		if !result.Valid() {
			var details []string
			for _, desc := range result.Errors() {
				details = append(details, desc.String())
			}
			return fmt.Errorf("record %d failed schema validation: %s", i, strings.Join(details, "; "))
		}
	}
	return nil
}

// flatten turns records into tuples using the first record's key order.
// With strict disabled, a missing key surfaces only when the offending
// record is flattened.
func flatten(records []*Record, strict bool) (*Table, error) {
	if len(records) == 0 {
		return &Table{}, nil
	}

	columns := records[0].Keys()

	if strict {
		for i, rec := range records {
			for _, col := range columns {
				if _, ok := rec.Get(col); !ok {
					return nil, fmt.Errorf("record %d: %w: %q", i, ErrMissingKey, col)
				}
			}
		}
	}

	tuples := make([]Tuple, 0, len(records))
	for i, rec := range records {
		tuple := make(Tuple, 0, len(columns))
		for _, col := range columns {
			v, ok := rec.Get(col)
			if !ok {
				return nil, fmt.Errorf("record %d: %w: %q", i, ErrMissingKey, col)
			}
			tuple = append(tuple, v)
		}
		tuples = append(tuples, tuple)
	}

	return &Table{Columns: columns, Tuples: tuples}, nil
}
