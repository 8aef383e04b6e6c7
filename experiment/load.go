package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fcmcmp/fcs"
)

// config holds LoadExperiments settings.
type config struct {
	parser fcs.Parser
	logger *slog.Logger
	cache  *Loader
}

// Option configures LoadExperiments.
type Option func(*config)

// WithParser substitutes the FCS parser. The default is fcs.FileParser.
func WithParser(p fcs.Parser) Option {
	return func(c *config) { c.parser = p }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCache injects a shared Loader so that repeated LoadExperiments
// calls over the same plates parse each physical well once. Off by
// default: unrelated metadata files may coincidentally share plate paths,
// and a fresh cache per call is the safe default. When set, the loader's
// own parser wins over WithParser.
func WithCache(l *Loader) Option {
	return func(c *config) { c.cache = l }
}

// LoadExperiments reads a metadata file and builds the experiment
// collection, resolving and loading every well reference.
//
// The file is a sequence of YAML documents. If the first document has a
// "plate" or "plates" field (and no "label" or "wells"), it is consumed
// as the plate header; otherwise the default plate directory is derived
// from the metadata file's own base name. Loading is fail-fast: the first
// error aborts and no partial collection is returned.
func LoadExperiments(path string, opts ...Option) (Collection, error) {
	cfg := config{
		parser: fcs.FileParser{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}

	docs, err := decodeDocuments(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, &Error{
			Code:    ErrCodeMalformedExperiment,
			Message: fmt.Sprintf("metadata file %q is empty", path),
		}
	}

	loader := cfg.cache
	if loader == nil {
		loader = NewLoader(cfg.parser, cfg.logger)
	}
	logger := cfg.logger.With("load_token", loader.Token())

	roots, headerConsumed, err := parseHeader(docs[0], path)
	if err != nil {
		return nil, err
	}
	position := 1
	if headerConsumed {
		docs = docs[1:]
		position = 2
	}

	var collection Collection
	for _, doc := range docs {
		rec, err := parseDocument(doc, position)
		if err != nil {
			return nil, err
		}

		exp := &Experiment{
			Label: rec.label,
			Extra: rec.extra,
		}
		for _, cond := range rec.conditions {
			wells := make([]*Well, 0, len(cond.refs))
			for _, ref := range cond.refs {
				well, err := resolveAndLoad(loader, ref, roots)
				if err != nil {
					stampDocument(err, position)
					return nil, err
				}
				wells = append(wells, well)
			}
			exp.Conditions = append(exp.Conditions, Condition{Name: cond.name, Wells: wells})
		}
		collection = append(collection, exp)
		position++
	}

	logger.Info("loaded experiments",
		"file", path,
		"experiments", len(collection),
		"physical_wells", loader.Len(),
	)
	return collection, nil
}

// resolveAndLoad turns one well reference into its Well wrapper. Every
// reference gets its own wrapper; references to one physical well share
// the loaded frame and metadata.
func resolveAndLoad(loader *Loader, ref string, roots map[string]string) (*Well, error) {
	id, filePath, err := Resolve(ref, roots)
	if err != nil {
		return nil, err
	}
	data, meta, err := loader.Load(id, filePath)
	if err != nil {
		return nil, err
	}
	return newSharedWell(ref, id, meta, data), nil
}

// stampDocument fills in the document position on a loading error that
// does not carry one yet.
func stampDocument(err error, position int) {
	var e *Error
	if errors.As(err, &e) && e.Document == 0 {
		e.Document = position
	}
}

// decodeDocuments splits the file into its YAML documents. Empty
// documents (e.g. a trailing separator) are skipped.
func decodeDocuments(raw []byte) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	var docs []*yaml.Node
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		if node.Kind == 0 {
			continue
		}
		docs = append(docs, &node)
	}
}

// parseHeader interprets the optional leading plate header.
//
// A header document has a "plate" or "plates" field and neither "label"
// nor "wells". "plate" sets the default plate directory; "plates" maps
// plate names to directories. Paths are relative to the metadata file's
// directory unless absolute. Without a header, the default plate is the
// directory named after the metadata file itself (base name without
// extension), next to it.
func parseHeader(doc *yaml.Node, metaPath string) (roots map[string]string, consumed bool, err error) {
	dir := filepath.Dir(metaPath)
	resolvePath := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	mapping, ok := mappingRoot(doc)
	if ok {
		keys := mappingKeys(mapping)
		hasPlate := false
		hasPlates := false
		isExperiment := false
		for _, k := range keys {
			switch k {
			case "plate":
				hasPlate = true
			case "plates":
				hasPlates = true
			case "label", "wells":
				isExperiment = true
			}
		}

		if (hasPlate || hasPlates) && !isExperiment {
			if hasPlate && hasPlates {
				return nil, false, &Error{
					Code:     ErrCodeMalformedHeader,
					Message:  `header has both "plate" and "plates"`,
					Document: 1,
				}
			}
			if len(keys) > 1 {
				return nil, false, &Error{
					Code:     ErrCodeMalformedHeader,
					Message:  "too many fields in plate header",
					Document: 1,
				}
			}

			roots = make(map[string]string)
			value := mapping.Content[1]
			if hasPlate {
				var p string
				if err := value.Decode(&p); err != nil {
					return nil, false, &Error{
						Code:     ErrCodeMalformedHeader,
						Message:  fmt.Sprintf(`field "plate": %v`, err),
						Document: 1,
					}
				}
				roots[""] = resolvePath(p)
			} else {
				var named map[string]string
				if err := value.Decode(&named); err != nil {
					return nil, false, &Error{
						Code:     ErrCodeMalformedHeader,
						Message:  fmt.Sprintf(`field "plates": %v`, err),
						Document: 1,
					}
				}
				for name, p := range named {
					roots[name] = resolvePath(p)
				}
			}
			return roots, true, nil
		}
	}

	// No header: infer the default plate from the metadata file name.
	base := filepath.Base(metaPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return map[string]string{"": filepath.Join(dir, stem)}, false, nil
}
