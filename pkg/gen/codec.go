package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// DefaultBlendRadius is used when a dimension document omits blendRadius.
const DefaultBlendRadius = 2

// DefaultDimension is the dimension document a pack uses when pack.yaml names none.
const DefaultDimension = "overworld"

// Settings documents are looked up with these extensions, in order.
var settingsExts = []string{".yaml", ".yml", ".json"}

// PackMeta is the content of a pack's pack.yaml.
type PackMeta struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Dimension   string `yaml:"dimension,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type dimensionDoc struct {
	Name        string      `yaml:"name"`
	FluidHeight int         `yaml:"fluidHeight"`
	MinHeight   int         `yaml:"minHeight"`
	MaxHeight   int         `yaml:"maxHeight"`
	Noise       string      `yaml:"noise"`
	BlendRadius *int        `yaml:"blendRadius"`
	Terrain     yaml.Node   `yaml:"terrain"`
	Distributor yaml.Node   `yaml:"distributor"`
	Biomes      []yaml.Node `yaml:"biomes"`
}

type encodedDimension struct {
	Name        string           `yaml:"name,omitempty"`
	FluidHeight int              `yaml:"fluidHeight"`
	MinHeight   int              `yaml:"minHeight"`
	MaxHeight   int              `yaml:"maxHeight"`
	Noise       string           `yaml:"noise"`
	BlendRadius int              `yaml:"blendRadius"`
	Terrain     *yaml.Node       `yaml:"terrain"`
	Distributor *yaml.Node       `yaml:"distributor"`
	Biomes      []map[string]any `yaml:"biomes"`
}

type providerHeader struct {
	Name     string  `yaml:"name"`
	Provider key.Key `yaml:"provider"`
}

// Codec reads and writes settings documents. Providers are resolved through
// the registry; lookups lock until it is frozen.
type Codec struct {
	registry *Registry
	noise    *noise.Cache
	log      *slog.Logger
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithNoiseCache shares generators with other codecs.
func WithNoiseCache(c *noise.Cache) CodecOption {
	return func(cd *Codec) { cd.noise = c }
}

// WithLogger sets the codec's logger.
func WithLogger(l *slog.Logger) CodecOption {
	return func(cd *Codec) { cd.log = l }
}

// NewCodec returns a codec resolving providers through r.
func NewCodec(r *Registry, opts ...CodecOption) *Codec {
	c := &Codec{registry: r}
	for _, o := range opts {
		o(c)
	}
	if c.noise == nil {
		c.noise = &noise.Cache{}
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// Registry returns the registry the codec resolves providers through.
func (c *Codec) Registry() *Registry { return c.registry }

// CheckVersion reports whether a pack's declared settings version is readable.
func (c *Codec) CheckVersion(declared string) error { return CheckVersion(declared) }

// ReadPackMeta reads <folder>/pack.yaml.
func ReadPackMeta(folder string) (PackMeta, error) {
	file, node, err := readDocument(folder, "pack")
	if err != nil {
		return PackMeta{}, err
	}
	if err := validateNode(schemaPack, node); err != nil {
		return PackMeta{}, inFile(file, err)
	}
	var meta PackMeta
	if err := node.Decode(&meta); err != nil {
		return PackMeta{}, inFile(file, &MalformedError{Reason: yamlReason(err)})
	}
	if meta.Dimension == "" {
		meta.Dimension = DefaultDimension
	}
	return meta, nil
}

// LoadDimension reads <folder>/<name>.<ext> and builds the Dimension it
// describes, seeded with seed. Referenced provider and biome documents are
// resolved relative to folder.
func (c *Codec) LoadDimension(folder, name string, seed int64) (*Dimension, error) {
	file, node, err := readDocument(folder, name)
	if err != nil {
		return nil, err
	}
	dim, err := c.decodeDimension(folder, name, node, seed)
	if err != nil {
		return nil, inFile(file, err)
	}
	c.log.Debug("dimension loaded", "folder", folder, "dimension", name,
		"terrain", dim.Terrain().Provider(), "distributor", dim.Distributor().Provider(),
		"biomes", len(dim.Biomes()))
	return dim, nil
}

// DecodeDimension builds a Dimension from an in-memory document. folder is
// used to resolve references and may be empty for self-contained documents.
func (c *Codec) DecodeDimension(folder string, data []byte, seed int64) (*Dimension, error) {
	node, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	return c.decodeDimension(folder, "", node, seed)
}

func (c *Codec) decodeDimension(folder, name string, node *yaml.Node, seed int64) (*Dimension, error) {
	if err := validateNode(schemaDimension, node); err != nil {
		return nil, err
	}

	var doc dimensionDoc
	if err := node.Decode(&doc); err != nil {
		return nil, &MalformedError{Reason: yamlReason(err)}
	}
	algo, err := noise.ParseAlgorithm(doc.Noise)
	if err != nil {
		return nil, Malformed("noise", "%v", err)
	}

	s := DimensionSettings{
		Name:        doc.Name,
		Seed:        seed,
		FluidHeight: doc.FluidHeight,
		MinHeight:   doc.MinHeight,
		MaxHeight:   doc.MaxHeight,
		Noise:       algo,
		BlendRadius: DefaultBlendRadius,
	}
	if s.Name == "" {
		s.Name = name
	}
	if doc.BlendRadius != nil {
		s.BlendRadius = *doc.BlendRadius
	}

	d, err := decodeProvider(c, folder, KindDistributor, &doc.Distributor, c.registry.Distributor)
	if err != nil {
		return nil, err
	}
	t, err := decodeProvider(c, folder, KindTerrain, &doc.Terrain, c.registry.Terrain)
	if err != nil {
		return nil, err
	}

	biomes := make([]*Biome, 0, len(doc.Biomes))
	for i := range doc.Biomes {
		b, err := decodeBiome(folder, &doc.Biomes[i])
		if err != nil {
			return nil, prefixed(fmt.Sprintf("biomes.%d", i), err)
		}
		biomes = append(biomes, b)
	}

	ng, err := c.noise.Get(algo, seed)
	if err != nil {
		return nil, Malformed("noise", "%v", err)
	}
	return NewDimension(s, ng, t, d, biomes)
}

// decodeProvider reads the discriminator of n, builds the provider through
// resolve and decodes n's remaining fields into it.
func decodeProvider[T Provider, F ~func(Binding) T](c *Codec, folder string, kind Kind, n *yaml.Node, resolve func(key.Key) (F, error)) (T, error) {
	var zero T
	prefix := kind.String()

	node, defName, file := n, "", ""
	if n.Kind == yaml.ScalarNode {
		var err error
		defName = n.Value
		file, node, err = readDocument(filepath.Join(folder, kind.Folder()), n.Value)
		if err != nil {
			return zero, err
		}
		if err := validateNode(schemaProvider, node); err != nil {
			return zero, inFile(file, prefixed(prefix, err))
		}
	}

	var hdr providerHeader
	if err := node.Decode(&hdr); err != nil {
		return zero, inFile(file, Malformed(joinPath(prefix, "provider"), "%s", yamlReason(err)))
	}
	if hdr.Name == "" {
		hdr.Name = defName
	}

	factory, err := resolve(hdr.Provider)
	if err != nil {
		return zero, err
	}
	p := factory(Binding{
		Name:           hdr.Name,
		Provider:       hdr.Provider,
		SettingsFolder: filepath.Join(folder, kind.Folder()),
	})

	if err := decodeFields(node, p); err != nil {
		return zero, inFile(file, prefixed(prefix, err))
	}
	if v, ok := any(p).(Validator); ok {
		if err := v.Validate(); err != nil {
			return zero, inFile(file, prefixed(prefix, err))
		}
	}
	c.log.Debug("provider decoded", "kind", kind, "name", hdr.Name, "provider", hdr.Provider)
	return p, nil
}

func decodeBiome(folder string, n *yaml.Node) (*Biome, error) {
	node, file := n, ""
	if n.Kind == yaml.ScalarNode {
		var err error
		file, node, err = readDocument(filepath.Join(folder, "biomes"), n.Value)
		if err != nil {
			return nil, err
		}
		if err := validateNode(schemaBiome, node); err != nil {
			return nil, inFile(file, err)
		}
	}

	var params map[string]any
	if err := node.Decode(&params); err != nil {
		return nil, inFile(file, &MalformedError{Reason: yamlReason(err)})
	}
	raw, _ := params["id"].(string)
	id, err := key.Parse(raw)
	if err != nil {
		return nil, inFile(file, Malformed("id", "%v", err))
	}
	delete(params, "id")
	return NewBiome(id, params), nil
}

// decodeFields decodes a mapping one entry at a time so that a type error
// can be reported against the key that caused it.
func decodeFields(node *yaml.Node, out any) error {
	if node.Kind != yaml.MappingNode {
		if err := node.Decode(out); err != nil {
			return &MalformedError{Reason: yamlReason(err)}
		}
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		pair := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{k, v}}
		if err := pair.Decode(out); err != nil {
			return Malformed(k.Value, "%s", yamlReason(err))
		}
	}
	return nil
}

// Encode renders dim as a self-contained dimension document: every provider
// and biome is written inline.
func (c *Codec) Encode(dim *Dimension) ([]byte, error) {
	s := dim.Settings()
	out := encodedDimension{
		Name:        s.Name,
		FluidHeight: s.FluidHeight,
		MinHeight:   s.MinHeight,
		MaxHeight:   s.MaxHeight,
		Noise:       string(s.Noise),
		BlendRadius: s.BlendRadius,
	}

	var err error
	if out.Terrain, err = encodeProvider(dim.Terrain()); err != nil {
		return nil, fmt.Errorf("encode terrain: %w", err)
	}
	if out.Distributor, err = encodeProvider(dim.Distributor()); err != nil {
		return nil, fmt.Errorf("encode distributor: %w", err)
	}
	for _, b := range dim.Biomes() {
		m := b.Params()
		m["id"] = b.ID().String()
		out.Biomes = append(out.Biomes, m)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode dimension: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode dimension: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeProvider(p Provider) (*yaml.Node, error) {
	var body yaml.Node
	if err := body.Encode(p); err != nil {
		return nil, err
	}
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("provider %s encodes to a non-mapping", p.Provider())
	}
	body.Style &^= yaml.FlowStyle
	head := []*yaml.Node{
		strNode("name"), strNode(p.Name()),
		strNode("provider"), strNode(p.Provider().String()),
	}
	body.Content = append(head, body.Content...)
	return &body, nil
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// readDocument finds <folder>/<name> under one of the settings extensions and
// parses it.
func readDocument(folder, name string) (string, *yaml.Node, error) {
	for _, ext := range settingsExts {
		file := filepath.Join(folder, name+ext)
		data, err := os.ReadFile(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return file, nil, fmt.Errorf("read settings %s: %w", file, err)
		}
		node, err := parseDocument(data)
		if err != nil {
			return file, nil, inFile(file, err)
		}
		return file, node, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrMissingSettingsFile, filepath.Join(folder, name+settingsExts[0]))
}

func parseDocument(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Reason: yamlReason(err)}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &MalformedError{Reason: "empty document"}
	}
	return doc.Content[0], nil
}

func yamlReason(err error) string {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return strings.Join(te.Errors, "; ")
	}
	return err.Error()
}

// inFile attaches file to a MalformedError that does not name one yet.
func inFile(file string, err error) error {
	var me *MalformedError
	if file == "" || !errors.As(err, &me) || me.File != "" {
		return err
	}
	out := *me
	out.File = file
	return &out
}
