package gen

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/*.json
var schemaFS embed.FS

const schemaBase = "https://orbis.local/schema/"

type schemaName string

const (
	schemaDimension schemaName = "dimension"
	schemaProvider  schemaName = "provider"
	schemaBiome     schemaName = "biome"
	schemaPack      schemaName = "pack"
)

var compiledSchemas = sync.OnceValues(func() (map[schemaName]*jsonschema.Schema, error) {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schema/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		if err := c.AddResource(schemaBase+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
	}

	out := make(map[schemaName]*jsonschema.Schema)
	for _, name := range []schemaName{schemaDimension, schemaProvider, schemaBiome, schemaPack} {
		s, err := c.Compile(schemaBase + string(name) + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
})

// validateNode checks a parsed document against one of the embedded schemas.
// Violations come back as a MalformedError at the deepest failing field.
func validateNode(name schemaName, node *yaml.Node) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}

	v, err := jsonValue(node)
	if err != nil {
		return &MalformedError{Reason: err.Error()}
	}

	err = schemas[name].Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &MalformedError{Reason: err.Error()}
	}
	leaf := deepest(ve)
	return &MalformedError{Path: pointerPath(leafLocation(leaf)), Reason: leaf.Message}
}

// deepest picks the leaf cause with the longest location, counting a missing
// required property as part of it. On a tie a type mismatch loses, so for
// oneOf failures the branch whose type matched wins.
func deepest(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return ve
	}
	best := deepest(ve.Causes[0])
	for _, c := range ve.Causes[1:] {
		l := deepest(c)
		ll, bl := len(leafLocation(l)), len(leafLocation(best))
		if ll > bl || (ll == bl && isTypeError(best) && !isTypeError(l)) {
			best = l
		}
	}
	return best
}

func isTypeError(ve *jsonschema.ValidationError) bool {
	return strings.HasSuffix(ve.KeywordLocation, "/type")
}

// leafLocation is the instance location of ve, extended by the first missing
// property when ve is a required failure.
func leafLocation(ve *jsonschema.ValidationError) string {
	if !strings.HasSuffix(ve.KeywordLocation, "/required") {
		return ve.InstanceLocation
	}
	name := missingProperty(ve.Message)
	if name == "" {
		return ve.InstanceLocation
	}
	name = strings.NewReplacer("~", "~0", "/", "~1").Replace(name)
	return strings.TrimSuffix(ve.InstanceLocation, "/") + "/" + name
}

// missingProperty extracts the first name from "missing properties: 'a', 'b'".
func missingProperty(msg string) string {
	_, list, ok := strings.Cut(msg, "missing properties:")
	if !ok {
		return ""
	}
	first, _, _ := strings.Cut(list, ",")
	return strings.Trim(strings.TrimSpace(first), `'"`)
}

// jsonValue converts a YAML node into the value shape the validator expects:
// maps keyed by string and json.Number for every number.
func jsonValue(node *yaml.Node) (any, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("not representable as JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// pointerPath turns "/biomes/2/id" into "biomes.2.id".
func pointerPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
	}
	return strings.Join(parts, ".")
}
