// Package key implements namespaced identifiers of the form "namespace:path".
// Keys name providers and data-pack entries.
package key

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Orbis is the namespace of the built-in providers.
const Orbis = "orbis"

var (
	ErrEmpty     = errors.New("empty key")
	ErrNoColon   = errors.New("missing namespace separator")
	ErrBadSymbol = errors.New("invalid character")
)

// Key is a two-part identifier. The zero Key is invalid.
type Key struct {
	Namespace string
	Path      string
}

// New returns a validated key.
func New(namespace, path string) (Key, error) {
	k := Key{Namespace: namespace, Path: path}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// MustNew is New that panics. Use for compile-time constants only.
func MustNew(namespace, path string) Key {
	k, err := New(namespace, path)
	if err != nil {
		panic(err)
	}
	return k
}

// Parse reads "namespace:path".
func Parse(s string) (Key, error) {
	if s == "" {
		return Key{}, ErrEmpty
	}
	ns, path, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("parse key %q: %w", s, ErrNoColon)
	}
	k, err := New(ns, path)
	if err != nil {
		return Key{}, fmt.Errorf("parse key %q: %w", s, err)
	}
	return k, nil
}

// MustParse is Parse that panics.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Validate checks that both parts are non-empty tokens.
func (k Key) Validate() error {
	if k.Namespace == "" || k.Path == "" {
		return ErrEmpty
	}
	for _, r := range k.Namespace {
		if !namespaceRune(r) {
			return fmt.Errorf("namespace %q: %w %q", k.Namespace, ErrBadSymbol, r)
		}
	}
	for _, r := range k.Path {
		if !namespaceRune(r) && r != '/' {
			return fmt.Errorf("path %q: %w %q", k.Path, ErrBadSymbol, r)
		}
	}
	return nil
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool { return k == Key{} }

func (k Key) String() string {
	if k.IsZero() {
		return ""
	}
	return k.Namespace + ":" + k.Path
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Key) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *Key) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: key must be a string", n.Line)
	}
	parsed, err := Parse(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*k = parsed
	return nil
}

func namespaceRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	}
	return false
}
