package gen

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrMalformedSettings     = errors.New("malformed settings")
	ErrIncompatibleVersion   = errors.New("incompatible settings version")
	ErrMissingSettingsFile   = errors.New("missing settings file")
	ErrDuplicateRegistration = errors.New("duplicate provider registration")
	ErrRegistryFrozen        = errors.New("provider registry is frozen")
)

// MalformedError reports a structural or type violation in a settings
// document. Path is the dotted field path, e.g. "terrain.scale" or "biomes.2.id".
type MalformedError struct {
	File   string
	Path   string
	Reason string
}

// Malformed builds a MalformedError for a provider-relative field.
func Malformed(path, format string, args ...any) *MalformedError {
	return &MalformedError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func (e *MalformedError) Error() string {
	msg := "malformed settings"
	if e.File != "" {
		msg += " in " + e.File
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg + ": " + e.Reason
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedSettings
}

// prefixed returns err with its field path nested under prefix when err is a
// MalformedError, or a new MalformedError at prefix otherwise.
func prefixed(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var me *MalformedError
	if errors.As(err, &me) {
		out := *me
		out.Path = joinPath(prefix, me.Path)
		return &out
	}
	if errors.Is(err, ErrUnknownProvider) || errors.Is(err, ErrMissingSettingsFile) {
		return err
	}
	return &MalformedError{Path: prefix, Reason: err.Error()}
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "." + path
	}
}
