package maploader

import (
	"errors"
	"fmt"
	"strings"
)

// State is the loader's position in the script lifecycle.
type State int

const (
	StateIdle State = iota
	StateNoCredential
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNoCredential:
		return "no-credential"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further script transition can happen.
func (s State) Terminal() bool {
	return s == StateNoCredential || s == StateReady || s == StateError
}

// Fallback reports whether consumers must render the static vector map.
func (s State) Fallback() bool {
	return s == StateNoCredential || s == StateError
}

var (
	ErrNoCredential = errors.New("maploader: no access credential")
	ErrScriptLoad   = errors.New("maploader: provider script failed to load")
	ErrNotReady     = errors.New("maploader: provider script not ready")
	ErrSurface      = errors.New("maploader: map surface construction failed")
)

// Mode selects how the map section renders.
type Mode string

const (
	// ModeAuto uses the live map when a credential is configured.
	ModeAuto Mode = "auto"
	// ModeLive always requests the live map; a missing credential still falls back.
	ModeLive Mode = "live"
	// ModeVector always renders the static vector map.
	ModeVector Mode = "vector"
)

// ParseMode normalises a configured mode. Blank selects ModeAuto.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeLive:
		return ModeLive, nil
	case ModeVector:
		return ModeVector, nil
	default:
		return "", fmt.Errorf("maploader: unknown map mode %q", raw)
	}
}

// Credential returns the credential the loader should receive under m.
// Vector mode withholds it so the loader settles in StateNoCredential.
func (m Mode) Credential(configured string) string {
	if m == ModeVector {
		return ""
	}
	return strings.TrimSpace(configured)
}
