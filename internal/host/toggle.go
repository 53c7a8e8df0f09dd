package host

import (
	"errors"
	"path/filepath"
	"strings"
)

type Presentation int

const (
	PresentationStructured Presentation = iota
	PresentationRaw
)

func (p Presentation) String() string {
	if p == PresentationRaw {
		return "raw"
	}
	return "structured"
}

// ToggleWarning is shown when there is nothing to toggle.
const ToggleWarning = "Please open a .env file to toggle views"

var ErrNoEnvResource = errors.New("no .env file is open")

// Toggle returns the presentation to switch to for the document at path.
// A structured view always has an eligible resource; a raw view only when
// the file name looks like an env file.
func Toggle(active Presentation, path string) (Presentation, error) {
	if path == "" {
		return active, ErrNoEnvResource
	}
	switch active {
	case PresentationStructured:
		return PresentationRaw, nil
	default:
		if !strings.Contains(filepath.Base(path), ".env") {
			return active, ErrNoEnvResource
		}
		return PresentationStructured, nil
	}
}
