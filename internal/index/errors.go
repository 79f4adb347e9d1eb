package index

import "errors"

// ErrCorruptIndex indicates index artifacts whose names and fingerprints do not
// line up, or whose content does not match the manifest.
var ErrCorruptIndex = errors.New("corrupt index")
