package bamtags

import (
	// This import is needed to use go:linkname.
	_ "unsafe"
)

// github.com/grailbio/hts/sam linknames sync.fastrand, which Go 1.21
// no longer exports from the runtime. Re-export it here so binaries
// that link the sam package resolve the symbol.

//go:linkname runtimeFastrand runtime.fastrand
func runtimeFastrand() uint32

//go:linkname syncFastrand sync.fastrand
func syncFastrand() uint32 { return runtimeFastrand() }

var _ = syncFastrand
