package app

import (
	"io"

	"github.com/specialistvlad/pioconf/internal/hook"
	"github.com/specialistvlad/pioconf/modules/configinstall"
)

// coreModules is the definitive list of all modules that are compiled into
// the pioconf binary.
func coreModules(outW io.Writer) []hook.Module {
	return []hook.Module{
		&configinstall.Module{Out: outW},
	}
}
