// SPDX-License-Identifier: MPL-2.0

package runtime

import "fmt"

// Options selects and configures a runtime.
type Options struct {
	// Mode is "native" (default) or "virtual".
	Mode string
	// Shell overrides the native shell.
	Shell string
	// TTY attaches native commands to a pseudo-terminal.
	TTY bool
}

// New returns the runtime for opts.Mode.
func New(opts Options) (Runtime, error) {
	switch opts.Mode {
	case "", "native":
		return NewNativeRuntime(opts.Shell, opts.TTY), nil
	case "virtual":
		return NewVirtualRuntime(), nil
	default:
		return nil, fmt.Errorf("unknown runtime %q", opts.Mode)
	}
}
