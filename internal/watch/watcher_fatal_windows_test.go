// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import "fmt"

func fatalErrno() error {
	return fmt.Errorf("add watch: %w", errnoTooManyOpenFiles)
}
