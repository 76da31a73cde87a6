// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/d34dman/drupal-recipe-manager/cmd/drupal-recipe-manager"

func main() {
	cmd.Execute()
}
