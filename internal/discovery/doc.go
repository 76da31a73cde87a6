// SPDX-License-Identifier: MPL-2.0

// Package discovery locates recipe directories below the configured scan
// roots. A recipe is any directory that holds a recipe.yml descriptor; its
// name is the directory basename and must be unique across all roots.
package discovery
