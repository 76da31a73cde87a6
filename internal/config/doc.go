// SPDX-License-Identifier: MPL-2.0

// Package config loads the recipe manager configuration.
//
// The configuration lives in drupal-recipe-manager.yaml in the working
// directory (or the path given with --config). Viper resolves the file,
// supplies defaults and DRM_* environment overrides for scalar settings;
// the document itself is validated against the embedded CUE schema
// (config_schema.cue) and decoded with yaml.v3 so that the commands mapping
// keeps its declaration order and key case.
package config
