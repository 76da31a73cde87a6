// SPDX-License-Identifier: MPL-2.0

// Package tui provides the terminal presentation layer: shared styles, the
// status summary and recipe tables, styled dependency trees, and the
// interactive recipe and command pickers.
//
// Pickers are Bubble Tea models wrapping the Bubbles list component. They
// are exported through Pick and Confirm, which run a program to completion;
// the models themselves stay unexported so tests can drive them with
// messages directly.
package tui
