// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type (
	// ConfirmOptions configures Confirm.
	ConfirmOptions struct {
		Prompt string
		// Default is the answer chosen by pressing enter.
		Default bool
		Input   io.Reader
		Output  io.Writer
	}

	confirmModel struct {
		prompt    string
		def       bool
		answer    bool
		done      bool
		cancelled bool
	}
)

func newConfirmModel(prompt string, def bool) *confirmModel {
	return &confirmModel{prompt: prompt, def: def}
}

func (m *confirmModel) Init() tea.Cmd {
	return nil
}

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.answer, m.done = true, true
	case "n":
		m.answer, m.done = false, true
	case "enter":
		m.answer, m.done = m.def, true
	case "esc", "ctrl+c", "q":
		m.cancelled = true
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m *confirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	hint := "[y/N]"
	if m.def {
		hint = "[Y/n]"
	}
	return WarningStyle.Render(m.prompt) + " " + MutedStyle.Render(hint) + "\n"
}

// Confirm asks a yes/no question. Cancelling answers no with ErrCancelled.
func Confirm(ctx context.Context, opts ConfirmOptions) (bool, error) {
	final, err := runProgram(ctx, newConfirmModel(opts.Prompt, opts.Default), opts.Input, opts.Output)
	if err != nil {
		return false, err
	}
	m, ok := final.(*confirmModel)
	if !ok || m.cancelled {
		return false, ErrCancelled
	}
	return m.answer, nil
}
