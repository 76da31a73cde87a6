// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/d34dman/drupal-recipe-manager/internal/status"
)

const (
	defaultPickerWidth  = 80
	defaultPickerHeight = 20
)

// ErrCancelled is returned when the operator leaves a prompt without
// answering.
var ErrCancelled = errors.New("selection cancelled")

type (
	// Item is one selectable entry.
	Item struct {
		// Name is the value returned when the item is chosen.
		Name string
		// Label is the displayed title. Name is used when empty.
		Label string
		// Detail is the secondary line.
		Detail string
	}

	// PickOptions configures Pick.
	PickOptions struct {
		Title string
		Items []Item
		// Input and Output default to the process terminal.
		Input  io.Reader
		Output io.Writer
	}

	pickerModel struct {
		list      list.Model
		choice    string
		cancelled bool
	}
)

// Title implements list.DefaultItem.
func (i Item) Title() string {
	if i.Label != "" {
		return i.Label
	}
	return i.Name
}

// Description implements list.DefaultItem.
func (i Item) Description() string { return i.Detail }

// FilterValue implements list.Item.
func (i Item) FilterValue() string { return i.Name }

// RecipeItems builds picker items for names in display order, labelled with
// their status icon and last run.
func RecipeItems(names []string, statuses map[string]status.RecipeStatus) []Item {
	ordered := status.SortForDisplay(names, statuses)
	items := make([]Item, 0, len(ordered))
	for _, name := range ordered {
		st, ok := statuses[name]
		o := status.OutcomeOf(st, ok)
		items = append(items, Item{
			Name:   name,
			Label:  Icon(o) + " " + name,
			Detail: fmt.Sprintf("%s · last run %s", o, LastRun(st, ok)),
		})
	}
	return items
}

func newPickerModel(title string, items []Item) *pickerModel {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}
	l := list.New(listItems, list.NewDefaultDelegate(), defaultPickerWidth, defaultPickerHeight)
	l.Title = title
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return &pickerModel{list: l}
}

func (m *pickerModel) Init() tea.Cmd {
	return nil
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		filtering := m.list.FilterState() == list.Filtering
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc", "q":
			if m.list.FilterState() == list.Unfiltered {
				m.cancelled = true
				return m, tea.Quit
			}
		case "enter":
			if !filtering {
				if item, ok := m.list.SelectedItem().(Item); ok {
					m.choice = item.Name
					return m, tea.Quit
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *pickerModel) View() string {
	if m.choice != "" || m.cancelled {
		return ""
	}
	return m.list.View()
}

// Pick runs an interactive filterable list and returns the chosen item name.
// A single item is returned without prompting. ErrCancelled is returned when
// the operator quits.
func Pick(ctx context.Context, opts PickOptions) (string, error) {
	switch len(opts.Items) {
	case 0:
		return "", errors.New("nothing to choose from")
	case 1:
		return opts.Items[0].Name, nil
	}

	final, err := runProgram(ctx, newPickerModel(opts.Title, opts.Items), opts.Input, opts.Output)
	if err != nil {
		return "", err
	}
	m, ok := final.(*pickerModel)
	if !ok || m.cancelled || m.choice == "" {
		return "", ErrCancelled
	}
	return m.choice, nil
}

func runProgram(ctx context.Context, model tea.Model, in io.Reader, out io.Writer) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}
