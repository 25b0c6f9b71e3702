package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/snapkit/snapkit/internal/catalog"
)

// formKind selects what a form creates or edits.
type formKind int

const (
	formInstalled formKind = iota
	formNotInstalled
	formResource
	formLaunchCommand
)

type formField struct {
	label    string
	required bool
	input    textinput.Model
}

// form is a modal set of text inputs.
type form struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
	err    string
	pinID  int64 // Target of a launch command edit
}

func newField(label, placeholder string, required bool) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = 50
	ti.Prompt = ""
	return formField{label: label, required: required, input: ti}
}

func newInstalledForm() *form {
	return newForm(formInstalled, "Add installed app",
		newField("Name", "application name (required)", true),
		newField("Publisher", "publisher", false),
		newField("Version", "version", false),
		newField("Location", "install directory (optional)", false),
		newField("Tags", "comma separated", false),
	)
}

func newNotInstalledForm() *form {
	return newForm(formNotInstalled, "Add not-installed app",
		newField("Name", "application name (required)", true),
		newField("Download URL", "https://...", false),
		newField("Description", "description", false),
		newField("Tags", "comma separated", false),
	)
}

func newResourceForm() *form {
	return newForm(formResource, "Add resource",
		newField("Name", "resource name (required)", true),
		newField("Type", "auto, "+resourceTypeNames(), false),
		newField("Path", "path or URL (required)", true),
		newField("Tags", "comma separated", false),
	)
}

func newLaunchCommandForm(pin catalog.PinnedApp) *form {
	f := newForm(formLaunchCommand, "Launch command for "+pin.App.Name,
		newField("Command", "empty infers from the install location", false),
	)
	f.fields[0].input.SetValue(pin.LaunchCommand)
	f.pinID = pin.ID
	return f
}

func newForm(kind formKind, title string, fields ...formField) *form {
	f := &form{kind: kind, title: title, fields: fields}
	f.fields[0].input.Focus()
	return f
}

// value returns the trimmed value of the field with the given label.
func (f *form) value(label string) string {
	for _, fld := range f.fields {
		if fld.label == label {
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

// validate checks required fields and records the first failure.
func (f *form) validate() error {
	var missing []string
	for _, fld := range f.fields {
		if fld.required && strings.TrimSpace(fld.input.Value()) == "" {
			missing = append(missing, fld.label)
		}
	}
	if len(missing) > 0 {
		err := fmt.Errorf("%s required", strings.Join(missing, " and "))
		f.err = err.Error()
		return err
	}
	f.err = ""
	return nil
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

// update forwards a message to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(FormTitleStyle.Render(f.title))
	b.WriteString("\n")
	for i, fld := range f.fields {
		label := fld.label
		if fld.required {
			label += " *"
		}
		cursor := "  "
		if i == f.focus {
			cursor = SearchLabelStyle.Render("> ")
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cursor, FormLabelStyle.Render(label), fld.input.View()))
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString(FormErrorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render("tab/↑↓ move • enter save • esc cancel"))
	return FormStyle.Render(b.String())
}

func resourceTypeNames() string {
	names := make([]string, 0, len(catalog.ValidResourceTypes))
	for _, t := range catalog.ValidResourceTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
