// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders the location log as a simple list view.
package presenter

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"text/template"

	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/motoguide/internal/session"
)

const separator = "----"

var i18nVars = map[string]localize.MsgID{
	"timestamp": "Timestamp",
	"location":  "Location",
	"street":    "Street",
	"town":      "Town",
	"county":    "County",
	"country":   "Country",
	"test mode": "Test mode",
	"enabled":   "enabled",
	"disabled":  "disabled",
}

// Presenter prints log entries to its output using the entry template.
type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
	entry     *template.Template

	mu     sync.Mutex
	output io.Writer
}

func New(entryTpl string, loc *spreak.Localizer, output io.Writer) (*Presenter, error) {
	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	p := &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(loc.Language()),
		output:    output,
	}

	tpl, err := template.New("entry").Funcs(p.templateFuncMap()).Parse(entryTpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entry template: %w", err)
	}
	p.entry = tpl

	return p, nil
}

// Render executes the entry template for the given log entry.
func (p *Presenter) Render(entry session.LogEntry) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := p.entry.Execute(buf, entry); err != nil {
		return "", fmt.Errorf("failed to render entry template: %w", err)
	}
	return buf.String(), nil
}

// PrintEntry renders the entry and appends it to the list view.
func (p *Presenter) PrintEntry(entry session.LogEntry) error {
	text, err := p.Render(entry)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err = fmt.Fprintf(p.output, "%s\n%s", separator, text); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

// PrintTestMode writes a status line for the test mode toggle.
func (p *Presenter) PrintTestMode(enabled bool) error {
	state := p.loc("disabled")
	if enabled {
		state = p.loc("enabled")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintf(p.output, "%s: %s\n", p.loc("test mode"), state); err != nil {
		return fmt.Errorf("failed to write test mode status: %w", err)
	}
	return nil
}
