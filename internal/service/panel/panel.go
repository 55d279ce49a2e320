package panel

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Data is what the side panel template can show about an accepted pallet.
type Data struct {
	Payload   string
	Camera    string
	At        time.Time
	Until     time.Time
	FirstSeen bool
	SeenCount int
}

// Renderer fills the side panel shown next to the indicator on accept.
type Renderer struct {
	tmpl *template.Template
}

// Load parses the template file. An empty path disables the panel.
func Load(path string) (*Renderer, error) {
	if path == "" {
		return nil, nil
	}
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse panel template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Parse builds a Renderer from template text.
func Parse(text string) (*Renderer, error) {
	tmpl, err := template.New("panel").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse panel template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template. A nil Renderer renders nothing.
func (r *Renderer) Render(data Data) (string, error) {
	if r == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render panel: %w", err)
	}
	return buf.String(), nil
}
