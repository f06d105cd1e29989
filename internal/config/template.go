package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConfigTemplate renders a starter config file for `revu init`. The selected
// standards and methodologies come from the wizard (or defaults).
func ConfigTemplate(selected, methodologies []string) string {
	cfg := DefaultConfig()
	if len(selected) > 0 {
		cfg.Selected = selected
	}
	if methodologies != nil {
		cfg.Methodologies = methodologies
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		// DefaultConfig always marshals; keep the signature simple
		panic(fmt.Sprintf("marshaling config template: %v", err))
	}
	var b strings.Builder
	b.Write(data)
	b.WriteString("\n")
	return b.String()
}
