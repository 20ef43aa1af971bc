package main

import (
	"fmt"

	"github.com/fwojciec/sourcebook"
)

// Run executes the models command.
func (c *ModelsCmd) Run(deps *Dependencies) error {
	settings, err := deps.Settings.Settings(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Models (default: %s):\n\n", settings.DefaultModel)
	for _, m := range settings.Models {
		marker := " "
		if m.ID == settings.DefaultModel {
			marker = "*"
		}
		fmt.Fprintf(deps.Stdout, "%s %-28s %-10s %d tokens\n", marker, m.ID, m.Provider, m.ContextTokens)
	}

	return nil
}

// Run executes the settings command.
func (c *SettingsCmd) Run(deps *Dependencies) error {
	if c.DefaultModel != "" || c.OllamaHost != "" {
		upd := sourcebook.SettingsUpdate{}
		if c.DefaultModel != "" {
			upd.DefaultModel = &c.DefaultModel
		}
		if c.OllamaHost != "" {
			upd.OllamaHost = &c.OllamaHost
		}
		if _, err := deps.Settings.UpdateSettings(deps.Ctx, upd); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
			return err
		}
	}

	settings, err := deps.Settings.Settings(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	host := settings.OllamaHost
	if host == "" {
		host = "(not set)"
	}
	fmt.Fprintf(deps.Stdout, "Default model: %s\n", settings.DefaultModel)
	fmt.Fprintf(deps.Stdout, "Ollama host:   %s\n", host)
	if deps.ConfigPath != "" {
		fmt.Fprintf(deps.Stdout, "Config file:   %s\n", deps.ConfigPath)
	}

	return nil
}
