package main

import (
	"fmt"

	"github.com/fwojciec/sourcebook"
)

// Run executes the auth set command.
func (c *AuthSetCmd) Run(deps *Dependencies) error {
	provider := sourcebook.Provider(c.Provider)
	if provider == sourcebook.ProviderOllama {
		fmt.Fprintf(deps.Stderr, "error: Ollama uses a host, not a key. Use 'sourcebook settings --ollama-host'\n")
		return sourcebook.Errorf(sourcebook.EINVALID, "ollama uses a host, not a key")
	}

	if err := deps.Credentials.SetCredential(deps.Ctx, provider, c.Key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Stored %s credential. Run 'sourcebook auth check %s' to validate it.\n", provider, provider)
	return nil
}

// Run executes the auth check command.
func (c *AuthCheckCmd) Run(deps *Dependencies) error {
	provider := sourcebook.Provider(c.Provider)
	if !provider.Valid() {
		fmt.Fprintf(deps.Stderr, "error: unknown provider %q\n", c.Provider)
		return sourcebook.Errorf(sourcebook.EINVALID, "unknown provider %q", c.Provider)
	}

	value, err := credentialValue(deps, provider)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	validator, err := deps.Factory.Validator(provider, value)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if err := validator.ValidateCredential(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if provider.KeyBased() {
		if err := deps.Credentials.MarkVerified(deps.Ctx, provider); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Credential for %s is valid\n", provider)
	return nil
}

// credentialValue resolves what a validation probe should use: the stored
// API key, or the configured host for Ollama.
func credentialValue(deps *Dependencies, provider sourcebook.Provider) (string, error) {
	if !provider.KeyBased() {
		settings, err := deps.Settings.Settings(deps.Ctx)
		if err != nil {
			return "", err
		}
		if settings.OllamaHost == "" {
			return "", sourcebook.Errorf(sourcebook.EUNAUTHORIZED, "no Ollama host configured")
		}
		return settings.OllamaHost, nil
	}

	credential, err := deps.Credentials.FindCredential(deps.Ctx, provider)
	if err != nil {
		return "", err
	}
	return credential.Value, nil
}

// Run executes the auth list command.
func (c *AuthListCmd) Run(deps *Dependencies) error {
	credentials, err := deps.Credentials.FindCredentials(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if len(credentials) == 0 {
		fmt.Fprintln(deps.Stdout, "No credentials stored. Use 'sourcebook auth set' to add one.")
		return nil
	}

	for _, cred := range credentials {
		status := "unverified"
		if cred.Verified {
			status = "verified"
		}
		fmt.Fprintf(deps.Stdout, "%-10s %s  %s\n", cred.Provider, mask(cred.Value), status)
	}

	return nil
}

// Run executes the auth delete command.
func (c *AuthDeleteCmd) Run(deps *Dependencies) error {
	provider := sourcebook.Provider(c.Provider)
	if err := deps.Credentials.DeleteCredential(deps.Ctx, provider); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed %s credential\n", provider)
	return nil
}

// mask hides all but the last four characters of a credential.
func mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
