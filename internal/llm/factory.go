package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

type constructor func(Config) (Provider, error)

var constructors = map[string]constructor{
	"openai":    wrap(NewOpenAIProvider),
	"anthropic": wrap(NewAnthropicProvider),
	"ollama":    wrap(NewOllamaProvider),
}

// wrap keeps a failed constructor from returning a typed nil Provider
func wrap[P Provider](fn func(Config) (P, error)) constructor {
	return func(c Config) (Provider, error) {
		p, err := fn(c)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

var aliases = map[string]string{
	"claude": "anthropic",
	"gpt":    "openai",
	"local":  "ollama",
}

// NewProvider builds the configured provider. An empty, "none" or "off"
// provider disables analysis and returns a nil Provider without error.
func NewProvider(config Config) (Provider, error) {
	name := canonicalName(config.Provider)
	switch name {
	case "", "none", "off":
		return nil, nil
	}

	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: %s)", config.Provider, strings.Join(ProviderNames(), ", "))
	}

	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = defaults.MaxTokens
	}
	config.Provider = name
	return build(config)
}

// ProviderNames lists the supported provider names
func ProviderNames() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func canonicalName(provider string) string {
	name := strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// ConfigFromModel maps the loaded settings onto a provider config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
		NoProxy:    c.NoProxy,
	}
}
