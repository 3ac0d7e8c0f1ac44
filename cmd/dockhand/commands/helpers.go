package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dockhand-io/dockhand/internal/constants"
	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/dockhand-io/dockhand/pkg/engineclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	OutputFormatJSON  = constants.FormatJSON
	OutputFormatYAML  = constants.FormatYAML
	OutputFormatTable = constants.FormatTable
)

// CreateClient builds a daemon client from the global flags and any
// matching DOCKHAND_* environment variables.
func CreateClient(ctx context.Context) (engine.Client, error) {
	config := &engine.Config{
		Host:                  viper.GetString("host"),
		APIVersion:            viper.GetString("api-version"),
		HTTPTimeout:           constants.DefaultHTTPTimeout,
		TLSInsecureSkipVerify: viper.GetBool("tls-skip-verify"),
		UserAgent:             "dockhand/" + constants.ClientVersion,
	}

	if config.Host == "" {
		config.Host = os.Getenv("DOCKER_HOST")
	}

	if config.APIVersion == "" {
		config.APIVersion = constants.DefaultAPIVersion
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = newCLILogger()
	}

	if viper.GetBool("cache") {
		config.Cache = engine.DefaultCacheConfig()
	}

	client, err := engineclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}

	if config.Cache != nil {
		// A failed warm-up is not fatal; reads fall through to the
		// daemon.
		if err := engineclient.WarmCache(ctx, client); err != nil && config.Logger != nil {
			config.Logger.Debug("cache warm-up failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return client, nil
}

// renderJSON writes v to stdout as indented JSON.
func renderJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", constants.JSONIndent)

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

// renderYAML writes v to stdout as YAML.
func renderYAML(v interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer func() { _ = encoder.Close() }()

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return nil
}

// renderStructured dispatches json/yaml output and rejects anything
// that is not a known format. Table rendering is handled per command.
func renderStructured(format string, v interface{}) error {
	switch format {
	case OutputFormatJSON:
		return renderJSON(v)
	case OutputFormatYAML:
		return renderYAML(v)
	default:
		return fmt.Errorf("%w: %q", engine.ErrUnknownOutputFormat, format)
	}
}

// parseKeyValues converts repeated key=value flag values into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%q: %w", pair, constants.ErrInvalidKeyValueFormat)
		}

		values[key] = value
	}

	return values, nil
}

// parseFilters converts repeated key=value flag values into the
// multi-valued filter map the daemon expects. The same key may repeat.
func parseFilters(pairs []string) (map[string][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	filters := make(map[string][]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%q: %w", pair, constants.ErrInvalidFilterFormat)
		}

		filters[key] = append(filters[key], value)
	}

	return filters, nil
}

// truncateID shortens a network ID the way the engine's own CLI does.
func truncateID(id string) string {
	if len(id) > constants.IDDisplayLength {
		return id[:constants.IDDisplayLength]
	}

	return id
}
