package engine

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NetworkManifest represents a declarative set of networks, in the
// style of a compose file's networks section.
type NetworkManifest struct {
	Version  int               `json:"version,omitempty" yaml:"version,omitempty"`
	Networks []ManifestNetwork `json:"networks"          yaml:"networks"`
}

// ManifestNetwork represents a single network in a manifest.
type ManifestNetwork struct {
	Name       string            `json:"name"                  yaml:"name"`
	Driver     string            `json:"driver,omitempty"      yaml:"driver,omitempty"`
	DriverOpts map[string]string `json:"driver_opts,omitempty" yaml:"driver_opts,omitempty"`
	Internal   bool              `json:"internal,omitempty"    yaml:"internal,omitempty"`
	Attachable bool              `json:"attachable,omitempty"  yaml:"attachable,omitempty"`
	Ingress    bool              `json:"ingress,omitempty"     yaml:"ingress,omitempty"`
	EnableIPv6 bool              `json:"enable_ipv6,omitempty" yaml:"enable_ipv6,omitempty"`
	IPAM       *ManifestIPAM     `json:"ipam,omitempty"        yaml:"ipam,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"      yaml:"labels,omitempty"`
}

// ManifestIPAM represents IPAM configuration in a manifest.
type ManifestIPAM struct {
	Driver  string             `json:"driver,omitempty"  yaml:"driver,omitempty"`
	Config  []ManifestIPAMPool `json:"config,omitempty"  yaml:"config,omitempty"`
	Options map[string]string  `json:"options,omitempty" yaml:"options,omitempty"`
}

// ManifestIPAMPool represents a single address pool in a manifest.
type ManifestIPAMPool struct {
	Subnet       string            `json:"subnet,omitempty"        yaml:"subnet,omitempty"`
	IPRange      string            `json:"ip_range,omitempty"      yaml:"ip_range,omitempty"`
	Gateway      string            `json:"gateway,omitempty"       yaml:"gateway,omitempty"`
	AuxAddresses map[string]string `json:"aux_addresses,omitempty" yaml:"aux_addresses,omitempty"`
}

// ParseManifest parses and validates a YAML network manifest.
func ParseManifest(data []byte) (*NetworkManifest, error) {
	var manifest NetworkManifest

	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	return &manifest, nil
}

// Validate checks the manifest for structural problems.
func (m *NetworkManifest) Validate() error {
	if len(m.Networks) == 0 {
		return ErrManifestNoNetworks
	}

	seen := make(map[string]struct{}, len(m.Networks))

	for i, network := range m.Networks {
		if network.Name == "" {
			return fmt.Errorf("network %d: %w", i, ErrManifestNameRequired)
		}

		if _, dup := seen[network.Name]; dup {
			return fmt.Errorf("network %q: %w", network.Name, ErrManifestDuplicateName)
		}

		seen[network.Name] = struct{}{}
	}

	return nil
}

// CreateOptions converts the manifest network to creation options.
func (n ManifestNetwork) CreateOptions() CreateNetworkOptions[string] {
	options := CreateNetworkOptions[string]{
		Name:           n.Name,
		CheckDuplicate: true,
		Driver:         n.Driver,
		Internal:       n.Internal,
		Attachable:     n.Attachable,
		Ingress:        n.Ingress,
		EnableIPv6:     n.EnableIPv6,
		Options:        n.DriverOpts,
		Labels:         n.Labels,
	}

	if n.IPAM != nil {
		options.IPAM = IPAM[string]{
			Driver:  n.IPAM.Driver,
			Options: n.IPAM.Options,
		}

		for _, pool := range n.IPAM.Config {
			options.IPAM.Config = append(options.IPAM.Config, IPAMConfig[string]{
				Subnet:     pool.Subnet,
				IPRange:    pool.IPRange,
				Gateway:    pool.Gateway,
				AuxAddress: pool.AuxAddresses,
			})
		}
	}

	return options
}

// ApplyOptions controls how a manifest is applied.
type ApplyOptions struct {
	// SkipExisting leaves networks whose name is already present on
	// the daemon untouched instead of failing the apply.
	SkipExisting bool
}

// DefaultApplyOptions returns the default apply behavior.
func DefaultApplyOptions() ApplyOptions {
	return ApplyOptions{SkipExisting: true}
}

// ApplyOutcome describes what happened to one manifest network.
type ApplyOutcome struct {
	Name    string
	Created bool
	Skipped bool
	ID      string
	Warning string
	Error   error
}

// ApplyManifest creates every network in the manifest, in order.
// Existing networks are skipped or reported as failures depending on
// options.SkipExisting; apply continues past individual failures and
// the returned error joins them.
func ApplyManifest(ctx context.Context, networks NetworksClient[string], manifest *NetworkManifest, options ApplyOptions) ([]ApplyOutcome, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	existing := make(map[string]struct{})

	if options.SkipExisting {
		listed, err := networks.List(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("listing networks: %w", err)
		}

		for _, network := range listed {
			existing[network.Name] = struct{}{}
		}
	}

	outcomes := make([]ApplyOutcome, 0, len(manifest.Networks))

	var errs []error

	for _, network := range manifest.Networks {
		outcome := ApplyOutcome{Name: network.Name}

		if _, found := existing[network.Name]; found {
			outcome.Skipped = true
			outcomes = append(outcomes, outcome)

			continue
		}

		created, err := networks.Create(ctx, network.CreateOptions())
		if err != nil {
			outcome.Error = err
			errs = append(errs, fmt.Errorf("network %q: %w", network.Name, err))
			outcomes = append(outcomes, outcome)

			continue
		}

		outcome.Created = true
		outcome.ID = created.ID
		outcome.Warning = created.Warning
		outcomes = append(outcomes, outcome)
	}

	if len(errs) > 0 {
		return outcomes, fmt.Errorf("applying manifest: %w", errors.Join(errs...))
	}

	return outcomes, nil
}
