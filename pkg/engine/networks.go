package engine

import (
	"encoding/json"
	"strconv"
	"time"
)

// Text constrains the text kinds accepted by the generic network
// option types. Any type whose underlying type is string satisfies it,
// so options can be built from plain strings or from caller-defined
// named string types, and maps keyed by T behave like string-keyed
// maps on the wire.
type Text interface {
	~string
}

// CreateNetworkOptions configures NetworksClient.Create.
type CreateNetworkOptions[T Text] struct {
	// The network's name.
	Name T `json:"Name" yaml:"name"`
	// Check for networks with duplicate names. Networks are keyed by a
	// random ID rather than by name, so this is a best-effort check
	// only.
	CheckDuplicate bool `json:"CheckDuplicate" yaml:"check_duplicate"`
	// Name of the network driver plugin to use.
	Driver T `json:"Driver,omitempty" yaml:"driver,omitempty"`
	// Restrict external access to the network.
	Internal bool `json:"Internal" yaml:"internal"`
	// Globally scoped network is manually attachable by regular
	// containers from workers in swarm mode.
	Attachable bool `json:"Attachable" yaml:"attachable"`
	// Ingress network is the network which provides the routing-mesh
	// in swarm mode.
	Ingress bool `json:"Ingress" yaml:"ingress"`
	// IP address management configuration for the network.
	IPAM IPAM[T] `json:"IPAM" yaml:"ipam"`
	// Enable IPv6 on the network.
	EnableIPv6 bool `json:"EnableIPv6" yaml:"enable_ipv6"`
	// Network-specific options passed to the driver.
	Options map[T]T `json:"Options,omitempty" yaml:"options,omitempty"`
	// User-defined key/value metadata.
	Labels map[T]T `json:"Labels,omitempty" yaml:"labels,omitempty"`
}

// IPAM describes how addresses are assigned on a network.
type IPAM[T Text] struct {
	// Name of the IPAM driver to use.
	Driver T `json:"Driver,omitempty" yaml:"driver,omitempty"`
	// IPAM configuration blocks, one per subnet.
	Config []IPAMConfig[T] `json:"Config,omitempty" yaml:"config,omitempty"`
	// Driver-specific options.
	Options map[T]T `json:"Options,omitempty" yaml:"options,omitempty"`
}

// IPAMConfig is a single address range managed by the IPAM driver.
type IPAMConfig[T Text] struct {
	// Subnet in CIDR format.
	Subnet T `json:"Subnet,omitempty" yaml:"subnet,omitempty"`
	// Range of IPs, a subset of the subnet, from which to allocate
	// container addresses.
	IPRange T `json:"IPRange,omitempty" yaml:"ip_range,omitempty"`
	// Gateway address for the subnet.
	Gateway T `json:"Gateway,omitempty" yaml:"gateway,omitempty"`
	// Auxiliary addresses reserved for network devices, keyed by
	// device name.
	AuxAddress map[T]T `json:"AuxAddress,omitempty" yaml:"aux_address,omitempty"`
}

// CreateNetworkResults is the daemon's reply to a create call.
type CreateNetworkResults struct {
	ID      string `json:"Id"      yaml:"id"`
	Warning string `json:"Warning" yaml:"warning"`
}

// InspectNetworkOptions configures NetworksClient.Inspect.
type InspectNetworkOptions[T Text] struct {
	// Detailed inspect output for troubleshooting.
	Verbose bool `json:"Verbose" yaml:"verbose"`
	// Filter the network by scope (swarm, global, or local).
	Scope T `json:"Scope" yaml:"scope"`
}

// EncodeParams returns the inspect query parameters. Both pairs are
// always present, verbose first, so the request shape does not depend
// on which fields were set.
func (o InspectNetworkOptions[T]) EncodeParams() (Params, error) {
	return Params{
		{Key: "verbose", Value: strconv.FormatBool(o.Verbose)},
		{Key: "scope", Value: string(o.Scope)},
	}, nil
}

// InspectNetworkResults is the daemon's reply to an inspect call.
type InspectNetworkResults struct {
	Name       string                                     `json:"Name"       yaml:"name"`
	ID         string                                     `json:"Id"         yaml:"id"`
	Created    time.Time                                  `json:"Created"    yaml:"created"`
	Scope      string                                     `json:"Scope"      yaml:"scope"`
	Driver     string                                     `json:"Driver"     yaml:"driver"`
	EnableIPv6 bool                                       `json:"EnableIPv6" yaml:"enable_ipv6"`
	IPAM       IPAM[string]                               `json:"IPAM"       yaml:"ipam"`
	Internal   bool                                       `json:"Internal"   yaml:"internal"`
	Attachable bool                                       `json:"Attachable" yaml:"attachable"`
	Ingress    bool                                       `json:"Ingress"    yaml:"ingress"`
	Containers map[string]InspectNetworkResultsContainers `json:"Containers" yaml:"containers"`
	Options    map[string]string                          `json:"Options"    yaml:"options"`
	Labels     map[string]string                          `json:"Labels"     yaml:"labels"`
	ConfigFrom map[string]string                          `json:"ConfigFrom" yaml:"config_from"`
	ConfigOnly bool                                       `json:"ConfigOnly" yaml:"config_only"`
}

// InspectNetworkResultsContainers describes a container attached to
// an inspected network.
type InspectNetworkResultsContainers struct {
	Name        string `json:"Name"        yaml:"name"`
	EndpointID  string `json:"EndpointID"  yaml:"endpoint_id"`
	MacAddress  string `json:"MacAddress"  yaml:"mac_address"`
	IPv4Address string `json:"IPv4Address" yaml:"ipv4_address"`
	IPv6Address string `json:"IPv6Address" yaml:"ipv6_address"`
}

// ListNetworksOptions configures NetworksClient.List.
type ListNetworksOptions[T Text] struct {
	// Filters to process on the networks list. Available filters:
	//  - driver=<driver-name> matches a network's driver
	//  - id=<network-id> matches all or part of a network ID
	//  - label=<key> or label=<key>=<value> of a network label
	//  - name=<network-name> matches all or part of a network name
	//  - scope=["swarm"|"global"|"local"] filters networks by scope
	//  - type=["custom"|"builtin"] filters networks by type; custom
	//    returns all user-defined networks
	Filters map[T][]T `json:"Filters" yaml:"filters"`
}

// EncodeParams returns the list query parameters: a single "filters"
// pair carrying the JSON-encoded filter map.
func (o ListNetworksOptions[T]) EncodeParams() (Params, error) {
	encoded, err := encodeFilters(o.Filters)
	if err != nil {
		return nil, err
	}

	return Params{{Key: "filters", Value: encoded}}, nil
}

// ListNetworksResults is one entry of the daemon's reply to a list
// call. It carries the same fields as InspectNetworkResults; the
// daemon emits them in a different order, which decoding does not
// observe.
type ListNetworksResults struct {
	Name       string                                     `json:"Name"       yaml:"name"`
	ID         string                                     `json:"Id"         yaml:"id"`
	Created    time.Time                                  `json:"Created"    yaml:"created"`
	Scope      string                                     `json:"Scope"      yaml:"scope"`
	Driver     string                                     `json:"Driver"     yaml:"driver"`
	EnableIPv6 bool                                       `json:"EnableIPv6" yaml:"enable_ipv6"`
	Internal   bool                                       `json:"Internal"   yaml:"internal"`
	Attachable bool                                       `json:"Attachable" yaml:"attachable"`
	Ingress    bool                                       `json:"Ingress"    yaml:"ingress"`
	IPAM       IPAM[string]                               `json:"IPAM"       yaml:"ipam"`
	Options    map[string]string                          `json:"Options"    yaml:"options"`
	ConfigFrom map[string]string                          `json:"ConfigFrom" yaml:"config_from"`
	ConfigOnly bool                                       `json:"ConfigOnly" yaml:"config_only"`
	Containers map[string]InspectNetworkResultsContainers `json:"Containers" yaml:"containers"`
	Labels     map[string]string                          `json:"Labels"     yaml:"labels"`
}

// ConnectNetworkOptions configures NetworksClient.Connect.
type ConnectNetworkOptions[T Text] struct {
	// The ID or name of the container to connect to the network.
	Container T `json:"Container" yaml:"container"`
	// Configuration for the container's endpoint on this network.
	EndpointConfig EndpointSettings[T] `json:"EndpointConfig" yaml:"endpoint_config"`
}

// EndpointSettings is the configuration of a container's endpoint on
// a network.
type EndpointSettings[T Text] struct {
	// The endpoint's IPAM configuration.
	IPAMConfig EndpointIPAMConfig[T] `json:"IPAMConfig" yaml:"ipam_config"`
	// Container links to activate on the endpoint.
	Links []T `json:"Links,omitempty" yaml:"links,omitempty"`
	// Network-scoped aliases for the container.
	Aliases []T `json:"Aliases,omitempty" yaml:"aliases,omitempty"`
	// Unique ID of the network.
	NetworkID T `json:"NetworkID,omitempty" yaml:"network_id,omitempty"`
	// Unique ID for the service endpoint in a sandbox.
	EndpointID T `json:"EndpointID,omitempty" yaml:"endpoint_id,omitempty"`
	// Gateway address for this network.
	Gateway T `json:"Gateway,omitempty" yaml:"gateway,omitempty"`
	// IPv4 address.
	IPAddress T `json:"IPAddress,omitempty" yaml:"ip_address,omitempty"`
	// Mask length of the IPv4 address.
	IPPrefixLen int `json:"IPPrefixLen,omitempty" yaml:"ip_prefix_len,omitempty"`
	// IPv6 gateway address.
	IPv6Gateway T `json:"IPv6Gateway,omitempty" yaml:"ipv6_gateway,omitempty"`
	// Global IPv6 address.
	GlobalIPv6Address T `json:"GlobalIPv6Address,omitempty" yaml:"global_ipv6_address,omitempty"`
	// Mask length of the global IPv6 address.
	GlobalIPv6PrefixLen int64 `json:"GlobalIPv6PrefixLen,omitempty" yaml:"global_ipv6_prefix_len,omitempty"`
	// MAC address for the endpoint on this network.
	MacAddress T `json:"MacAddress,omitempty" yaml:"mac_address,omitempty"`
	// Driver options passed directly to the network driver.
	DriverOpts map[T]T `json:"DriverOpts,omitempty" yaml:"driver_opts,omitempty"`
}

// EndpointIPAMConfig is an endpoint's IPAM configuration.
type EndpointIPAMConfig[T Text] struct {
	IPv4Address  T   `json:"IPv4Address,omitempty"  yaml:"ipv4_address,omitempty"`
	IPv6Address  T   `json:"IPv6Address,omitempty"  yaml:"ipv6_address,omitempty"`
	LinkLocalIPs []T `json:"LinkLocalIPs,omitempty" yaml:"link_local_ips,omitempty"`
}

// DisconnectNetworkOptions configures NetworksClient.Disconnect.
type DisconnectNetworkOptions[T Text] struct {
	// The ID or name of the container to disconnect from the network.
	Container T `json:"Container" yaml:"container"`
	// Force the container to disconnect from the network.
	Force bool `json:"Force" yaml:"force"`
}

// PruneNetworksOptions configures NetworksClient.Prune.
type PruneNetworksOptions[T Text] struct {
	// Filters to process on the prune list. Available filters:
	//  - until=<timestamp> prunes networks created before this
	//    timestamp; Unix timestamps, date formatted timestamps, and Go
	//    duration strings (10m, 1h30m) relative to the daemon's time
	//    are accepted
	//  - label=<key>, label=<key>=<value>, label!=<key>, or
	//    label!=<key>=<value> prunes networks with (or without) the
	//    given labels
	Filters map[T][]T `json:"Filters" yaml:"filters"`
}

// EncodeParams returns the prune query parameters: a single "filters"
// pair carrying the JSON-encoded filter map.
func (o PruneNetworksOptions[T]) EncodeParams() (Params, error) {
	encoded, err := encodeFilters(o.Filters)
	if err != nil {
		return nil, err
	}

	return Params{{Key: "filters", Value: encoded}}, nil
}

// PruneNetworksResults is the daemon's reply to a prune call.
type PruneNetworksResults struct {
	NetworksDeleted []string `json:"NetworksDeleted" yaml:"networks_deleted"`
}

// encodeFilters JSON-encodes a filter map into the single value the
// daemon expects. A nil map still encodes to "{}" so that the filters
// parameter is present whenever options are.
func encodeFilters[T Text](filters map[T][]T) (string, error) {
	if filters == nil {
		filters = map[T][]T{}
	}

	data, err := json.Marshal(filters)
	if err != nil {
		return "", &EncodeError{What: "filters", Err: err}
	}

	return string(data), nil
}
