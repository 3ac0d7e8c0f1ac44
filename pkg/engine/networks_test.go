package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NetworkName exercises the Text constraint with a named string type.
type NetworkName string

func TestInspectNetworkOptions_EncodeParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		options  engine.InspectNetworkOptions[string]
		expected engine.Params
	}{
		{
			name:    "verbose with scope",
			options: engine.InspectNetworkOptions[string]{Verbose: true, Scope: "global"},
			expected: engine.Params{
				{Key: "verbose", Value: "true"},
				{Key: "scope", Value: "global"},
			},
		},
		{
			name:    "zero value still emits both pairs",
			options: engine.InspectNetworkOptions[string]{},
			expected: engine.Params{
				{Key: "verbose", Value: "false"},
				{Key: "scope", Value: ""},
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			params, err := testCase.options.EncodeParams()
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, params)
		})
	}
}

func TestInspectNetworkOptions_EncodeParams_NamedTextType(t *testing.T) {
	t.Parallel()

	options := engine.InspectNetworkOptions[NetworkName]{Verbose: true, Scope: "swarm"}

	params, err := options.EncodeParams()
	require.NoError(t, err)
	// The named-string instantiation produces the same pair order as
	// the plain-string one.
	assert.Equal(t, engine.Params{
		{Key: "verbose", Value: "true"},
		{Key: "scope", Value: "swarm"},
	}, params)
}

func TestListNetworksOptions_EncodeParams(t *testing.T) {
	t.Parallel()

	options := engine.ListNetworksOptions[string]{
		Filters: map[string][]string{"label": {"maintainer=x"}},
	}

	params, err := options.EncodeParams()
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "filters", params[0].Key)
	assert.JSONEq(t, `{"label":["maintainer=x"]}`, params[0].Value)
}

func TestListNetworksOptions_EncodeParams_EmptyFilters(t *testing.T) {
	t.Parallel()

	// An options value with no filters still sends the filters
	// parameter; only a nil options pointer at the call site sends
	// nothing.
	for name, options := range map[string]engine.ListNetworksOptions[string]{
		"nil map":   {},
		"empty map": {Filters: map[string][]string{}},
	} {
		options := options
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			params, err := options.EncodeParams()
			require.NoError(t, err)
			assert.Equal(t, engine.Params{{Key: "filters", Value: "{}"}}, params)
		})
	}
}

func TestPruneNetworksOptions_EncodeParams(t *testing.T) {
	t.Parallel()

	t.Run("empty filter map produces one parameter", func(t *testing.T) {
		t.Parallel()

		options := engine.PruneNetworksOptions[string]{Filters: map[string][]string{}}

		params, err := options.EncodeParams()
		require.NoError(t, err)
		assert.Equal(t, engine.Params{{Key: "filters", Value: "{}"}}, params)
	})

	t.Run("until filter", func(t *testing.T) {
		t.Parallel()

		options := engine.PruneNetworksOptions[string]{
			Filters: map[string][]string{"until": {"10m"}},
		}

		params, err := options.EncodeParams()
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.JSONEq(t, `{"until":["10m"]}`, params[0].Value)
	})

	t.Run("multi-valued filter keeps value order", func(t *testing.T) {
		t.Parallel()

		options := engine.PruneNetworksOptions[string]{
			Filters: map[string][]string{"label": {"env=dev", "env=test"}},
		}

		params, err := options.EncodeParams()
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.Equal(t, `{"label":["env=dev","env=test"]}`, params[0].Value)
	})
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestCreateNetworkOptions_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := engine.CreateNetworkOptions[string]{
		Name:           "backend",
		CheckDuplicate: true,
		Driver:         "bridge",
		Internal:       true,
		Attachable:     true,
		Ingress:        false,
		IPAM: engine.IPAM[string]{
			Driver: "default",
			Config: []engine.IPAMConfig[string]{
				{
					Subnet:     "10.10.0.0/16",
					IPRange:    "10.10.10.0/24",
					Gateway:    "10.10.10.1",
					AuxAddress: map[string]string{"router": "10.10.10.2"},
				},
				{
					Subnet: "2001:db8::/64",
				},
			},
			Options: map[string]string{"foo": "bar"},
		},
		EnableIPv6: true,
		Options:    map[string]string{"com.docker.network.bridge.name": "br-backend"},
		Labels:     map[string]string{"maintainer": "x"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded engine.CreateNetworkOptions[string]

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestCreateNetworkOptions_WireFieldNames(t *testing.T) {
	t.Parallel()

	options := engine.CreateNetworkOptions[string]{
		Name:       "wire",
		Driver:     "overlay",
		EnableIPv6: true,
		IPAM: engine.IPAM[string]{
			Config: []engine.IPAMConfig[string]{
				{Subnet: "10.0.0.0/24", IPRange: "10.0.0.0/25"},
			},
		},
	}

	data, err := json.Marshal(options)
	require.NoError(t, err)

	var raw map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(data, &raw))
	// The daemon expects PascalCase names with exact-case overrides.
	assert.Contains(t, raw, "Name")
	assert.Contains(t, raw, "CheckDuplicate")
	assert.Contains(t, raw, "EnableIPv6")
	assert.Contains(t, raw, "IPAM")
	assert.NotContains(t, raw, "Ipam")
	assert.NotContains(t, raw, "enable_ipv6")

	var ipam map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(raw["IPAM"], &ipam))

	var configs []map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(ipam["Config"], &configs))
	require.Len(t, configs, 1)
	assert.Contains(t, configs[0], "Subnet")
	assert.Contains(t, configs[0], "IPRange")
}

func TestIPAM_ConfigOrderPreserved(t *testing.T) {
	t.Parallel()

	ipam := engine.IPAM[string]{
		Config: []engine.IPAMConfig[string]{
			{Subnet: "10.1.0.0/24"},
			{Subnet: "10.2.0.0/24"},
			{Subnet: "10.3.0.0/24"},
		},
	}

	data, err := json.Marshal(ipam)
	require.NoError(t, err)

	var decoded engine.IPAM[string]

	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Config, 3)
	// Subnets are matched positionally at the daemon, so order is part
	// of the contract.
	assert.Equal(t, "10.1.0.0/24", decoded.Config[0].Subnet)
	assert.Equal(t, "10.2.0.0/24", decoded.Config[1].Subnet)
	assert.Equal(t, "10.3.0.0/24", decoded.Config[2].Subnet)
}

func TestConnectNetworkOptions_WireFieldNames(t *testing.T) {
	t.Parallel()

	options := engine.ConnectNetworkOptions[string]{
		Container: "web",
		EndpointConfig: engine.EndpointSettings[string]{
			IPAMConfig: engine.EndpointIPAMConfig[string]{
				IPv4Address:  "172.20.0.5",
				IPv6Address:  "2001:db8::5",
				LinkLocalIPs: []string{"169.254.0.5"},
			},
			Aliases:             []string{"web-primary"},
			NetworkID:           "net-1",
			EndpointID:          "ep-1",
			Gateway:             "172.20.0.1",
			IPAddress:           "172.20.0.5",
			IPPrefixLen:         16,
			IPv6Gateway:         "2001:db8::1",
			GlobalIPv6Address:   "2001:db8::5",
			GlobalIPv6PrefixLen: 64,
			MacAddress:          "02:42:ac:14:00:05",
			DriverOpts:          map[string]string{"opt": "val"},
		},
	}

	data, err := json.Marshal(options)
	require.NoError(t, err)

	payload := string(data)
	assert.Contains(t, payload, `"Container":"web"`)
	assert.Contains(t, payload, `"EndpointConfig"`)
	assert.Contains(t, payload, `"IPAMConfig"`)
	assert.Contains(t, payload, `"IPv4Address"`)
	assert.Contains(t, payload, `"LinkLocalIPs"`)
	assert.Contains(t, payload, `"EndpointID"`)
	assert.Contains(t, payload, `"IPPrefixLen"`)
	assert.Contains(t, payload, `"GlobalIPv6PrefixLen"`)

	var decoded engine.ConnectNetworkOptions[string]

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, options, decoded)
}

func TestDisconnectNetworkOptions_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(engine.DisconnectNetworkOptions[string]{
		Container: "web",
		Force:     true,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Container":"web","Force":true}`, string(data))
}

func TestInspectNetworkResults_Decode(t *testing.T) {
	t.Parallel()

	body := `{
		"Name": "backend",
		"Id": "0bbbb8f0a79a9e98bc3bfbd699340a2ff5656f6a5a84c622e234855eb0a9b0d5",
		"Created": "2026-08-20T10:30:00.000000000Z",
		"Scope": "local",
		"Driver": "bridge",
		"EnableIPv6": false,
		"Internal": true,
		"Attachable": false,
		"Ingress": false,
		"IPAM": {
			"Driver": "default",
			"Config": [{"Subnet": "172.20.0.0/16", "Gateway": "172.20.0.1"}]
		},
		"Containers": {
			"7aa0d1e8": {
				"Name": "web",
				"EndpointID": "ep-1",
				"MacAddress": "02:42:ac:14:00:02",
				"IPv4Address": "172.20.0.2/16",
				"IPv6Address": ""
			}
		},
		"Options": {"com.docker.network.bridge.default_bridge": "false"},
		"Labels": {"env": "dev"}
	}`

	var results engine.InspectNetworkResults

	require.NoError(t, json.Unmarshal([]byte(body), &results))
	assert.Equal(t, "backend", results.Name)
	assert.Equal(t, "local", results.Scope)
	assert.True(t, results.Internal)
	require.Len(t, results.IPAM.Config, 1)
	assert.Equal(t, "172.20.0.0/16", results.IPAM.Config[0].Subnet)
	require.Contains(t, results.Containers, "7aa0d1e8")
	assert.Equal(t, "ep-1", results.Containers["7aa0d1e8"].EndpointID)
	assert.Equal(t, "172.20.0.2/16", results.Containers["7aa0d1e8"].IPv4Address)
}

func TestCreateNetworkResults_Decode(t *testing.T) {
	t.Parallel()

	var results engine.CreateNetworkResults

	require.NoError(t, json.Unmarshal([]byte(`{"Id":"abc123","Warning":""}`), &results))
	assert.Equal(t, "abc123", results.ID)
	assert.Empty(t, results.Warning)
}

func TestPruneNetworksResults_Decode(t *testing.T) {
	t.Parallel()

	var results engine.PruneNetworksResults

	require.NoError(t, json.Unmarshal([]byte(`{"NetworksDeleted":["a","b"]}`), &results))
	assert.Equal(t, []string{"a", "b"}, results.NetworksDeleted)
}
