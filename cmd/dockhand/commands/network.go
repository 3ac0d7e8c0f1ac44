package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/dockhand-io/dockhand/internal/constants"
	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewNetworkCommand creates the network command group.
func NewNetworkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "network",
		Aliases: []string{"networks", "net"},
		Short:   "Manage networks",
		Long:    "Create, list, inspect, connect, and remove Docker networks",
	}

	cmd.AddCommand(newNetworkCreateCommand())
	cmd.AddCommand(newNetworkListCommand())
	cmd.AddCommand(newNetworkInspectCommand())
	cmd.AddCommand(newNetworkRemoveCommand())
	cmd.AddCommand(newNetworkConnectCommand())
	cmd.AddCommand(newNetworkDisconnectCommand())
	cmd.AddCommand(newNetworkPruneCommand())
	cmd.AddCommand(newNetworkApplyCommand())

	return cmd
}

// NetworkCreateOptions holds the flag values for network create.
type NetworkCreateOptions struct {
	Driver       string
	DriverOpts   []string
	Internal     bool
	Attachable   bool
	Ingress      bool
	IPv6         bool
	IPAMDriver   string
	IPAMOpts     []string
	Subnets      []string
	Gateways     []string
	IPRanges     []string
	AuxAddresses []string
	Labels       []string
}

func newNetworkCreateCommand() *cobra.Command {
	var opts NetworkCreateOptions

	cmd := &cobra.Command{
		Use:   "create NETWORK",
		Short: "Create a network",
		Long:  "Create a new network on the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworkCreateCommand(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Driver, "driver", "d", "", "driver to manage the network (default \"bridge\")")
	cmd.Flags().StringArrayVarP(&opts.DriverOpts, "opt", "o", nil, "driver-specific options (key=value)")
	cmd.Flags().BoolVar(&opts.Internal, "internal", false, "restrict external access to the network")
	cmd.Flags().BoolVar(&opts.Attachable, "attachable", false, "enable manual container attachment")
	cmd.Flags().BoolVar(&opts.Ingress, "ingress", false, "create swarm routing-mesh network")
	cmd.Flags().BoolVar(&opts.IPv6, "ipv6", false, "enable IPv6 networking")
	cmd.Flags().StringVar(&opts.IPAMDriver, "ipam-driver", "", "IP address management driver")
	cmd.Flags().StringArrayVar(&opts.IPAMOpts, "ipam-opt", nil, "IPAM driver options (key=value)")
	cmd.Flags().StringArrayVar(&opts.Subnets, "subnet", nil, "subnet in CIDR format")
	cmd.Flags().StringArrayVar(&opts.Gateways, "gateway", nil, "gateway for the matching subnet")
	cmd.Flags().StringArrayVar(&opts.IPRanges, "ip-range", nil, "allocate container IPs from a sub-range")
	cmd.Flags().StringArrayVar(&opts.AuxAddresses, "aux-address", nil, "auxiliary addresses for the first subnet (name=ip)")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "metadata labels (key=value)")

	return cmd
}

func runNetworkCreateCommand(ctx context.Context, name string, opts NetworkCreateOptions) error {
	createOpts, err := buildCreateOptions(name, opts)
	if err != nil {
		return err
	}

	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	created, err := client.Networks().Create(ctx, createOpts)
	if err != nil {
		return fmt.Errorf("creating network '%s': %w", name, err)
	}

	if created.Warning != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %s\n", created.Warning)
	}

	_, _ = fmt.Fprintln(os.Stdout, created.ID)

	return nil
}

// buildCreateOptions translates create flag values into the daemon's
// request shape. Gateways and IP ranges pair with subnets by index,
// the way the engine's own CLI pairs them.
func buildCreateOptions(name string, opts NetworkCreateOptions) (engine.CreateNetworkOptions[string], error) {
	createOpts := engine.CreateNetworkOptions[string]{
		Name:           name,
		CheckDuplicate: true,
		Driver:         opts.Driver,
		Internal:       opts.Internal,
		Attachable:     opts.Attachable,
		Ingress:        opts.Ingress,
		EnableIPv6:     opts.IPv6,
	}

	driverOpts, err := parseKeyValues(opts.DriverOpts)
	if err != nil {
		return createOpts, err
	}

	createOpts.Options = driverOpts

	labels, err := parseKeyValues(opts.Labels)
	if err != nil {
		return createOpts, err
	}

	createOpts.Labels = labels

	ipam, err := buildIPAM(opts)
	if err != nil {
		return createOpts, err
	}

	createOpts.IPAM = ipam

	return createOpts, nil
}

func buildIPAM(opts NetworkCreateOptions) (engine.IPAM[string], error) {
	ipam := engine.IPAM[string]{Driver: opts.IPAMDriver}

	ipamOpts, err := parseKeyValues(opts.IPAMOpts)
	if err != nil {
		return ipam, err
	}

	ipam.Options = ipamOpts

	if len(opts.Gateways) > len(opts.Subnets) || len(opts.IPRanges) > len(opts.Subnets) {
		return ipam, constants.ErrInvalidSubnetIndex
	}

	for i, subnet := range opts.Subnets {
		pool := engine.IPAMConfig[string]{Subnet: subnet}

		if i < len(opts.Gateways) {
			pool.Gateway = opts.Gateways[i]
		}

		if i < len(opts.IPRanges) {
			pool.IPRange = opts.IPRanges[i]
		}

		ipam.Config = append(ipam.Config, pool)
	}

	if len(opts.AuxAddresses) > 0 {
		aux, err := parseKeyValues(opts.AuxAddresses)
		if err != nil {
			return ipam, err
		}

		if len(ipam.Config) == 0 {
			ipam.Config = append(ipam.Config, engine.IPAMConfig[string]{})
		}

		ipam.Config[0].AuxAddress = aux
	}

	return ipam, nil
}

func newNetworkListCommand() *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List networks",
		Long:    "List the networks known to the daemon",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworkListCommand(cmd.Context(), filters)
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter output (e.g. driver=bridge, name=web)")

	return cmd
}

func runNetworkListCommand(ctx context.Context, rawFilters []string) error {
	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	var options *engine.ListNetworksOptions[string]

	filters, err := parseFilters(rawFilters)
	if err != nil {
		return err
	}

	if filters != nil {
		options = &engine.ListNetworksOptions[string]{Filters: filters}
	}

	networks, err := client.Networks().List(ctx, options)
	if err != nil {
		return fmt.Errorf("listing networks: %w", err)
	}

	output := viper.GetString("output")
	if output != OutputFormatTable {
		return renderStructured(output, networks)
	}

	return outputNetworksTable(networks)
}

func outputNetworksTable(networks []engine.ListNetworksResults) error {
	if len(networks) == 0 {
		_, _ = os.Stdout.WriteString("No networks found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Network ID", "Name", "Driver", "Scope", "Created")

	for _, network := range networks {
		created := constants.NotAvailable
		if !network.Created.IsZero() {
			created = units.HumanDuration(time.Since(network.Created)) + " ago"
		}

		_ = table.Append(truncateID(network.ID), network.Name, network.Driver, network.Scope, created)
	}

	_ = table.Render()

	return nil
}

func newNetworkInspectCommand() *cobra.Command {
	var (
		verbose bool
		scope   string
	)

	cmd := &cobra.Command{
		Use:   "inspect NETWORK",
		Short: "Inspect a network",
		Long:  "Display detailed information about a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var options *engine.InspectNetworkOptions[string]

			// Only send query parameters when an inspect flag was given.
			if cmd.Flags().Changed("verbose") || cmd.Flags().Changed("scope") {
				options = &engine.InspectNetworkOptions[string]{
					Verbose: verbose,
					Scope:   scope,
				}
			}

			return runNetworkInspectCommand(cmd.Context(), args[0], options)
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "detailed inspect output for troubleshooting")
	cmd.Flags().StringVar(&scope, "scope", "", "filter the network by scope (swarm, global, local)")

	return cmd
}

func runNetworkInspectCommand(ctx context.Context, name string, options *engine.InspectNetworkOptions[string]) error {
	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	network, err := client.Networks().Inspect(ctx, name, options)
	if err != nil {
		return fmt.Errorf("inspecting network '%s': %w", name, err)
	}

	output := viper.GetString("output")
	if output != OutputFormatTable {
		return renderStructured(output, network)
	}

	return outputNetworkInspectTable(network)
}

func outputNetworkInspectTable(network *engine.InspectNetworkResults) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Name", network.Name)
	_ = table.Append("ID", network.ID)
	_ = table.Append("Driver", network.Driver)
	_ = table.Append("Scope", network.Scope)
	_ = table.Append("Internal", fmt.Sprintf("%t", network.Internal))
	_ = table.Append("Attachable", fmt.Sprintf("%t", network.Attachable))
	_ = table.Append("Ingress", fmt.Sprintf("%t", network.Ingress))
	_ = table.Append("IPv6", fmt.Sprintf("%t", network.EnableIPv6))

	if !network.Created.IsZero() {
		_ = table.Append("Created", network.Created.Format("2006-01-02 15:04:05"))
	}

	if network.IPAM.Driver != "" {
		_ = table.Append("IPAM Driver", network.IPAM.Driver)
	}

	for _, pool := range network.IPAM.Config {
		subnet := pool.Subnet
		if pool.Gateway != "" {
			subnet += " (gateway " + pool.Gateway + ")"
		}

		_ = table.Append("Subnet", subnet)
	}

	for id, container := range network.Containers {
		_ = table.Append("Container", fmt.Sprintf("%s (%s, %s)", container.Name, truncateID(id), container.IPv4Address))
	}

	_, _ = fmt.Fprintf(os.Stdout, "Network: %s\n\n", network.Name)
	_ = table.Render()

	return nil
}

func newNetworkRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm NETWORK [NETWORK...]",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove one or more networks",
		Long:    "Remove one or more networks by name or ID",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworkRemoveCommand(cmd.Context(), args)
		},
	}
}

func runNetworkRemoveCommand(ctx context.Context, names []string) error {
	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		err := client.Networks().Remove(ctx, name)
		if err != nil {
			return fmt.Errorf("removing network '%s': %w", name, err)
		}

		_, _ = fmt.Fprintln(os.Stdout, name)
	}

	return nil
}

// NetworkConnectOptions holds the flag values for network connect.
type NetworkConnectOptions struct {
	Aliases      []string
	IPv4         string
	IPv6         string
	Links        []string
	LinkLocalIPs []string
	DriverOpts   []string
}

func newNetworkConnectCommand() *cobra.Command {
	var opts NetworkConnectOptions

	cmd := &cobra.Command{
		Use:   "connect NETWORK CONTAINER",
		Short: "Connect a container to a network",
		Long:  "Connect a running container to a network",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworkConnectCommand(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Aliases, "alias", nil, "network-scoped alias for the container")
	cmd.Flags().StringVar(&opts.IPv4, "ip", "", "IPv4 address (e.g. 172.30.100.104)")
	cmd.Flags().StringVar(&opts.IPv6, "ip6", "", "IPv6 address (e.g. 2001:db8::33)")
	cmd.Flags().StringArrayVar(&opts.Links, "link", nil, "add link to another container")
	cmd.Flags().StringArrayVar(&opts.LinkLocalIPs, "link-local-ip", nil, "container link-local address")
	cmd.Flags().StringArrayVar(&opts.DriverOpts, "driver-opt", nil, "driver options for the endpoint (key=value)")

	return cmd
}

func runNetworkConnectCommand(ctx context.Context, network, container string, opts NetworkConnectOptions) error {
	driverOpts, err := parseKeyValues(opts.DriverOpts)
	if err != nil {
		return err
	}

	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	connectOpts := engine.ConnectNetworkOptions[string]{
		Container: container,
		EndpointConfig: engine.EndpointSettings[string]{
			IPAMConfig: engine.EndpointIPAMConfig[string]{
				IPv4Address:  opts.IPv4,
				IPv6Address:  opts.IPv6,
				LinkLocalIPs: opts.LinkLocalIPs,
			},
			Links:      opts.Links,
			Aliases:    opts.Aliases,
			DriverOpts: driverOpts,
		},
	}

	err = client.Networks().Connect(ctx, network, connectOpts)
	if err != nil {
		return fmt.Errorf("connecting '%s' to network '%s': %w", container, network, err)
	}

	return nil
}

func newNetworkDisconnectCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "disconnect NETWORK CONTAINER",
		Short: "Disconnect a container from a network",
		Long:  "Disconnect a container from a network",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworkDisconnectCommand(cmd.Context(), args[0], args[1], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force the container to disconnect")

	return cmd
}

func runNetworkDisconnectCommand(ctx context.Context, network, container string, force bool) error {
	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	err = client.Networks().Disconnect(ctx, network, engine.DisconnectNetworkOptions[string]{
		Container: container,
		Force:     force,
	})
	if err != nil {
		return fmt.Errorf("disconnecting '%s' from network '%s': %w", container, network, err)
	}

	return nil
}

func newNetworkPruneCommand() *cobra.Command {
	var (
		filters []string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove all unused networks",
		Long:  "Remove all networks not used by at least one container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworkPruneCommand(cmd.Context(), filters, force)
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter pruning (e.g. until=24h, label=env=dev)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not prompt for confirmation")

	return cmd
}

func runNetworkPruneCommand(ctx context.Context, rawFilters []string, force bool) error {
	if !force {
		_, _ = os.Stdout.WriteString("This will remove all networks not used by at least one container.\nAre you sure you want to continue? (y/N): ")

		var response string

		_, _ = fmt.Scanln(&response)

		response = strings.ToLower(strings.TrimSpace(response))
		if response != constants.ConfirmationYes && response != constants.ConfirmationYesLong {
			return engine.ErrPruneDeclined
		}
	}

	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	var options *engine.PruneNetworksOptions[string]

	filters, err := parseFilters(rawFilters)
	if err != nil {
		return err
	}

	if filters != nil {
		options = &engine.PruneNetworksOptions[string]{Filters: filters}
	}

	results, err := client.Networks().Prune(ctx, options)
	if err != nil {
		return fmt.Errorf("pruning networks: %w", err)
	}

	if len(results.NetworksDeleted) == 0 {
		_, _ = os.Stdout.WriteString("No networks removed\n")

		return nil
	}

	_, _ = os.Stdout.WriteString("Deleted networks:\n")

	for _, name := range results.NetworksDeleted {
		_, _ = fmt.Fprintln(os.Stdout, name)
	}

	return nil
}

func newNetworkApplyCommand() *cobra.Command {
	var (
		file         string
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a network manifest",
		Long:  "Create the networks declared in a YAML manifest file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworkApplyCommand(cmd.Context(), file, skipExisting)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the manifest file (required)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "leave networks that already exist untouched")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runNetworkApplyCommand(ctx context.Context, file string, skipExisting bool) error {
	if file == "" {
		return constants.ErrManifestFileRequired
	}

	if strings.Contains(file, "..") {
		return fmt.Errorf("%q: %w", file, constants.ErrDirectoryTraversalDetected)
	}

	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	manifest, err := engine.ParseManifest(data)
	if err != nil {
		return err
	}

	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	outcomes, applyErr := engine.ApplyManifest(ctx, client.Networks(), manifest, engine.ApplyOptions{
		SkipExisting: skipExisting,
	})

	for _, outcome := range outcomes {
		switch {
		case outcome.Skipped:
			_, _ = fmt.Fprintf(os.Stdout, "%s: exists, skipped\n", outcome.Name)
		case outcome.Created:
			_, _ = fmt.Fprintf(os.Stdout, "%s: created (%s)\n", outcome.Name, truncateID(outcome.ID))

			if outcome.Warning != "" {
				_, _ = fmt.Fprintf(os.Stderr, "%s: warning: %s\n", outcome.Name, outcome.Warning)
			}
		case outcome.Error != nil:
			_, _ = fmt.Fprintf(os.Stdout, "%s: failed: %v\n", outcome.Name, outcome.Error)
		}
	}

	return applyErr
}
