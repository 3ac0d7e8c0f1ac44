package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewSystemCommand creates the system command group.
func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Manage the daemon",
		Long:  "Inspect daemon-level state: reachability, version, and info",
	}

	cmd.AddCommand(newSystemPingCommand())
	cmd.AddCommand(newSystemVersionCommand())
	cmd.AddCommand(newSystemInfoCommand())

	return cmd
}

func newSystemPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check daemon reachability",
		Long:  "Ping the daemon and report the API version it answers with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystemPingCommand(cmd.Context())
		},
	}
}

func runSystemPingCommand(ctx context.Context) error {
	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	ping, err := client.System().Ping(ctx)
	if err != nil {
		return fmt.Errorf("pinging daemon: %w", err)
	}

	output := viper.GetString("output")
	if output != OutputFormatTable {
		return renderStructured(output, ping)
	}

	_, _ = fmt.Fprintf(os.Stdout, "OK (API version %s, %s)\n", ping.APIVersion, ping.OSType)

	return nil
}

func newSystemVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show daemon version information",
		Long:  "Display version details for the daemon and its components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystemVersionCommand(cmd.Context())
		},
	}
}

func runSystemVersionCommand(ctx context.Context) error {
	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	version, err := client.System().Version(ctx)
	if err != nil {
		return fmt.Errorf("fetching daemon version: %w", err)
	}

	output := viper.GetString("output")
	if output != OutputFormatTable {
		return renderStructured(output, version)
	}

	return outputSystemVersionTable(version)
}

func outputSystemVersionTable(version *engine.VersionResults) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	if version.Platform.Name != "" {
		_ = table.Append("Platform", version.Platform.Name)
	}

	_ = table.Append("Version", version.Version)
	_ = table.Append("API Version", version.APIVersion)
	_ = table.Append("Min API Version", version.MinAPIVersion)
	_ = table.Append("Go Version", version.GoVersion)
	_ = table.Append("Git Commit", version.GitCommit)
	_ = table.Append("OS/Arch", version.Os+"/"+version.Arch)

	if version.KernelVersion != "" {
		_ = table.Append("Kernel Version", version.KernelVersion)
	}

	for _, component := range version.Components {
		_ = table.Append("Component: "+component.Name, component.Version)
	}

	_ = table.Render()

	return nil
}

func newSystemInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show daemon information",
		Long:  "Display a summary of daemon state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystemInfoCommand(cmd.Context())
		},
	}
}

func runSystemInfoCommand(ctx context.Context) error {
	client, err := CreateClient(ctx)
	if err != nil {
		return err
	}

	info, err := client.System().Info(ctx)
	if err != nil {
		return fmt.Errorf("fetching daemon info: %w", err)
	}

	output := viper.GetString("output")
	if output != OutputFormatTable {
		return renderStructured(output, info)
	}

	return outputSystemInfoTable(info)
}

func outputSystemInfoTable(info *engine.InfoResults) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Name", info.Name)
	_ = table.Append("ID", info.ID)
	_ = table.Append("Server Version", info.ServerVersion)
	_ = table.Append("Storage Driver", info.Driver)
	_ = table.Append("Operating System", info.OperatingSystem)
	_ = table.Append("OS Type", info.OSType)
	_ = table.Append("Architecture", info.Architecture)
	_ = table.Append("Kernel Version", info.KernelVersion)
	_ = table.Append("CPUs", strconv.Itoa(info.NCPU))
	_ = table.Append("Total Memory", units.BytesSize(float64(info.MemTotal)))
	_ = table.Append("Containers", strconv.Itoa(info.Containers))
	_ = table.Append("  Running", strconv.Itoa(info.ContainersRunning))
	_ = table.Append("  Paused", strconv.Itoa(info.ContainersPaused))
	_ = table.Append("  Stopped", strconv.Itoa(info.ContainersStopped))
	_ = table.Append("Images", strconv.Itoa(info.Images))

	if len(info.Labels) > 0 {
		_ = table.Append("Labels", strings.Join(info.Labels, ", "))
	}

	_ = table.Render()

	for _, warning := range info.Warnings {
		_, _ = fmt.Fprintln(os.Stderr, warning)
	}

	return nil
}
