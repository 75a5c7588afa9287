package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getuserd/userd/pkg/cli/internal/output"
	"github.com/getuserd/userd/pkg/client"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show status of a running userd server",
	Example: `  # Check the local server
  userd status

  # Check a remote server
  userd status --server http://remote:4380

  # Output as JSON
  userd status --json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL, client.WithTimeout(2*time.Second))

	status, err := c.Status(context.Background())
	if err != nil {
		return printNotRunning()
	}

	if jsonOutput {
		return output.JSON(status)
	}

	fmt.Printf("userd %s on %s\n", status.Status, serverURL)
	fmt.Println()
	fmt.Printf("  Mode:       %s\n", status.Mode)
	fmt.Printf("  Id policy:  %s\n", status.IDPolicy)
	fmt.Printf("  Uptime:     %s\n", formatUptime(status.Uptime))
	fmt.Printf("  Users:      %d\n", status.UserCount)
	fmt.Printf("  Requests:   %d logged\n", status.RequestCount)

	if m := status.Metrics; m != nil {
		fmt.Println()
		fmt.Println("Operations:")
		fmt.Printf("  Created:   %d\n", m.CreateCount)
		fmt.Printf("  Listed:    %d\n", m.ListCount)
		fmt.Printf("  Fetched:   %d\n", m.GetCount)
		fmt.Printf("  Updated:   %d\n", m.UpdateCount)
		fmt.Printf("  Deleted:   %d\n", m.DeleteCount)
		fmt.Printf("  Misses:    %d\n", m.MissCount)
	}
	return nil
}

// printNotRunning prints the "not running" status.
func printNotRunning() error {
	if jsonOutput {
		return output.JSON(map[string]any{"running": false})
	}

	fmt.Printf("No userd server responding at %s\n", serverURL)
	fmt.Println()
	fmt.Println("To start one: userd start")
	return nil
}

// formatUptime renders an uptime in seconds as a compact duration.
func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Minute {
		return d.String()
	}
	return d.Round(time.Second).String()
}

// notFoundError converts the client sentinel into a friendlier message
// for terminal users.
func notFoundError(err error, what string) error {
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("%s not found", what)
	}
	return err
}
