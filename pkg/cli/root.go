package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	serverURL  string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "userd",
	Short: "userd is an in-memory user directory server",
	Long: `userd serves a small user directory over a REST API, useful for demos,
integration tests, and as a stand-in backend during frontend development.

The server runs in one of two modes: "dto" (the default, with boundary
validation and counter-based ids) or "basic" (pass-through handlers with
length-derived ids). Configuration can be provided via flags, environment
variables, or a userd.yaml configuration file.`,
	// No Run function here means 'userd' with no args will print help text by default.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultServerURL returns the server URL client commands talk to,
// honoring the USERD_SERVER environment variable.
func defaultServerURL() string {
	if url := os.Getenv("USERD_SERVER"); url != "" {
		return url
	}
	return "http://localhost:4380"
}

func init() {
	// Define persistent flags that apply globally to all userd commands
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Server base URL (default: http://localhost:4380)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
