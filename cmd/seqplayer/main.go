// Command seqplayer plays image sequences on demand of a host process.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type flags struct {
	config   string
	catalog  string
	display  string
	host     string
	hostURL  string
	debug    bool
	logLevel string
	logFile  string
}

var opts flags

var rootCmd = &cobra.Command{
	Use:   "seqplayer",
	Short: "Rotating image-sequence player driven by a host",
	Long: `seqplayer shows a looping 24-frame image sequence chosen by a host
process. The host sends content commands naming a style and a word; the
player loads the frames, rotates them, lets the user drag or play them and
reports back when the user is done.`,
	SilenceUsage: true,
	RunE:         runPlayer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "",
		"TOML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "",
		"CUE catalog of display names and prompts (embedded default when empty)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false,
		"Enable the simulate action and the state overlay")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn, error or none")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "",
		"Write logs to this file instead of stderr")
	rootCmd.Flags().StringVarP(&opts.display, "display", "d", "",
		"Display: window, terminal or headless")
	rootCmd.Flags().StringVar(&opts.host, "host", "",
		"Host transport: stdio, websocket, window or none")
	rootCmd.Flags().StringVar(&opts.hostURL, "host-url", "",
		"WebSocket URL for the websocket host")

	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
