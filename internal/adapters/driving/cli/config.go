package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration values. Keys use dot notation,
for example "spreadsheet.id" or "retry.max_attempts".`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := configKeys()
	for _, key := range keys {
		if value, ok := configStore.Get(key); ok {
			cmd.Printf("%-26s %v\n", key, value)
		}
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, coerce(raw)); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

// coerce turns a command line string into the most specific value type
// it parses as. Durations stay strings; the store parses them on read.
func coerce(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && isBoolLiteral(raw) {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func isBoolLiteral(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "false":
		return true
	}
	return false
}

// configKeys lists the known settings keys in display order.
func configKeys() []string {
	keys := []string{
		"spreadsheet.id",
		"spreadsheet.name",
		"spreadsheet.worksheet",
		"auth.credentials_file",
		"sync.lease_ttl",
		"sync.lock_wait",
		"sync.timeout",
		"retry.max_attempts",
		"retry.base_delay",
		"retry.max_delay",
		"rate.requests_per_second",
		"rate.burst",
		"index.snapshot",
		"index.snapshot_max_age",
		"drift.enabled",
		"drift.interval",
		"spool.dir",
		"ingest.strict_vendors",
		"paths.known_entities",
		"paths.feedback_file",
		"paths.data_dir",
		"log.file",
		"log.verbose",
	}
	sort.Strings(keys)
	return keys
}
