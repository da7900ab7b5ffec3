package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var setParseJSON bool

var setCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a value under a key",
	Long: `Stores a value under a key, overwriting any previous value.

By default the value is stored as the literal argument string. With
--json the argument is parsed first, so structured values survive a
round trip when a codec is configured.`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().BoolVar(&setParseJSON, "json", false, "parse the value argument as JSON before storing")
	rootCmd.AddCommand(setCmd)
}

func runSet(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var value any = args[1]
	if setParseJSON {
		if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
			return fmt.Errorf("parsing value as JSON: %w", err)
		}
	}

	return store.Set(context.Background(), args[0], value)
}
