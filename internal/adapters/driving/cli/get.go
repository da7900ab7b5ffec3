package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/persistdb/kvlite/internal/core/domain"
)

var getDefault string

var getCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&getDefault, "default", "", "value to print when the key is absent")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	value, err := store.Get(context.Background(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		if cmd.Flags().Changed("default") {
			cmd.Println(getDefault)
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}

	return printValue(cmd, value)
}
