package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/persistdb/kvlite/internal/core/domain"
)

var popDefault string

var popCmd = &cobra.Command{
	Use:   "pop [key]",
	Short: "Print and delete the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runPop,
}

func init() {
	popCmd.Flags().StringVar(&popDefault, "default", "", "value to print when the key is absent")
	rootCmd.AddCommand(popCmd)
}

func runPop(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	value, err := store.Pop(context.Background(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		if cmd.Flags().Changed("default") {
			cmd.Println(popDefault)
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}

	return printValue(cmd, value)
}
