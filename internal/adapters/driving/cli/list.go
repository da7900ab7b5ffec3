package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	keysJSON  bool
	itemsJSON bool
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all keys",
	Args:  cobra.NoArgs,
	RunE:  runKeys,
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List all key-value pairs",
	Args:  cobra.NoArgs,
	RunE:  runItems,
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored pairs",
	Args:  cobra.NoArgs,
	RunE:  runCount,
}

func init() {
	keysCmd.Flags().BoolVar(&keysJSON, "json", false, "output keys as a JSON array")
	itemsCmd.Flags().BoolVar(&itemsJSON, "json", false, "output items as a JSON object")
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(countCmd)
}

func runKeys(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.Keys(context.Background())
	if err != nil {
		return err
	}

	if keysJSON {
		data, err := json.Marshal(printableKeys(keys))
		if err != nil {
			return fmt.Errorf("formatting keys: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, key := range keys {
		if err := printValue(cmd, key); err != nil {
			return err
		}
	}
	return nil
}

func runItems(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.Items(context.Background())
	if err != nil {
		return err
	}

	if itemsJSON {
		object := make(map[string]any, len(items))
		for _, item := range items {
			object[fmt.Sprint(printableKey(item.Key))] = printableKey(item.Value)
		}
		data, err := json.Marshal(object)
		if err != nil {
			return fmt.Errorf("formatting items: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, item := range items {
		cmd.Printf("%v\t", printableKey(item.Key))
		if err := printValue(cmd, item.Value); err != nil {
			return err
		}
	}
	return nil
}

func runCount(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Len(context.Background())
	if err != nil {
		return err
	}
	cmd.Println(count)
	return nil
}

// printableKey renders blob keys as text so output and JSON stay legible.
func printableKey(key any) any {
	if b, ok := key.([]byte); ok {
		return string(b)
	}
	return key
}

func printableKeys(keys []any) []any {
	out := make([]any, len(keys))
	for i, key := range keys {
		out[i] = printableKey(key)
	}
	return out
}
