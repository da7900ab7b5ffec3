package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// printValue writes a stored value to the command output. Scalars print
// bare; structured values (from a configured codec) print as JSON.
func printValue(cmd *cobra.Command, value any) error {
	switch v := value.(type) {
	case nil:
		cmd.Println()
		return nil
	case string:
		cmd.Println(v)
		return nil
	case []byte:
		cmd.Println(string(v))
		return nil
	case int64, float64:
		cmd.Println(v)
		return nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("formatting value: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
}
