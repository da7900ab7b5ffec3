package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var wipeConfirmed bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every key-value pair",
	Long:  "Deletes every key-value pair. The store description is kept.",
	Args:  cobra.NoArgs,
	RunE:  runWipe,
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Reclaim space freed by deletions",
	Long:  "Asks the storage engine to reclaim freed space. May be slow on large stores.",
	Args:  cobra.NoArgs,
	RunE:  runCompact,
}

var aboutCmd = &cobra.Command{
	Use:   "about [description]",
	Short: "Print or set the store description",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAbout,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeConfirmed, "yes", false, "confirm the wipe")
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(aboutCmd)
}

func runWipe(cmd *cobra.Command, _ []string) error {
	if !wipeConfirmed {
		cmd.Println("Refusing to wipe without --yes.")
		return nil
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Clear(context.Background())
}

func runCompact(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Vacuum(context.Background())
}

func runAbout(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if len(args) == 1 {
		return store.SetAbout(ctx, args[0])
	}

	about, err := store.About(ctx)
	if err != nil {
		return err
	}
	cmd.Println(about)
	return nil
}
