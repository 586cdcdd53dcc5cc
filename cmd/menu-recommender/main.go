// cmd/menu-recommender/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "menu-recommender",
		Short:        "Recommend the menu item that best balances today's macros",
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("menu-recommender version %s\n", version))
	root.AddCommand(newServeCommand(), newRecommendCommand())
	return root
}
