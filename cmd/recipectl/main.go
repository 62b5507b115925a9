package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Harshitk-cp/recipebot/internal/cli"
)

func main() {
	if err := cli.New().Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
