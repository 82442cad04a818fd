package main

import (
	"fmt"
	"os"

	"github.com/interpretive-systems/hunkslice/internal/cli"
	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperrors.GetMessage(err))
		os.Exit(1)
	}
}
