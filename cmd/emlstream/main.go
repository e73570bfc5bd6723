package main

import (
	"github.com/spf13/cobra"

	"github.com/zostay/go-emlstream/cmd/emlstream/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
