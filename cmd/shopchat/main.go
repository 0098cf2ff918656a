package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shopchat",
		Short:         "Commerce messaging widget backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newInterpretCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("shopchat failed")
		os.Exit(1)
	}
}
