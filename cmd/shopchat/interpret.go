package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lojasmm/shopchat/internal/config"
	"github.com/lojasmm/shopchat/internal/entry"
	"github.com/lojasmm/shopchat/internal/renderer"
	"github.com/lojasmm/shopchat/internal/styling"
	"github.com/lojasmm/shopchat/internal/widget"
)

type interpretOptions struct {
	file    string
	payload string
	role    string
	output  string
}

func newInterpretCmd() *cobra.Command {
	var opts interpretOptions

	cmd := &cobra.Command{
		Use:   "interpret",
		Short: "Interpret a conversation entry and print its view",
		Long: `Interpret reads a conversation entry as JSON (from --file, or stdin) and
prints the normalized view. With --payload the entry is built from the given
raw payload string and --role instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterpret(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the entry from this file")
	cmd.Flags().StringVar(&opts.payload, "payload", "", "raw entryPayload string")
	cmd.Flags().StringVar(&opts.role, "role", string(entry.RoleEndUser), "sender role used with --payload")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func runInterpret(stdin io.Reader, stdout, stderr io.Writer, opts interpretOptions) error {
	e, err := readEntry(stdin, opts)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.WarnLevel)

	button := styling.ButtonProps{Variant: "primary"}
	if cfg, err := config.Load(); err == nil {
		button = cfg.Button
		logger.SetLevel(cfg.LogLevel)
	}

	v := renderer.Interpret(e, logrus.NewEntry(logger))
	resp := widget.NewViewResponse("", e.Identifier, v, button)

	switch opts.output {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(resp)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}

func readEntry(stdin io.Reader, opts interpretOptions) (*entry.ConversationEntry, error) {
	if opts.payload != "" {
		return entry.NewTextEntry(opts.payload, opts.role), nil
	}

	r := stdin
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, fmt.Errorf("opening entry file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var e entry.ConversationEntry
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	return &e, nil
}
