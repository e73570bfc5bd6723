package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/multipart"
	"github.com/zostay/go-emlstream/message/walker"
)

var (
	treeMaxDepth int

	treeCmd = &cobra.Command{
		Use:   "tree message",
		Short: "Shows the part tree of a message",
		Args:  cobra.ExactArgs(1),
		RunE:  RunTree,
	}
)

func init() {
	treeCmd.Flags().IntVar(&treeMaxDepth, "max-depth", multipart.DefaultMaxDepth,
		"number of multipart levels to split, negative for no limit")
	rootCmd.AddCommand(treeCmd)
}

// RunTree parses the message and prints one line per part.
func RunTree(cmd *cobra.Command, args []string) error {
	in, err := openMessage(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	root, err := message.ParseMultipart(logContext(cmd), in,
		message.WithMultipartOptions(multipart.WithMaxDepth(treeMaxDepth)))
	if err != nil {
		return err
	}

	return printTree(cmd.OutOrStdout(), root)
}

func printTree(w io.Writer, root *message.Multipart) error {
	multi := color.New(color.FgCyan, color.Bold)
	attach := color.New(color.FgYellow)

	var pw walker.PartWalker = func(depth, _ int, part *message.Multipart) error {
		ct := part.ContentType
		if ct == "" {
			ct = "-"
		}

		line := fmt.Sprintf("%s%d %s", strings.Repeat("  ", depth), part.ID, ct)
		if part.IsMultipart() {
			_, err := fmt.Fprintln(w, multi.Sprint(line))
			return err
		}

		if part.Attachment != "" {
			line += " " + attach.Sprintf("[%s]", part.Attachment)
		}

		size := len(part.Body)
		if part.Content != nil {
			size = len(part.Content)
		}

		_, err := fmt.Fprintf(w, "%s (%d bytes)\n", line, size)
		return err
	}

	return pw.Walk(root)
}
