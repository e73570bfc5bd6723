package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/header"
	_ "github.com/zostay/go-emlstream/message/header/encoding"
)

var (
	headersRaw     bool
	headersSummary bool

	headersCmd = &cobra.Command{
		Use:   "headers message",
		Short: "Prints the header of a message without reading the body",
		Args:  cobra.ExactArgs(1),
		RunE:  RunHeaders,
	}
)

func init() {
	headersCmd.Flags().BoolVar(&headersRaw, "raw", false,
		"print the header exactly as read")
	headersCmd.Flags().BoolVar(&headersSummary, "summary", false,
		"print only the sender, recipients, date, and subject")
	rootCmd.AddCommand(headersCmd)
}

// RunHeaders reads only as much of the message as is needed to parse the
// header and prints it.
func RunHeaders(cmd *cobra.Command, args []string) error {
	in, err := openMessage(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	m, err := message.Parse(logContext(cmd), in, message.WithoutBody())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch {
	case headersRaw:
		_, err = w.Write(m.RawHeader)
		return err
	case headersSummary:
		return printSummary(w, m.Header)
	}

	for _, f := range m.Header.Fields() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.Name, f.Text()); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, h *header.Header) error {
	for _, name := range []string{header.From, header.To, header.Cc} {
		al, err := h.GetAddressList(name)
		if err != nil {
			continue
		}

		addrs := make([]string, len(al))
		for i, a := range al {
			addrs[i] = a.Address()
		}

		if _, err := fmt.Fprintf(w, "%s: %s\n", name, strings.Join(addrs, ", ")); err != nil {
			return err
		}
	}

	if d, err := h.GetDate(); err == nil {
		if _, err := fmt.Fprintf(w, "%s: %s\n", header.Date, d.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	if f := h.First(header.Subject); f != nil {
		if _, err := fmt.Fprintf(w, "%s: %s\n", header.Subject, f.Text()); err != nil {
			return err
		}
	}

	return nil
}
