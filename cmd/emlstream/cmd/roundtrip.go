package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/multipart"
)

// ErrRoundTripDiffers is returned by the roundtrip command when the message
// does not serialize back to the same bytes.
var ErrRoundTripDiffers = errors.New("round trip differs from the original")

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip message",
	Short: "Shows the diff of a single message round-trip",
	Args:  cobra.ExactArgs(1),
	RunE:  RunRoundtrip,
}

func init() {
	rootCmd.AddCommand(roundtripCmd)
}

// RunRoundtrip parses the message into a part tree, serializes it again, and
// prints a line diff of any difference.
func RunRoundtrip(cmd *cobra.Command, args []string) error {
	in, err := openMessage(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	orig, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	out, err := roundtrip(logContext(cmd), orig)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if diff := lineDiff(string(orig), out); diff != "" {
		_, _ = fmt.Fprintln(w, diff)
		return ErrRoundTripDiffers
	}

	_, err = fmt.Fprintln(w, "round trip is identical")
	return err
}

func roundtrip(ctx context.Context, orig []byte) (string, error) {
	root, err := message.ParseMultipart(ctx, bytes.NewReader(orig),
		message.WithMultipartOptions(multipart.WithUnlimitedDepth()))
	if err != nil {
		return "", err
	}

	var opts []message.SerializeOption
	if root.Header.Break() == header.CRLF {
		opts = append(opts, message.WithCRLF())
	}

	buf := &bytes.Buffer{}
	if _, err := message.Serialize(ctx, buf, root.Part(), opts...); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// lineDiff returns a pretty printed line diff of a and b or an empty string
// when they are the same.
func lineDiff(a, b string) string {
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)
	return dmp.DiffPrettyText(diffs)
}
