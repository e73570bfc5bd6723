package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zostay/go-emlstream/message"
	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/multipart"
	"github.com/zostay/go-emlstream/message/transfer"
)

var (
	extractDir string

	extractCmd = &cobra.Command{
		Use:   "extract message",
		Short: "Writes every base64 encoded part of a message to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunExtract,
	}
)

func init() {
	extractCmd.Flags().StringVarP(&extractDir, "dir", "d", ".",
		"directory to write the files into")
	rootCmd.AddCommand(extractCmd)
}

// RunExtract streams each base64 body straight into a file as the message is
// read. The file is named for the part's filename, or for the part ID when it
// has none.
func RunExtract(cmd *cobra.Command, args []string) error {
	in, err := openMessage(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	return extract(cmd, in, extractDir, createFile)
}

// fileCreator creates the file an extracted part is written to.
type fileCreator func(path string) (io.WriteCloser, error)

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// extractFile remembers whether it has been closed.
type extractFile struct {
	io.WriteCloser
	closed bool
}

func (f *extractFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.WriteCloser.Close()
}

func extract(cmd *cobra.Command, in io.Reader, dir string, create fileCreator) error {
	w := cmd.OutOrStdout()

	var files []*extractFile
	open := func(ctx *codec.Context, part int, h *header.Header) (io.WriteCloser, error) {
		name := fmt.Sprintf("part-%d.bin", part)
		if fn, err := h.GetFilename(); err == nil && filepath.Base(fn) != "." {
			name = filepath.Base(fn)
		}

		path := filepath.Join(dir, name)
		ctx.Log().Debug().
			Int("part", part).
			Str("path", path).
			Msg("extracting part")

		if _, err := fmt.Fprintln(w, path); err != nil {
			return nil, err
		}

		f, err := create(path)
		if err != nil {
			return nil, err
		}

		ef := &extractFile{WriteCloser: f}
		files = append(files, ef)
		return ef, nil
	}

	_, err := message.Parse(logContext(cmd), in,
		message.WithDecoders(
			multipart.NewDecoderFactory(nil, multipart.WithUnlimitedDepth()),
			transfer.NewBase64StreamDecoderFactory(open),
		))
	if err != nil {
		// decoders are left open when the parse fails
		for _, f := range files {
			_ = f.Close()
		}
	}
	return err
}
