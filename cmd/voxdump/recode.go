package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/voxpal/blob"
	"github.com/arloliu/voxpal/format"
)

func newRecodeCmd(a *app) *cobra.Command {
	var (
		compression string
		bigEndian   bool
	)

	cmd := &cobra.Command{
		Use:   "recode <in> <out>",
		Short: "Re-encode a column blob with another compression or byte order",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			comp, ok := format.ParseCompression(compression)
			if !ok {
				return fmt.Errorf("unknown compression %q", compression)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			dec, err := blob.NewColumnDecoder(data)
			if err != nil {
				return err
			}
			col, err := dec.Decode()
			if err != nil {
				return err
			}

			h := dec.Header()
			opts := []blob.ColumnEncoderOption{
				blob.WithCompression(comp),
				blob.WithBlockDirectBits(int(h.BlockDirectBits)),
				blob.WithBiomeDirectBits(int(h.BiomeDirectBits)),
				blob.WithLittleEndian(),
			}
			if bigEndian {
				opts = append(opts, blob.WithBigEndian())
			}
			out, err := col.Encode(opts...)
			if err != nil {
				return err
			}
			a.log.Debug("recoded column", "from", h.Flag.Compression(), "to", comp,
				"in_bytes", len(data), "out_bytes", len(out))

			return os.WriteFile(args[1], out, 0o644) //nolint: gosec
		},
	}
	cmd.Flags().StringVar(&compression, "compression", format.CompressionZstd.String(),
		"payload compression: None, Zstd, S2, LZ4 or Snappy")
	cmd.Flags().BoolVar(&bigEndian, "big-endian", false, "write big-endian words")

	return cmd
}
