package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/voxpal/blob"
	"github.com/arloliu/voxpal/palette"
)

func newInspectCmd(a *app) *cobra.Command {
	var noVerify bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the header and per-section palette statistics of a column blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			a.log.Debug("read column blob", "file", args[0], "bytes", len(data))

			return printColumn(cmd.OutOrStdout(), data, !noVerify)
		},
	}
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip payload checksum verification")

	return cmd
}

// printColumn writes the header and one line per section.
func printColumn(w io.Writer, data []byte, verify bool) error {
	dec, err := blob.NewColumnDecoder(data, blob.WithChecksumVerification(verify))
	if err != nil {
		return err
	}
	h := dec.Header()

	fmt.Fprintf(w, "size:         %d bytes\n", len(data))
	fmt.Fprintf(w, "compression:  %s\n", h.Flag.Compression())
	fmt.Fprintf(w, "byte order:   %s\n", byteOrderName(h.Flag.IsBigEndian()))
	fmt.Fprintf(w, "direct bits:  blocks=%d biomes=%d\n", h.BlockDirectBits, h.BiomeDirectBits)
	fmt.Fprintf(w, "sections:     %d [%d, %d]\n", h.SectionCount, h.MinSection, h.MaxSection())
	fmt.Fprintf(w, "payload:      %d bytes raw, %d stored\n", h.PayloadSize, len(data)-int(h.PayloadOffset))
	fmt.Fprintf(w, "checksum:     %016x\n", h.Checksum)

	col, err := dec.Decode()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%5s  %-30s  %s\n", "y", "blocks", "biomes")
	for y, s := range col.All() {
		fmt.Fprintf(w, "%5d  %-30s  %s\n", y, describe(s.Blocks), describe(s.Biomes))
	}

	return nil
}

func describe(p *palette.Palette) string {
	switch p.Mode() {
	case palette.ModeSingle:
		v, _ := p.SingleValue()
		return fmt.Sprintf("single id=%d", v)
	case palette.ModeIndirect:
		return fmt.Sprintf("indirect bits=%d table=%d count=%d", p.BitsPerEntry(), len(p.Table()), p.Count())
	default:
		return fmt.Sprintf("direct bits=%d count=%d", p.BitsPerEntry(), p.Count())
	}
}

func byteOrderName(big bool) string {
	if big {
		return "big-endian"
	}

	return "little-endian"
}
