package palette

import (
	"fmt"
	"slices"

	"github.com/arloliu/voxpal/bitpack"
	"github.com/arloliu/voxpal/encoding"
	"github.com/arloliu/voxpal/endian"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/internal/options"
)

// Codec reads and writes palettes in the wire format shared by the network
// protocol and persisted sections:
//
//	byte   bitsPerEntry
//	if bitsPerEntry == 0:
//	    varint value
//	else:
//	    if bitsPerEntry <= maxBits:
//	        varint tableLength
//	        varint[tableLength] table
//	    uint64[ArrayLength(dimension, bitsPerEntry)] words
//
// Writer and reader agree on (dimension, minBits, maxBits, directBits) out of
// band. A Codec is immutable and safe for concurrent use.
type Codec struct {
	dimension  int
	minBits    int
	maxBits    int
	directBits int
	engine     endian.EndianEngine
}

// CodecOption configures a Codec.
type CodecOption = options.Option[*Codec]

// WithByteOrder sets the byte order of the words. The default is big-endian,
// the network order.
func WithByteOrder(engine endian.EndianEngine) CodecOption {
	return options.New(func(c *Codec) error {
		if engine == nil {
			return fmt.Errorf("%w: nil byte order", errs.ErrCodecMismatch)
		}
		c.engine = engine

		return nil
	})
}

// NewCodec creates a codec for palettes of the given configuration.
//
// Parameters:
//   - dimension, minBits, maxBits, directBits: Palette configuration, see New
//   - opts: Codec options
//
// Returns:
//   - *Codec: The codec
//   - error: Configuration error
func NewCodec(dimension, minBits, maxBits, directBits int, opts ...CodecOption) (*Codec, error) {
	if err := validateConfig(dimension, minBits, maxBits, directBits); err != nil {
		return nil, err
	}
	c := &Codec{
		dimension:  dimension,
		minBits:    minBits,
		maxBits:    maxBits,
		directBits: directBits,
		engine:     endian.GetNetworkEngine(),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// BlockCodec returns the codec for 16³ block-state palettes.
func BlockCodec(opts ...CodecOption) *Codec {
	c, err := NewCodec(BlockDimension, BlockMinBits, BlockMaxBits, BlockDirectBits, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// BiomeCodec returns the codec for 4³ biome palettes whose direct width is
// directBits. The width follows the biome registry, so callers create a new
// codec from BiomeDirectBits whenever the registry size changes.
func BiomeCodec(directBits int, opts ...CodecOption) (*Codec, error) {
	return NewCodec(BiomeDimension, BiomeMinBits, BiomeMaxBits, directBits, opts...)
}

// Dimension returns the cube edge length.
func (c *Codec) Dimension() int { return c.dimension }

// DirectBits returns the negotiated direct width.
func (c *Codec) DirectBits() int { return c.directBits }

// ByteOrder returns the byte order used by Encode and Decode.
func (c *Codec) ByteOrder() endian.EndianEngine { return c.engine }

// New returns an empty palette matching the codec configuration.
func (c *Codec) New() *Palette {
	return &Palette{
		dimension:  c.dimension,
		dimBits:    bitpack.DimensionBits(c.dimension),
		minBits:    c.minBits,
		maxBits:    c.maxBits,
		directBits: c.directBits,
	}
}

// Encode returns the encoded form of p.
func (c *Codec) Encode(p *Palette) ([]byte, error) {
	enc := encoding.NewSectionEncoder(c.engine)
	defer enc.Finish()

	if err := c.Write(enc, p); err != nil {
		return nil, err
	}

	return slices.Clone(enc.Bytes()), nil
}

// Write appends the encoded form of p to enc, using enc's byte order.
//
// A direct palette whose DirectBits differs from the codec's is re-encoded at
// the codec width; p itself is never modified. Nothing is written on error.
//
// Returns:
//   - error: errs.ErrCodecMismatch if p's dimension or indirect bounds differ
//     from the codec's, errs.ErrValueOutOfRange if p holds an id wider than the
//     codec's direct width
func (c *Codec) Write(enc *encoding.SectionEncoder, p *Palette) error {
	if p.dimension != c.dimension || p.minBits != c.minBits || p.maxBits != c.maxBits {
		return fmt.Errorf("%w: palette %d³ [%d, %d], codec %d³ [%d, %d]", errs.ErrCodecMismatch,
			p.dimension, p.minBits, p.maxBits, c.dimension, c.minBits, c.maxBits)
	}
	maxValue := 1<<c.directBits - 1

	switch p.Mode() {
	case ModeSingle:
		if p.count > maxValue {
			return c.outOfRange(p.count)
		}
		_ = enc.WriteByte(0)
		enc.WriteVarInt(int32(p.count)) //nolint:gosec

	case ModeIndirect:
		if hi := slices.Max(p.table); hi > maxValue {
			return c.outOfRange(hi)
		}
		_ = enc.WriteByte(byte(p.bitsPerEntry))
		enc.WriteVarInt(int32(len(p.table))) //nolint:gosec
		for _, v := range p.table {
			enc.WriteVarInt(int32(v)) //nolint:gosec
		}
		enc.WriteWords(p.words)

	case ModeDirect:
		words := p.words
		if p.directBits != c.directBits {
			if p.directBits > c.directBits {
				if hi := bitpack.MaxField(p.dimension, p.bitsPerEntry, words); hi > maxValue {
					return c.outOfRange(hi)
				}
			}
			words = bitpack.Remap(p.dimension, p.bitsPerEntry, c.directBits, words, identity)
		}
		_ = enc.WriteByte(byte(c.directBits))
		enc.WriteWords(words)
	}

	return nil
}

func (c *Codec) outOfRange(v int) error {
	return fmt.Errorf("%w: id %d does not fit the negotiated %d direct bits", errs.ErrValueOutOfRange, v, c.directBits)
}

// Decode decodes a palette from the start of data.
//
// Returns:
//   - *Palette: The decoded palette
//   - int: Number of bytes consumed
//   - error: Decoding error, see Read
func (c *Codec) Decode(data []byte) (*Palette, int, error) {
	dec := encoding.NewSectionDecoder(data, c.engine)
	p, err := c.Read(dec)
	if err != nil {
		return nil, 0, err
	}

	return p, dec.Offset(), nil
}

// Read decodes the next palette from dec.
//
// The declared width is authoritative: widths up to maxBits are read as
// indirect (narrower than minBits is widened), wider ones as direct ids and
// re-encoded at the codec's direct width. Truncated input, a width above the
// codec's direct width, an empty or oversized table, negative or too wide ids
// and indices outside the table are rejected; no partial palette is returned.
func (c *Codec) Read(dec *encoding.SectionDecoder) (*Palette, error) {
	b, err := dec.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read bits per entry: %w", err)
	}
	bpe := int(b)
	p := c.New()

	if bpe == 0 {
		v, err := dec.ReadVarInt()
		if err != nil {
			return nil, fmt.Errorf("read single value: %w", err)
		}
		if err := p.checkRange(int(v), int(v)); err != nil {
			return nil, fmt.Errorf("single value: %w", err)
		}
		p.setSingle(int(v))

		return p, nil
	}
	if bpe > c.directBits {
		return nil, fmt.Errorf("%w: %d exceeds direct width %d", errs.ErrInvalidBitsPerEntry, bpe, c.directBits)
	}

	if bpe > c.maxBits {
		words := make([]uint64, bitpack.ArrayLength(c.dimension, bpe))
		if err := dec.ReadWords(words); err != nil {
			return nil, fmt.Errorf("read direct words: %w", err)
		}
		p.adoptDirect(bpe, words)

		return p, nil
	}

	table, err := c.readTable(dec, bpe)
	if err != nil {
		return nil, err
	}
	if err := checkTable(table, p.directBits); err != nil {
		return nil, err
	}
	words := make([]uint64, bitpack.ArrayLength(c.dimension, bpe))
	if err := dec.ReadWords(words); err != nil {
		return nil, fmt.Errorf("read indirect words: %w", err)
	}
	if err := p.adoptIndirect(bpe, table, words); err != nil {
		return nil, err
	}

	return p, nil
}

func (c *Codec) readTable(dec *encoding.SectionDecoder, bpe int) ([]int, error) {
	n, err := dec.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("read table length: %w", err)
	}
	if n <= 0 || int(n) > bitpack.MaxTableSize(bpe) {
		return nil, fmt.Errorf("%w: %d entries at %d bits", errs.ErrInvalidTable, n, bpe)
	}
	if int(n) > dec.Remaining() {
		return nil, fmt.Errorf("%w: table of %d entries, %d bytes remaining", errs.ErrTruncatedData, n, dec.Remaining())
	}

	table := make([]int, n)
	for i := range table {
		v, err := dec.ReadVarInt()
		if err != nil {
			return nil, fmt.Errorf("read table entry %d: %w", i, err)
		}
		table[i] = int(v)
	}

	return table, nil
}
