package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Data is a decoded tile layer <data> element. Finite layers fill GIDs;
// infinite layers fill Chunks instead.
type Data struct {
	Encoding    string
	Compression string
	GIDs        []GID
	Chunks      []*Chunk
}

// Chunk is one <chunk> of an infinite layer. X and Y are tile coordinates
// of the chunk's top-left cell.
type Chunk struct {
	X, Y          int
	Width, Height int
	GIDs          []GID
}

type rawData struct {
	text  strings.Builder
	tiles []GID
}

func (d *Data) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	ar := newAttrReader(start)
	d.Encoding = ar.str("encoding", "")
	d.Compression = ar.str("compression", "")

	var raw rawData
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tile":
				tr := newAttrReader(t)
				raw.tiles = append(raw.tiles, GID(tr.uint32("gid", 0)))
				if tr.err != nil {
					return tr.err
				}
				if err := dec.Skip(); err != nil {
					return err
				}
			case "chunk":
				c, err := d.decodeChunk(dec, t)
				if err != nil {
					return err
				}
				d.Chunks = append(d.Chunks, c)
			default:
				if err := dec.Skip(); err != nil {
					return err
				}
			}
		case xml.CharData:
			raw.text.Write(t)
		case xml.EndElement:
			if len(d.Chunks) > 0 {
				return nil
			}
			gids, err := decodeGIDs(d.Encoding, d.Compression, raw.text.String(), raw.tiles)
			if err != nil {
				return err
			}
			d.GIDs = gids
			return nil
		}
	}
}

func (d *Data) decodeChunk(dec *xml.Decoder, start xml.StartElement) (*Chunk, error) {
	ar := newAttrReader(start)
	c := &Chunk{
		X:      ar.int("x", 0),
		Y:      ar.int("y", 0),
		Width:  ar.int("width", DefaultChunkDim),
		Height: ar.int("height", DefaultChunkDim),
	}
	if ar.err != nil {
		return nil, ar.err
	}
	var raw rawData
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tile" {
				tr := newAttrReader(t)
				raw.tiles = append(raw.tiles, GID(tr.uint32("gid", 0)))
				if tr.err != nil {
					return nil, tr.err
				}
			}
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.CharData:
			raw.text.Write(t)
		case xml.EndElement:
			gids, err := decodeGIDs(d.Encoding, d.Compression, raw.text.String(), raw.tiles)
			if err != nil {
				return nil, err
			}
			if len(gids) != c.Width*c.Height {
				return nil, fmt.Errorf("%w: chunk (%d,%d) has %d tiles, want %d", ErrInvalidDataLen, c.X, c.Y, len(gids), c.Width*c.Height)
			}
			c.GIDs = gids
			return c, nil
		}
	}
}

func decodeGIDs(encoding, compression, text string, xmlTiles []GID) ([]GID, error) {
	switch encoding {
	case "":
		return xmlTiles, nil
	case "csv":
		return decodeCSV(text)
	case "base64":
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("tmx: base64 data: %w", err)
		}
		raw, err = decompress(compression, raw)
		if err != nil {
			return nil, err
		}
		if len(raw)%4 != 0 {
			return nil, fmt.Errorf("%w: %d bytes", ErrInvalidDataLen, len(raw))
		}
		gids := make([]GID, len(raw)/4)
		for i := range gids {
			gids[i] = GID(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return gids, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
}

func decodeCSV(text string) ([]GID, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	gids := make([]GID, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("tmx: csv data: %w", err)
		}
		gids = append(gids, GID(n))
	}
	return gids, nil
}

func decompress(compression string, raw []byte) ([]byte, error) {
	var r io.Reader
	switch compression {
	case "":
		return raw, nil
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("tmx: gzip data: %w", err)
		}
		defer zr.Close()
		r = zr
	case "zlib":
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("tmx: zlib data: %w", err)
		}
		defer zr.Close()
		r = zr
	case "zstd":
		zr, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("tmx: zstd data: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, compression)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tmx: %s data: %w", compression, err)
	}
	return out, nil
}
