package worldfile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/duskvault/terrasrv/internal/binutil"
	"github.com/duskvault/terrasrv/internal/world"
)

// Read reads an internal-format world file from r.
func Read(r io.Reader) (*world.World, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != MagicNumber {
		return nil, fmt.Errorf("invalid magic number: got 0x%08X, want 0x%08X", magic, MagicNumber)
	}

	var version int16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("unsupported internal format version: %d (max supported %d)", version, CurrentVersion)
	}

	var compression uint8
	if err := binary.Read(r, binary.BigEndian, &compression); err != nil {
		return nil, fmt.Errorf("read compression byte: %w", err)
	}

	headerReader := binutil.NewReader(r)
	dataLen, err := headerReader.VarUint()
	if err != nil {
		return nil, fmt.Errorf("read data length: %w", err)
	}
	_ = dataLen // informational only; DecodeWorld reads exactly the fields EncodeWorld wrote

	var dataReader io.Reader = r
	if compression == CompressionDeflate {
		fr := flate.NewReader(r)
		defer fr.Close()
		dataReader = fr
	}

	return DecodeWorld(binutil.NewReader(dataReader))
}

// Write writes w to dst in the internal format, deflate-compressed.
func Write(dst io.Writer, w *world.World) error {
	buf := binutil.NewWriter()
	EncodeWorld(buf, w)
	data := buf.Bytes()

	compressed := binutil.NewWriter()
	fw, err := flate.NewWriter(compressed, flate.DefaultCompression)
	if err != nil {
		return fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("deflate world data: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close deflate stream: %w", err)
	}

	if err := binary.Write(dst, binary.BigEndian, MagicNumber); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(dst, binary.BigEndian, CurrentVersion); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if err := binary.Write(dst, binary.BigEndian, CompressionDeflate); err != nil {
		return fmt.Errorf("write compression byte: %w", err)
	}

	lenHeader := binutil.NewWriter()
	lenHeader.VarUint(uint64(len(data)))
	if _, err := dst.Write(lenHeader.Bytes()); err != nil {
		return fmt.Errorf("write data length: %w", err)
	}

	if _, err := dst.Write(compressed.Bytes()); err != nil {
		return fmt.Errorf("write compressed data: %w", err)
	}
	return nil
}
