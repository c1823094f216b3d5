package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ArchiveFile is one entry of a generated archive.
type ArchiveFile struct {
	Name    string
	Content string
}

// BuildZip returns a zip archive holding files in order. Names ending with
// "/" become directory entries.
func BuildZip(files ...ArchiveFile) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.Create(f.Name)
		if err != nil {
			panic(err)
		}
		if _, err := fw.Write([]byte(f.Content)); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// BuildRar returns a RAR 1.5 archive holding files in order, stored without
// compression. Names ending with "/" become directory entries.
func BuildRar(files ...ArchiveFile) []byte {
	buf := bytes.NewBufferString("Rar!\x1a\x07\x00")
	buf.Write(rarBlock(0x73, 0, make([]byte, 6)))

	for _, f := range files {
		name := strings.TrimSuffix(f.Name, "/")
		isDir := name != f.Name
		data := []byte(f.Content)
		flags := uint16(0x8000) // block carries data
		attributes := uint32(0x20)
		if isDir {
			data = nil
			flags |= 0x00e0
			attributes = 0x10
		}

		var body bytes.Buffer
		_ = binary.Write(&body, binary.LittleEndian, struct {
			PackedSize   uint32
			UnpackedSize uint32
			HostOS       uint8
			FileCRC      uint32
			DosTime      uint32
			Version      uint8
			Method       uint8
			NameSize     uint16
			Attributes   uint32
		}{
			PackedSize:   uint32(len(data)),
			UnpackedSize: uint32(len(data)),
			HostOS:       2,
			FileCRC:      crc32.ChecksumIEEE(data),
			DosTime:      0x5a210000,
			Version:      20,
			Method:       0x30, // store
			NameSize:     uint16(len(name)),
			Attributes:   attributes,
		})
		body.WriteString(name)

		buf.Write(rarBlock(0x74, flags, body.Bytes()))
		buf.Write(data)
	}

	buf.Write(rarBlock(0x7b, 0x4000, nil))
	return buf.Bytes()
}

// rarBlock frames body with a RAR 1.5 block header. The header CRC is the low
// half of the CRC-32 of everything after it.
func rarBlock(blockType uint8, flags uint16, body []byte) []byte {
	header := make([]byte, 7, 7+len(body))
	header[2] = blockType
	binary.LittleEndian.PutUint16(header[3:], flags)
	binary.LittleEndian.PutUint16(header[5:], uint16(7+len(body)))
	header = append(header, body...)
	binary.LittleEndian.PutUint16(header[0:], uint16(crc32.ChecksumIEEE(header[2:])))
	return header
}

// Gzip compresses content the way hash-lookup sources deliver subtitles.
func Gzip(content string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, _ = w.Write([]byte(content))
	_ = w.Close()
	return buf.Bytes()
}

// SampleSRT is a minimal valid SubRip document.
const SampleSRT = "1\r\n00:00:01,000 --> 00:00:03,000\r\nHello.\r\n\r\n"
