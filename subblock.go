package gif

// GIF wraps arbitrary byte streams in length-prefixed sub-blocks of 1-255
// payload bytes, terminated by a single zero-length block. Every payload the
// LZW codec produces or consumes passes through this framer (spec.md §4.2).

const maxSubBlockSize = 255

// writeSubBlocks splits data into <=255-byte chunks, each preceded by its
// length byte, appending a single terminating 0x00.
func writeSubBlocks(buf *byteBuffer, data []byte) {
	for len(data) > 0 {
		n := len(data)
		if n > maxSubBlockSize {
			n = maxSubBlockSize
		}
		buf.WriteByte(byte(n))
		buf.WriteBytes(data[:n])
		data = data[n:]
	}
	buf.WriteByte(0)
}

// subBlockReader reads GIF sub-blocks directly off a byteReader, exposing
// the concatenated payload as a single decompression input.
type subBlockReader struct {
	r *byteReader
}

func newSubBlockReader(r *byteReader) *subBlockReader {
	return &subBlockReader{r: r}
}

// readAll reads sub-blocks until the terminating zero-length block and
// returns their concatenated payload.
func (s *subBlockReader) readAll() ([]byte, error) {
	var out []byte
	for {
		n, err := s.r.ReadByte()
		if err != nil {
			return nil, wrapEncodingError("sub-block length", err)
		}
		if n == 0 {
			return out, nil
		}
		chunk, err := s.r.ReadN(int(n))
		if err != nil {
			return nil, wrapEncodingError("sub-block payload", err)
		}
		out = append(out, chunk...)
	}
}

// skip discards sub-block payloads without copying them.
func (s *subBlockReader) skip() error {
	for {
		n, err := s.r.ReadByte()
		if err != nil {
			return wrapEncodingError("sub-block length", err)
		}
		if n == 0 {
			return nil
		}
		if err := s.r.Discard(int(n)); err != nil {
			return wrapEncodingError("sub-block payload", err)
		}
	}
}
