package protocol

import "encoding/binary"

// EncodeAck builds a one-byte ACK response body: OK or NOK.
func EncodeAck(code byte) []byte {
	return []byte{code}
}

// DecodeAck reads the return code out of an ACK response body.
func DecodeAck(body []byte) (byte, error) {
	if len(body) < 1 {
		return 0, ErrBodyTooShort
	}
	return body[0], nil
}

// EncodeCount builds an 8-byte big-endian CNT response body.
func EncodeCount(n uint64) []byte {
	body := make([]byte, 8)
	binary.BigEndian.PutUint64(body, n)
	return body
}

// DecodeCount reads a CNT response body.
func DecodeCount(body []byte) (uint64, error) {
	if len(body) < 8 {
		return 0, ErrBodyTooShort
	}
	return binary.BigEndian.Uint64(body), nil
}

// Tuple is one (ttl, key, value) result row, used by GET-prefix and
// KEYS responses.
type Tuple struct {
	TTL   int32
	Key   string
	Value []byte
}

// EncodeGetSingle builds a single-tuple GET response body: ttl(4) ·
// keylen(2) · key · value (the rest of the body — no length needed
// since the frame itself bounds it).
func EncodeGetSingle(ttl int32, key string, value []byte) []byte {
	return EncodePutBody(ttl, key, value)
}

// DecodeGetSingle is the inverse of EncodeGetSingle.
func DecodeGetSingle(body []byte) (Tuple, error) {
	put, err := ParsePut(body)
	if err != nil {
		return Tuple{}, err
	}
	return Tuple{TTL: put.TTL, Key: put.Key, Value: put.Value}, nil
}

// encodeFramedTuple encodes a tuple that is not the last thing in the
// body, so its value must be explicitly length-delimited:
// ttl(4) · keylen(2) · key · vallen(4) · value.
func encodeFramedTuple(t Tuple) []byte {
	buf := make([]byte, 6+len(t.Key)+4+len(t.Value))
	binary.BigEndian.PutUint32(buf[0:4], uint32(t.TTL))
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(t.Key)))
	copy(buf[6:], t.Key)
	off := 6 + len(t.Key)
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(t.Value)))
	copy(buf[off+4:], t.Value)
	return buf
}

func decodeFramedTuple(body []byte) (Tuple, int, error) {
	if len(body) < 6 {
		return Tuple{}, 0, ErrBodyTooShort
	}
	ttl := int32(binary.BigEndian.Uint32(body[0:4]))
	keylen := int(binary.BigEndian.Uint16(body[4:6]))
	off := 6
	if len(body) < off+keylen+4 {
		return Tuple{}, 0, ErrBodyTooShort
	}
	key := string(body[off : off+keylen])
	off += keylen
	vallen := int(binary.BigEndian.Uint32(body[off : off+4]))
	off += 4
	if len(body) < off+vallen {
		return Tuple{}, 0, ErrBodyTooShort
	}
	value := body[off : off+vallen]
	off += vallen
	return Tuple{TTL: ttl, Key: key, Value: value}, off, nil
}

// EncodeGetPrefix builds a prefix-scan GET response body: a 2-byte
// tuple count followed by that many framed tuples.
func EncodeGetPrefix(tuples []Tuple) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(len(tuples)))
	for _, t := range tuples {
		buf = append(buf, encodeFramedTuple(t)...)
	}
	return buf
}

// DecodeGetPrefix is the inverse of EncodeGetPrefix.
func DecodeGetPrefix(body []byte) ([]Tuple, error) {
	if len(body) < 2 {
		return nil, ErrBodyTooShort
	}
	count := int(binary.BigEndian.Uint16(body[0:2]))
	off := 2
	tuples := make([]Tuple, 0, count)
	for i := 0; i < count; i++ {
		t, n, err := decodeFramedTuple(body[off:])
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, t)
		off += n
	}
	return tuples, nil
}

// Peer is a cluster member address, as carried in a JOIN peer-list
// response.
type Peer struct {
	Host string
	Port string
}

// EncodeJoinPeers builds a JOIN response body: a 2-byte tuple count
// followed by length-delimited (host, port) pairs.
func EncodeJoinPeers(peers []Peer) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(len(peers)))
	for _, p := range peers {
		entry := make([]byte, 2+len(p.Host)+2+len(p.Port))
		binary.BigEndian.PutUint16(entry[0:2], uint16(len(p.Host)))
		copy(entry[2:], p.Host)
		off := 2 + len(p.Host)
		binary.BigEndian.PutUint16(entry[off:off+2], uint16(len(p.Port)))
		copy(entry[off+2:], p.Port)
		buf = append(buf, entry...)
	}
	return buf
}

// DecodeJoinPeers is the inverse of EncodeJoinPeers.
func DecodeJoinPeers(body []byte) ([]Peer, error) {
	if len(body) < 2 {
		return nil, ErrBodyTooShort
	}
	count := int(binary.BigEndian.Uint16(body[0:2]))
	off := 2
	peers := make([]Peer, 0, count)
	for i := 0; i < count; i++ {
		if len(body) < off+2 {
			return nil, ErrBodyTooShort
		}
		hostlen := int(binary.BigEndian.Uint16(body[off : off+2]))
		off += 2
		if len(body) < off+hostlen+2 {
			return nil, ErrBodyTooShort
		}
		host := string(body[off : off+hostlen])
		off += hostlen
		portlen := int(binary.BigEndian.Uint16(body[off : off+2]))
		off += 2
		if len(body) < off+portlen {
			return nil, ErrBodyTooShort
		}
		port := string(body[off : off+portlen])
		off += portlen
		peers = append(peers, Peer{Host: host, Port: port})
	}
	return peers, nil
}
