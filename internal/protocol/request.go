package protocol

import "encoding/binary"

// PutRequest is the decoded body of a PUT (and, structurally, JOIN)
// frame: ttl(4, signed BE) · keylen(2, BE) · key · value (rest of body).
type PutRequest struct {
	TTL   int32
	Key   string
	Value []byte
}

// ParsePut decodes a PUT body.
func ParsePut(body []byte) (PutRequest, error) {
	if len(body) < 6 {
		return PutRequest{}, ErrBodyTooShort
	}
	ttl := int32(binary.BigEndian.Uint32(body[0:4]))
	keylen := int(binary.BigEndian.Uint16(body[4:6]))
	if len(body) < 6+keylen {
		return PutRequest{}, ErrBodyTooShort
	}
	key := string(body[6 : 6+keylen])
	value := body[6+keylen:]
	return PutRequest{TTL: ttl, Key: key, Value: value}, nil
}

// ParseKey decodes a body that is entirely a key: GET, DEL, INC, DEC,
// CNT, USE, KEYS.
func ParseKey(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrBodyTooShort
	}
	return string(body), nil
}

// TTLRequest is the decoded body of a TTL frame: ttl(4, signed BE) · key
// (rest of body).
type TTLRequest struct {
	TTL int32
	Key string
}

// ParseTTL decodes a TTL body.
func ParseTTL(body []byte) (TTLRequest, error) {
	if len(body) < 5 {
		return TTLRequest{}, ErrBodyTooShort
	}
	ttl := int32(binary.BigEndian.Uint32(body[0:4]))
	return TTLRequest{TTL: ttl, Key: string(body[4:])}, nil
}

// JoinRequest is the decoded body of a JOIN frame: host and port,
// carried in the same key/value frame shape as PUT with ttl=0 — the key
// slot holds the sender's host, the value slot its port.
type JoinRequest struct {
	Host string
	Port string
}

// ParseJoin decodes a JOIN body.
func ParseJoin(body []byte) (JoinRequest, error) {
	put, err := ParsePut(body)
	if err != nil {
		return JoinRequest{}, err
	}
	return JoinRequest{Host: put.Key, Port: string(put.Value)}, nil
}

// EncodePutBody is the inverse of ParsePut, used both to build outgoing
// PUT requests and JOIN announcements (ttl=0, key=host, value=port).
func EncodePutBody(ttl int32, key string, value []byte) []byte {
	body := make([]byte, 6+len(key)+len(value))
	binary.BigEndian.PutUint32(body[0:4], uint32(ttl))
	binary.BigEndian.PutUint16(body[4:6], uint16(len(key)))
	copy(body[6:], key)
	copy(body[6+len(key):], value)
	return body
}

// EncodeTTLBody is the inverse of ParseTTL.
func EncodeTTLBody(ttl int32, key string) []byte {
	body := make([]byte, 4+len(key))
	binary.BigEndian.PutUint32(body[0:4], uint32(ttl))
	copy(body[4:], key)
	return body
}
