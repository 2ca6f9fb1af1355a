package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const sessionFormatVersionCurrent = 1

// Encode serializes the user id and timestamps of s. The session id is not
// part of the blob; backends key records by it.
//
// Layout (v1): version(1) | userLen(1) | userID | createdAt(8) | expiresAt(8).
// Timestamps are big-endian Unix nanoseconds; expiresAt 0 means no expiry.
func Encode(s Session) ([]byte, error) {
	if len(s.UserID) == 0 {
		return nil, errors.New("userID required")
	}
	if len(s.UserID) > 255 {
		return nil, errors.New("userID too long")
	}

	var buf bytes.Buffer
	buf.Grow(2 + len(s.UserID) + 16)

	buf.WriteByte(sessionFormatVersionCurrent)
	buf.WriteByte(byte(len(s.UserID)))
	buf.WriteString(s.UserID)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt.UnixNano()); err != nil {
		return nil, err
	}

	var expires int64
	if s.HasExpiry() {
		expires = s.ExpiresAt.UnixNano()
	}
	if err := binary.Write(&buf, binary.BigEndian, expires); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by Encode.
func Decode(data []byte) (Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return Session{}, err
	}
	if version != sessionFormatVersionCurrent {
		return Session{}, fmt.Errorf("unsupported session format version %d", version)
	}

	userLen, err := reader.ReadByte()
	if err != nil {
		return Session{}, err
	}
	if userLen == 0 {
		return Session{}, errors.New("empty userID")
	}
	userID := make([]byte, userLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return Session{}, err
	}

	var created, expires int64
	if err := binary.Read(reader, binary.BigEndian, &created); err != nil {
		return Session{}, err
	}
	if err := binary.Read(reader, binary.BigEndian, &expires); err != nil {
		return Session{}, err
	}
	if reader.Len() != 0 {
		return Session{}, errors.New("trailing session data")
	}

	s := Session{
		UserID:    string(userID),
		CreatedAt: time.Unix(0, created),
	}
	if expires != 0 {
		s.ExpiresAt = time.Unix(0, expires)
	}
	return s, nil
}
