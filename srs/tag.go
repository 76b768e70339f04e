package srs

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"hash"
	"time"
)

const (
	hashLength = 4

	ttAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ttBits     = 5
	ttMask     = 1<<ttBits - 1
	ttSlots    = 1 << (2 * ttBits)
	msPerDay   = 24 * 60 * 60 * 1000
)

// daySlot returns the number of whole days since the epoch, modulo 1024.
func daySlot(now time.Time) int {
	ms := now.UnixMilli()
	days := ms / msPerDay
	if ms < 0 && ms%msPerDay != 0 {
		days--
	}
	slot := int(days % ttSlots)
	if slot < 0 {
		slot += ttSlots
	}
	return slot
}

// CreateTT encodes the day of now as the two-character TT timestamp.
func CreateTT(now time.Time) string {
	slot := daySlot(now)
	return string([]byte{ttAlphabet[slot>>ttBits], ttAlphabet[slot&ttMask]})
}

func decodeTTChar(c byte) (int, bool) {
	if 'a' <= c && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 0; i < 1<<ttBits; i++ {
		if ttAlphabet[i] == c {
			return i, true
		}
	}
	return 0, false
}

// DecodeTT returns the day slot a TT timestamp was issued in.
func DecodeTT(tt string) (int, error) {
	if len(tt) != 2 {
		return 0, ErrTimestampInvalid
	}
	hi, ok := decodeTTChar(tt[0])
	if !ok {
		return 0, ErrTimestampInvalid
	}
	lo, ok := decodeTTChar(tt[1])
	if !ok {
		return 0, ErrTimestampInvalid
	}
	return hi<<ttBits | lo, nil
}

// TTAge returns how many days before now tt was issued. Slots wrap every
// 1024 days, so a timestamp from the future reads as very old.
func TTAge(tt string, now time.Time) (int, error) {
	then, err := DecodeTT(tt)
	if err != nil {
		return 0, err
	}
	return (daySlot(now) - then + ttSlots) % ttSlots, nil
}

func createHHH(h func() hash.Hash, secret []byte, parts ...string) string {
	mac := hmac.New(h, secret)
	for _, part := range parts {
		mac.Write([]byte(part))
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))[:hashLength]
}

// CreateHHH computes the four-character HMAC-SHA1 tag of parts, fed to the
// MAC one after another in the given order.
func CreateHHH(secret string, parts ...string) string {
	return createHHH(sha1.New, []byte(secret), parts...)
}
