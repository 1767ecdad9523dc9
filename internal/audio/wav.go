// Package audio wraps raw speech-provider output in a playable container.
// Both supported providers emit headerless little-endian 16-bit PCM at
// 24 kHz mono, so the envelope parameters are fixed.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	SampleRate    = 24000
	BitsPerSample = 16
	NumChannels   = 1

	headerSize = 44
	frameSize  = NumChannels * BitsPerSample / 8
)

// ErrInvalidAudioPayload means the provider payload cannot be framed as
// whole 16-bit samples. Under the upstream contract this should not occur.
var ErrInvalidAudioPayload = errors.New("invalid audio payload")

// WrapPCM prefixes pcm with a RIFF/WAVE header whose declared lengths match
// the payload exactly. The result plays in a standard audio element with no
// further transformation.
func WrapPCM(pcm []byte) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidAudioPayload)
	}
	if len(pcm)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte frames", ErrInvalidAudioPayload, len(pcm), frameSize)
	}

	byteRate := SampleRate * NumChannels * BitsPerSample / 8
	blockAlign := NumChannels * BitsPerSample / 8

	buf := make([]byte, 0, headerSize+len(pcm))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16) // PCM fmt chunk size
	buf = binary.LittleEndian.AppendUint16(buf, 1)  // audio format: PCM
	buf = binary.LittleEndian.AppendUint16(buf, NumChannels)
	buf = binary.LittleEndian.AppendUint32(buf, SampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, BitsPerSample)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)

	return buf, nil
}

// WrapBase64 decodes a base64 PCM payload, as delivered inside the provider
// response, and wraps it.
func WrapBase64(encoded string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrInvalidAudioPayload, err)
	}
	return WrapPCM(pcm)
}
