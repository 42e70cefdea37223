package ai

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// WAVOptions describe a raw PCM stream, parsed from the provider's MIME
// type (e.g. "audio/L16;codec=pcm;rate=24000").
type WAVOptions struct {
	NumChannels   int
	SampleRate    int
	BitsPerSample int
}

// ParseAudioMIME extracts PCM parameters from a MIME type. Defaults match
// what the speech model emits when a parameter is absent: mono, 16-bit,
// 24 kHz.
func ParseAudioMIME(mimeType string) WAVOptions {
	opts := WAVOptions{NumChannels: 1, SampleRate: 24000, BitsPerSample: 16}

	parts := strings.Split(mimeType, ";")
	if _, format, ok := strings.Cut(strings.TrimSpace(parts[0]), "/"); ok {
		if strings.HasPrefix(format, "L") {
			if bits, err := strconv.Atoi(format[1:]); err == nil {
				opts.BitsPerSample = bits
			}
		}
	}
	for _, param := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "rate" {
			if rate, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				opts.SampleRate = rate
			}
		}
	}
	return opts
}

// WAVHeader synthesizes the canonical 44-byte RIFF/WAVE header for a PCM
// payload of dataLen bytes. Layout: http://soundfile.sapp.org/doc/WaveFormat
func WAVHeader(dataLen int, o WAVOptions) []byte {
	byteRate := o.SampleRate * o.NumChannels * o.BitsPerSample / 8
	blockAlign := o.NumChannels * o.BitsPerSample / 8

	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen)) // ChunkSize
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // Subchunk1Size (PCM)
	binary.LittleEndian.PutUint16(h[20:22], 1)  // AudioFormat (1 = PCM)
	binary.LittleEndian.PutUint16(h[22:24], uint16(o.NumChannels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(o.SampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], uint16(o.BitsPerSample))
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen)) // Subchunk2Size
	return h
}

// ConvertToWAV wraps raw PCM bytes in a minimal WAV container.
func ConvertToWAV(pcm []byte, o WAVOptions) []byte {
	out := make([]byte, 0, 44+len(pcm))
	out = append(out, WAVHeader(len(pcm), o)...)
	return append(out, pcm...)
}
