// Package wav provides parsing of RIFF/WAVE audio files.
//
// This parser supports:
//   - Uncompressed PCM at 8-bit, 16-bit, and 24-bit sample depths
//   - IEEE 754 32-bit float samples
//   - Mono and multi-channel files
//
// Compressed formats (ADPCM, mu-law, ...) are not supported; HRTF
// measurement sets are invariably plain PCM.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Errors.
var (
	ErrNotWAV            = errors.New("wav: not a WAVE file")
	ErrUnsupportedFormat = errors.New("wav: unsupported format")
	ErrInvalidFile       = errors.New("wav: invalid file structure")
	ErrMissingChunk      = errors.New("wav: missing required chunk")
)

// WAVE format tags.
const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

// File represents a parsed WAVE file.
type File struct {
	// Audio metadata
	NumChannels   int
	SampleRate    float64
	BitsPerSample int
	NumSamples    int

	// Decoded audio data as float32 in range [-1.0, 1.0]
	// Organized as [channel][sample]
	Data [][]float32
}

// Duration returns the audio duration in seconds.
func (f *File) Duration() float64 {
	if f.SampleRate <= 0 {
		return 0
	}

	return float64(f.NumSamples) / f.SampleRate
}

// Parse reads and parses a WAVE file from the given reader.
// Returns a File containing the decoded audio data.
func Parse(r io.Reader) (*File, error) {
	// Read RIFF chunk header
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	if string(riffHeader[0:4]) != "RIFF" {
		return nil, ErrNotWAV
	}

	if string(riffHeader[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	file := &File{}

	var (
		fmtFound, dataFound bool
		formatTag           int
		rawData             []byte
	)

	// Read chunks
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		// RIFF chunks are padded to even boundaries
		paddedSize := chunkSize
		if paddedSize%2 != 0 {
			paddedSize++
		}

		switch chunkID {
		case "fmt ":
			tag, err := file.parseFmt(r, chunkSize)
			if err != nil {
				return nil, err
			}

			formatTag = tag
			fmtFound = true

			if chunkSize%2 != 0 {
				_, _ = io.ReadFull(r, make([]byte, 1))
			}

		case "data":
			rawData = make([]byte, chunkSize)
			if _, err := io.ReadFull(r, rawData); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
			}

			dataFound = true

			if chunkSize%2 != 0 {
				_, _ = io.ReadFull(r, make([]byte, 1))
			}

		default:
			// Skip unknown chunks (LIST, fact, cue, ...)
			if _, err := io.CopyN(io.Discard, r, int64(paddedSize)); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}

				return nil, fmt.Errorf("%w: failed to skip chunk %s: %w", ErrInvalidFile, chunkID, err)
			}
		}
	}

	if !fmtFound {
		return nil, fmt.Errorf("%w: fmt chunk", ErrMissingChunk)
	}

	if !dataFound {
		return nil, fmt.Errorf("%w: data chunk", ErrMissingChunk)
	}

	err := file.decodeAudio(rawData, formatTag)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// parseFmt parses the fmt chunk and returns the format tag.
func (f *File) parseFmt(r io.Reader, size uint32) (int, error) {
	// Basic fmt chunk is 16 bytes; extensible variants append more.
	if size < 16 {
		return 0, fmt.Errorf("%w: fmt chunk too small", ErrInvalidFile)
	}

	var fmtChunk [16]byte
	if _, err := io.ReadFull(r, fmtChunk[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	formatTag := int(binary.LittleEndian.Uint16(fmtChunk[0:2]))
	f.NumChannels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
	f.SampleRate = float64(binary.LittleEndian.Uint32(fmtChunk[4:8]))
	f.BitsPerSample = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))

	// Skip the extension; extensible files carry the real format tag in
	// the SubFormat GUID, of which only the leading uint16 matters here.
	if size > 16 {
		ext := make([]byte, size-16)
		if _, err := io.ReadFull(r, ext); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}

		if formatTag == formatExtensible && len(ext) >= 10 {
			formatTag = int(binary.LittleEndian.Uint16(ext[8:10]))
		}
	}

	if formatTag != formatPCM && formatTag != formatIEEEFloat {
		return 0, fmt.Errorf("%w: format tag %d not supported", ErrUnsupportedFormat, formatTag)
	}

	if f.NumChannels < 1 || f.NumChannels > 8 {
		return 0, fmt.Errorf("%w: unsupported channel count %d", ErrUnsupportedFormat, f.NumChannels)
	}

	if f.SampleRate <= 0 || f.SampleRate > 384000 {
		return 0, fmt.Errorf("%w: invalid sample rate %v", ErrUnsupportedFormat, f.SampleRate)
	}

	switch {
	case formatTag == formatPCM && (f.BitsPerSample == 8 || f.BitsPerSample == 16 || f.BitsPerSample == 24):
	case formatTag == formatIEEEFloat && f.BitsPerSample == 32:
	default:
		return 0, fmt.Errorf("%w: %d-bit samples with format tag %d not supported",
			ErrUnsupportedFormat, f.BitsPerSample, formatTag)
	}

	return formatTag, nil
}

// decodeAudio converts raw sample bytes to float32 audio data.
func (f *File) decodeAudio(data []byte, formatTag int) error {
	bytesPerSample := f.BitsPerSample / 8
	frameSize := bytesPerSample * f.NumChannels
	if frameSize == 0 {
		return fmt.Errorf("%w: zero frame size", ErrInvalidFile)
	}

	f.NumSamples = len(data) / frameSize

	f.Data = make([][]float32, f.NumChannels)
	for ch := range f.Data {
		f.Data[ch] = make([]float32, f.NumSamples)
	}

	offset := 0

	for frame := range f.NumSamples {
		for ch := range f.NumChannels {
			var sample float32

			switch {
			case formatTag == formatIEEEFloat:
				bits := binary.LittleEndian.Uint32(data[offset : offset+4])
				sample = math.Float32frombits(bits)
				offset += 4

			case f.BitsPerSample == 8:
				// 8-bit WAVE is unsigned
				sample = (float32(data[offset]) - 128.0) / 128.0
				offset++

			case f.BitsPerSample == 16:
				s := int16(binary.LittleEndian.Uint16(data[offset : offset+2]))
				sample = float32(s) / 32768.0
				offset += 2

			case f.BitsPerSample == 24:
				b0, b1, b2 := data[offset], data[offset+1], data[offset+2]
				// Sign-extend from 24 to 32 bits; WAVE 24-bit is little-endian
				var s int32
				if b2&0x80 != 0 {
					s = -1<<24 | int32(b2)<<16 | int32(b1)<<8 | int32(b0)
				} else {
					s = int32(b2)<<16 | int32(b1)<<8 | int32(b0)
				}

				sample = float32(s) / 8388608.0
				offset += 3
			}

			f.Data[ch][frame] = sample
		}
	}

	return nil
}
