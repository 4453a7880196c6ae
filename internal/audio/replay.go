package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "tranquil/internal/log"
)

// Replay feeds a WAV file through the same per-block path as live capture.
// The file's sample rate and channel count replace the device settings; the
// block size stays that of the analyzer. A trailing partial block is
// zero-padded. With realtime set, blocks are paced at the rate they would
// arrive from a device; otherwise the file is processed as fast as possible.
// Cancelling ctx stops the replay and returns nil.
func (c *CaptureLoop) Replay(ctx context.Context, path string, realtime bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("audio: open replay file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("audio: %s is not a valid WAV file", path)
	}

	channels := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || sampleRate <= 0 || bitDepth < 16 || bitDepth > 32 {
		return fmt.Errorf("audio: unsupported WAV format in %s: %d ch, %d Hz, %d bit",
			path, channels, sampleRate, bitDepth)
	}

	blockSize := c.cfg.BlockSize
	pcm := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   make([]int, blockSize*channels),
	}
	samples := make([]float32, blockSize*channels)
	scale := 1 / float32(int64(1)<<(bitDepth-1))

	var ticker *time.Ticker
	if realtime {
		period := time.Duration(blockSize) * time.Second / time.Duration(sampleRate)
		ticker = time.NewTicker(period)
		defer ticker.Stop()
	}

	applog.Infof("Replay: Feeding %s (%d Hz, %d ch, %d bit, realtime=%v)", path, sampleRate, channels, bitDepth, realtime)

	var blocks int
	for {
		if ctx.Err() != nil {
			applog.Infof("Replay: Cancelled after %d blocks", blocks)
			return nil
		}

		n, err := dec.PCMBuffer(pcm)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("audio: read %s: %w", path, err)
		}
		if n == 0 {
			break
		}

		for i := range samples {
			if i < n {
				samples[i] = float32(pcm.Data[i]) * scale
			} else {
				samples[i] = 0
			}
		}
		c.processBlock(samples, channels, sampleRate, time.Now(), c.replayAttr)
		blocks++

		if ticker != nil {
			select {
			case <-ctx.Done():
				applog.Infof("Replay: Cancelled after %d blocks", blocks)
				return nil
			case <-ticker.C:
			}
		}
		if n < len(pcm.Data) {
			break
		}
	}

	applog.Infof("Replay: Finished %s after %d blocks", path, blocks)
	return nil
}
