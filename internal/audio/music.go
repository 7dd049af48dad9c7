package audio

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
)

// MusicPlayer loops an OGG Vorbis arena track, decoding on demand.
// If the file cannot be loaded the player stays silent.
type MusicPlayer struct {
	mu sync.Mutex

	streamer  beep.StreamSeekCloser
	resampled beep.Streamer

	volume  float64
	enabled bool
	loaded  bool

	filePath         string
	targetSampleRate int
	buf              [][2]float64
}

// NewMusicPlayer opens path for streaming. Load failures are logged.
func NewMusicPlayer(path string, volume float64, sampleRate int) *MusicPlayer {
	mp := &MusicPlayer{
		filePath:         path,
		volume:           volume,
		enabled:          true,
		targetSampleRate: sampleRate,
	}
	if err := mp.load(); err != nil {
		log.Printf("⚠️ Arena music disabled: %v", err)
	}
	return mp
}

func (mp *MusicPlayer) load() error {
	file, err := os.Open(mp.filePath)
	if err != nil {
		return err
	}

	streamer, format, err := vorbis.Decode(file)
	if err != nil {
		file.Close()
		return err
	}

	mp.streamer = streamer
	mp.loaded = true
	log.Printf("✅ Arena music loaded: %s (%d Hz)", mp.filePath, format.SampleRate)

	if int(format.SampleRate) != mp.targetSampleRate {
		mp.resampled = beep.Resample(4, format.SampleRate, beep.SampleRate(mp.targetSampleRate), mp.streamer)
	} else {
		mp.resampled = mp.streamer
	}
	return nil
}

// ReadSamples fills buffer with interleaved stereo int16 samples, looping at
// the end of the track. Silence when not loaded.
func (mp *MusicPlayer) ReadSamples(buffer []int16) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !mp.loaded || !mp.enabled || mp.resampled == nil {
		for i := range buffer {
			buffer[i] = 0
		}
		return len(buffer)
	}

	frames := len(buffer) / 2
	if cap(mp.buf) < frames {
		mp.buf = make([][2]float64, frames)
	}
	work := mp.buf[:frames]

	n, ok := mp.resampled.Stream(work)
	if !ok || n < frames {
		if err := mp.streamer.Seek(0); err != nil {
			log.Printf("⚠️ Music loop seek failed: %v", err)
		}
		if n < frames {
			mp.resampled.Stream(work[n:])
		}
	}

	for i := 0; i < frames; i++ {
		buffer[i*2] = floatToInt16(work[i][0] * mp.volume)
		buffer[i*2+1] = floatToInt16(work[i][1] * mp.volume)
	}
	return len(buffer)
}

// SetEnabled toggles playback without closing the stream.
func (mp *MusicPlayer) SetEnabled(e bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.enabled = e
}

// IsLoaded reports whether the track was decoded.
func (mp *MusicPlayer) IsLoaded() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.loaded
}

// Close releases the decoder.
func (mp *MusicPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.loaded = false
	if mp.streamer != nil {
		var c io.Closer = mp.streamer
		return c.Close()
	}
	return nil
}
