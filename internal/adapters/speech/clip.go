package speech

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Clip is one recorded audio segment.
type Clip struct {
	Name     string
	MIMEType string
	Data     []byte
}

var audioTypes = map[string]string{ //nolint:gochecknoglobals // extension table
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".m4a":  "audio/aac",
	".webm": "audio/webm",
	".aiff": "audio/aiff",
}

// LoadClip reads an audio file from disk.
func LoadClip(path string) (Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Clip{}, fmt.Errorf("read audio clip: %w", err)
	}
	if len(data) == 0 {
		return Clip{}, ErrEmptyClip
	}
	mt, ok := audioTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mt = http.DetectContentType(data)
	}
	return Clip{Name: filepath.Base(path), MIMEType: mt, Data: data}, nil
}
