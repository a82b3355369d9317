package quran

import "fmt"

const (
	AudioBaseURL       = "https://everyayah.com/data"
	DefaultReciter     = "mishary_rashid"
	defaultAudioFolder = "Alafasy_128kbps"
)

// AudioURL builds the verse recitation URL on the audio host, e.g.
// https://everyayah.com/data/Alafasy_128kbps/001001.mp3. Unknown reciters
// fall back to Alafasy.
func (c *Catalog) AudioURL(surahID, ayahNumber int, reciterID string) string {
	folder := defaultAudioFolder
	if r, ok := c.Reciter(reciterID); ok && r.AudioFolder != "" {
		folder = r.AudioFolder
	}
	return fmt.Sprintf("%s/%s/%03d%03d.mp3", c.audioBaseURL, folder, surahID, ayahNumber)
}
