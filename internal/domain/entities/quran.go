// Package entities contains domain entities used across the application.
package entities

// Surah is one of the 114 chapters of the Quran.
type Surah struct {
	ID             int    `json:"id"`             // number of the surah (from 1 to 114)
	Name           string `json:"name"`           // Arabic name
	EnglishName    string `json:"englishName"`    // transliterated name
	Meaning        string `json:"meaning"`        // English meaning of the name
	AyahCount      int    `json:"ayahCount"`      // number of verses
	RevelationType string `json:"revelationType"` // "meccan" or "medinan"
	StartPage      int    `json:"startPage,omitempty"`
	EndPage        int    `json:"endPage,omitempty"`
	JuzNumbers     []int  `json:"juzNumbers,omitempty"`
}

// Ayah is a single verse addressed by surah id and verse number.
type Ayah struct {
	ID               int    `json:"id"` // global verse number (1..6236)
	SurahID          int    `json:"surahId"`
	SurahName        string `json:"surahName,omitempty"`
	SurahEnglishName string `json:"surahEnglishName,omitempty"`
	AyahNumber       int    `json:"ayahNumber"` // number within the surah
	TextArabic       string `json:"textArabic"`
	TextTranslation  string `json:"textTranslation"`
	JuzNumber        int    `json:"juzNumber"`
	PageNumber       int    `json:"pageNumber"`
	RukuNumber       int    `json:"rukuNumber"`
	ManzilNumber     int    `json:"manzilNumber"`
}

// Juz is one of the 30 reading divisions of the Quran.
type Juz struct {
	ID         int `json:"id"`
	StartSurah int `json:"startSurah"`
	StartAyah  int `json:"startAyah"`
	EndSurah   int `json:"endSurah"`
	EndAyah    int `json:"endAyah"`
}

// Reciter is a voice available for verse audio.
type Reciter struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	ArabicName  string `json:"arabicName" yaml:"arabic_name"`
	Style       string `json:"style" yaml:"style"`
	AudioFolder string `json:"-" yaml:"audio_folder"` // folder on the audio host
	IsPremium   bool   `json:"isPremium" yaml:"premium"`
}

// Translation is a translation edition of the Quran text.
type Translation struct {
	ID        string `json:"id" yaml:"id"` // content API edition identifier, e.g. "en.sahih"
	Name      string `json:"name" yaml:"name"`
	Language  string `json:"language" yaml:"language"`
	Author    string `json:"author" yaml:"author"`
	IsPremium bool   `json:"isPremium" yaml:"premium"`
}
