package quran

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

var (
	ErrReciterNotFound     = errors.New("reciter not found")
	ErrTranslationNotFound = errors.New("translation not found")
)

// Catalog lists the reciters and translation editions users can choose from.
type Catalog struct {
	reciters     []entities.Reciter
	translations []entities.Translation
	audioBaseURL string
}

type catalogFile struct {
	AudioBaseURL string                 `yaml:"audio_base_url"`
	Reciters     []entities.Reciter     `yaml:"reciters"`
	Translations []entities.Translation `yaml:"translations"`
}

// NewCatalog returns the built-in catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		reciters:     defaultReciters,
		translations: defaultTranslations,
		audioBaseURL: AudioBaseURL,
	}
}

// LoadCatalog reads a catalog from a YAML file. Sections missing from the
// file keep their built-in values.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := NewCatalog()
	if len(file.Reciters) > 0 {
		c.reciters = file.Reciters
	}
	if len(file.Translations) > 0 {
		c.translations = file.Translations
	}
	if file.AudioBaseURL != "" {
		c.audioBaseURL = file.AudioBaseURL
	}

	for _, r := range c.reciters {
		if r.ID == "" {
			return nil, fmt.Errorf("decode catalog: reciter without id")
		}
	}
	for _, t := range c.translations {
		if t.ID == "" {
			return nil, fmt.Errorf("decode catalog: translation without id")
		}
	}

	return c, nil
}

func (c *Catalog) Reciters() []entities.Reciter {
	return c.reciters
}

func (c *Catalog) Translations() []entities.Translation {
	return c.translations
}

func (c *Catalog) Reciter(id string) (entities.Reciter, bool) {
	for _, r := range c.reciters {
		if r.ID == id {
			return r, true
		}
	}
	return entities.Reciter{}, false
}

func (c *Catalog) Translation(id string) (entities.Translation, bool) {
	for _, t := range c.translations {
		if t.ID == id {
			return t, true
		}
	}
	return entities.Translation{}, false
}

var defaultReciters = []entities.Reciter{
	{ID: "abdul_basit", Name: "Abdul Basit", ArabicName: "عبد الباسط عبد الصمد", Style: "Murattal", AudioFolder: "Abdul_Basit_Murattal_192kbps"},
	{ID: "abdulrahman_sudais", Name: "Abdulrahman Al-Sudais", ArabicName: "عبد الرحمن السديس", Style: "Murattal", AudioFolder: "Abdurrahmaan_As-Sudais_192kbps"},
	{ID: "mishary_rashid", Name: "Mishary Rashid Alafasy", ArabicName: "مشاري راشد العفاسي", Style: "Murattal", AudioFolder: "Alafasy_128kbps"},
	{ID: "mohammed_siddiq", Name: "Mohammed Siddiq El-Minshawi", ArabicName: "محمد صديق المنشاوي", Style: "Murattal", AudioFolder: "Minshawy_Murattal_128kbps", IsPremium: true},
	{ID: "maher_al_muaiqly", Name: "Maher Al-Muaiqly", ArabicName: "ماهر المعيقلي", Style: "Murattal", AudioFolder: "Maher_AlMuaiqly_128kbps", IsPremium: true},
	{ID: "saud_shuraim", Name: "Saud Al-Shuraim", ArabicName: "سعود الشريم", Style: "Murattal", AudioFolder: "Saood_ash-Shuraym_128kbps", IsPremium: true},
}

var defaultTranslations = []entities.Translation{
	{ID: "en.sahih", Name: "Sahih International", Language: "English", Author: "Sahih International"},
	{ID: "en.yusufali", Name: "Yusuf Ali", Language: "English", Author: "Abdullah Yusuf Ali"},
	{ID: "en.pickthall", Name: "Pickthall", Language: "English", Author: "Mohammed Marmaduke Pickthall"},
	{ID: "en.asad", Name: "Muhammad Asad", Language: "English", Author: "Muhammad Asad"},
	{ID: "en.hilali", Name: "Hilali & Khan", Language: "English", Author: "Hilali & Khan"},
	{ID: "en.itani", Name: "Clear Quran", Language: "English", Author: "Talal Itani"},
	{ID: "en.maududi", Name: "Maududi", Language: "English", Author: "Abul Ala Maududi"},
	{ID: "ml.abdulhameed", Name: "Abdul Hameed & Parappoor", Language: "Malayalam", Author: "Cheriyamundam Abdul Hameed & Kunhi Mohammed Parappoor"},
	{ID: "ml.karakunnu", Name: "Karakunnu & Elayavoor", Language: "Malayalam", Author: "Karakunnu & Elayavoor"},
	{ID: "hi.hindi", Name: "Farooq Khan & Nadwi", Language: "Hindi", Author: "Suhel Farooq Khan & Saifur Rahman Nadwi"},
	{ID: "hi.farooq", Name: "Farooq Khan & Ahmed", Language: "Hindi", Author: "Muhammad Farooq Khan & Muhammad Ahmed"},
	{ID: "ur.jalandhry", Name: "Jalandhry", Language: "Urdu", Author: "Fateh Muhammad Jalandhry"},
	{ID: "ur.maududi", Name: "Maududi", Language: "Urdu", Author: "Abul A'ala Maududi"},
	{ID: "ta.tamil", Name: "Jan Trust", Language: "Tamil", Author: "Jan Trust Foundation"},
	{ID: "bn.bengali", Name: "Muhiuddin Khan", Language: "Bengali", Author: "Muhiuddin Khan"},
	{ID: "fr.hamidullah", Name: "Hamidullah", Language: "French", Author: "Muhammad Hamidullah"},
	{ID: "tr.diyanet", Name: "Diyanet İşleri", Language: "Turkish", Author: "Diyanet Isleri"},
	{ID: "ms.basmeih", Name: "Basmeih", Language: "Malay", Author: "Abdullah Muhammad Basmeih"},
	{ID: "id.indonesian", Name: "Bahasa Indonesia", Language: "Indonesian", Author: "Indonesian Ministry of Religious Affairs"},
	{ID: "ru.kuliev", Name: "Kuliev", Language: "Russian", Author: "Elmir Kuliev"},
	{ID: "de.bubenheim", Name: "Bubenheim & Elyas", Language: "German", Author: "A. S. F. Bubenheim & N. Elyas"},
	{ID: "es.cortes", Name: "Julio Cortes", Language: "Spanish", Author: "Julio Cortes"},
	{ID: "fa.makarem", Name: "Makarem Shirazi", Language: "Persian", Author: "Naser Makarem Shirazi"},
}
