// Package quran talks to the public Quran content and audio hosts.
package quran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

const (
	DefaultBaseURL     = "https://api.alquran.cloud/v1"
	DefaultTranslation = "en.sahih"
)

var (
	ErrNotFound          = errors.New("content not found")
	ErrUnexpectedPayload = errors.New("unexpected content payload")
)

// Client fetches surahs, juzs and translations from the alquran.cloud API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	surahs []entities.Surah
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope[T any] struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   T      `json:"data"`
}

type apiSurah struct {
	Number                 int       `json:"number"`
	Name                   string    `json:"name"`
	EnglishName            string    `json:"englishName"`
	EnglishNameTranslation string    `json:"englishNameTranslation"`
	NumberOfAyahs          int       `json:"numberOfAyahs"`
	RevelationType         string    `json:"revelationType"`
	Ayahs                  []apiAyah `json:"ayahs"`
}

type apiAyah struct {
	Number        int       `json:"number"`
	Text          string    `json:"text"`
	NumberInSurah int       `json:"numberInSurah"`
	Juz           int       `json:"juz"`
	Manzil        int       `json:"manzil"`
	Page          int       `json:"page"`
	Ruku          int       `json:"ruku"`
	Surah         *apiSurah `json:"surah,omitempty"`
}

type apiJuz struct {
	Number int       `json:"number"`
	Ayahs  []apiAyah `json:"ayahs"`
}

// Surahs returns the list of all 114 surahs. The list is cached after the
// first successful fetch.
func (c *Client) Surahs(ctx context.Context) ([]entities.Surah, error) {
	c.mu.RLock()
	cached := c.surahs
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	var resp envelope[[]apiSurah]
	if err := c.get(ctx, "/surah", &resp); err != nil {
		return nil, fmt.Errorf("get surahs: %w", err)
	}

	surahs := make([]entities.Surah, 0, len(resp.Data))
	for _, s := range resp.Data {
		surahs = append(surahs, s.toSurah())
	}

	c.mu.Lock()
	c.surahs = surahs
	c.mu.Unlock()

	return surahs, nil
}

// Surah returns one surah with every ayah in Arabic and in the translation edition.
func (c *Client) Surah(ctx context.Context, id int, translation string) (*entities.Surah, []entities.Ayah, error) {
	if id < 1 || id > entities.TotalSurahs {
		return nil, nil, fmt.Errorf("%w: surah %d", ErrNotFound, id)
	}
	if translation == "" {
		translation = DefaultTranslation
	}

	var arabic, translated envelope[apiSurah]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/surah/%d", id), &arabic) })
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/surah/%d/%s", id, translation), &translated) })
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("get surah (id: %d): %w", id, err)
	}

	s := arabic.Data
	if len(s.Ayahs) == 0 || len(translated.Data.Ayahs) != len(s.Ayahs) {
		return nil, nil, fmt.Errorf("get surah (id: %d): %w", id, ErrUnexpectedPayload)
	}

	surah := s.toSurah()
	surah.StartPage = s.Ayahs[0].Page
	surah.EndPage = s.Ayahs[len(s.Ayahs)-1].Page

	ayahs := make([]entities.Ayah, 0, len(s.Ayahs))
	for i, a := range s.Ayahs {
		if len(surah.JuzNumbers) == 0 || surah.JuzNumbers[len(surah.JuzNumbers)-1] != a.Juz {
			surah.JuzNumbers = append(surah.JuzNumbers, a.Juz)
		}
		ayah := a.toAyah(s.Number, translated.Data.Ayahs[i].Text)
		ayah.SurahName = s.Name
		ayah.SurahEnglishName = s.EnglishName
		ayahs = append(ayahs, ayah)
	}

	return &surah, ayahs, nil
}

// Juz returns the ayahs of one juz in Arabic and in the translation edition.
func (c *Client) Juz(ctx context.Context, id int, translation string) ([]entities.Ayah, error) {
	if id < 1 || id > entities.TotalJuzs {
		return nil, fmt.Errorf("%w: juz %d", ErrNotFound, id)
	}
	if translation == "" {
		translation = DefaultTranslation
	}

	var arabic, translated envelope[apiJuz]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/juz/%d", id), &arabic) })
	g.Go(func() error { return c.get(gctx, fmt.Sprintf("/juz/%d/%s", id, translation), &translated) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get juz (id: %d): %w", id, err)
	}

	if len(translated.Data.Ayahs) != len(arabic.Data.Ayahs) {
		return nil, fmt.Errorf("get juz (id: %d): %w", id, ErrUnexpectedPayload)
	}

	ayahs := make([]entities.Ayah, 0, len(arabic.Data.Ayahs))
	for i, a := range arabic.Data.Ayahs {
		ayah := a.toAyah(0, translated.Data.Ayahs[i].Text)
		if a.Surah != nil {
			ayah.SurahID = a.Surah.Number
			ayah.SurahName = a.Surah.Name
			ayah.SurahEnglishName = a.Surah.EnglishName
		}
		ayahs = append(ayahs, ayah)
	}
	return ayahs, nil
}

// Juzs returns the 30 juz divisions. The API has no listing endpoint, so
// only the ids are populated.
func (c *Client) Juzs() []entities.Juz {
	juzs := make([]entities.Juz, entities.TotalJuzs)
	for i := range juzs {
		juzs[i] = entities.Juz{ID: i + 1}
	}
	return juzs
}

// AyahTranslation returns the translated text of a single ayah.
func (c *Client) AyahTranslation(ctx context.Context, surahID, ayahNumber int, translation string) (string, error) {
	if translation == "" {
		translation = DefaultTranslation
	}

	var resp envelope[apiAyah]
	if err := c.get(ctx, fmt.Sprintf("/ayah/%d:%d/%s", surahID, ayahNumber, translation), &resp); err != nil {
		return "", fmt.Errorf("get ayah translation (%d:%d): %w", surahID, ayahNumber, err)
	}
	return resp.Data.Text, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s apiSurah) toSurah() entities.Surah {
	return entities.Surah{
		ID:             s.Number,
		Name:           s.Name,
		EnglishName:    s.EnglishName,
		Meaning:        s.EnglishNameTranslation,
		AyahCount:      s.NumberOfAyahs,
		RevelationType: strings.ToLower(s.RevelationType),
	}
}

func (a apiAyah) toAyah(surahID int, translation string) entities.Ayah {
	return entities.Ayah{
		ID:              a.Number,
		SurahID:         surahID,
		AyahNumber:      a.NumberInSurah,
		TextArabic:      a.Text,
		TextTranslation: translation,
		JuzNumber:       a.Juz,
		PageNumber:      a.Page,
		RukuNumber:      a.Ruku,
		ManzilNumber:    a.Manzil,
	}
}
