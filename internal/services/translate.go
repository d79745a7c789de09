package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"cloud.google.com/go/translate"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

const translateCacheTTL = 24 * time.Hour

type TranslateService struct {
	client *translate.Client
	cache  *redis.Client
}

func NewTranslateService(apiKey string, cache *redis.Client) (*TranslateService, error) {
	ctx := context.Background()
	client, err := translate.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	return &TranslateService{client: client, cache: cache}, nil
}

func (s *TranslateService) Close() {
	s.client.Close()
}

// Translate translates UI or content text into the target locale. Results are
// cached by (target, content hash) so repeated catalogs stay off the API.
func (s *TranslateService) Translate(ctx context.Context, text, targetLocale string) (string, error) {
	target, err := language.Parse(targetLocale)
	if err != nil {
		return "", &ValidationError{Fields: map[string]string{"targetLocale": "Unknown locale tag"}}
	}

	cacheKey := translateCacheKey(targetLocale, text)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			return cached, nil
		}
	}

	translations, err := s.client.Translate(ctx, []string{text}, target, nil)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("translation returned no results")
	}

	result := translations[0].Text
	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, result, translateCacheTTL)
	}

	return result, nil
}

func translateCacheKey(locale, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("translate:%s:%s", locale, hex.EncodeToString(sum[:8]))
}
