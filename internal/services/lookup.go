package services

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// LookupResult merges the responses of the two upstream lookup APIs for one
// phone number. A source that failed carries its error text instead of a
// body; a result with both sources failed is never returned (the caller
// gets an error and reverses the charge).
type LookupResult struct {
	Phone       string `json:"phone"`
	NameFinder  string `json:"name_finder,omitempty"`
	NameErr     string `json:"name_finder_error,omitempty"`
	AadhaarInfo string `json:"aadhaar_info,omitempty"`
	AadhaarErr  string `json:"aadhaar_info_error,omitempty"`
	FromCache   bool   `json:"-"`
}

// ErrAllLookupsFailed means neither upstream produced a response.
var ErrAllLookupsFailed = errors.New("all lookup sources failed")

// LookupService calls the third-party phone lookup APIs. Both sources run
// in parallel; a partial failure still yields a report.
type LookupService struct {
	client           *http.Client
	nameFinderURL    string
	aadhaarFinderURL string
	cache            *CacheService
}

func NewLookupService(nameFinderURL, aadhaarFinderURL string, timeout time.Duration, cache *CacheService) *LookupService {
	return &LookupService{
		client:           &http.Client{Timeout: timeout},
		nameFinderURL:    nameFinderURL,
		aadhaarFinderURL: aadhaarFinderURL,
		cache:            cache,
	}
}

// LookupNumber fetches both sources for phone, serving from the Redis cache
// when a recent result exists.
func (s *LookupService) LookupNumber(ctx context.Context, phone string) (*LookupResult, error) {
	var cached LookupResult
	if hit, err := s.cache.Get(ctx, phone, &cached); err == nil && hit {
		cached.FromCache = true
		return &cached, nil
	}

	result := &LookupResult{Phone: phone}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		body, err := s.fetch(ctx, s.nameFinderURL, phone)
		if err != nil {
			result.NameErr = err.Error()
			return
		}
		result.NameFinder = body
	}()
	go func() {
		defer wg.Done()
		body, err := s.fetch(ctx, s.aadhaarFinderURL, phone)
		if err != nil {
			result.AadhaarErr = err.Error()
			return
		}
		result.AadhaarInfo = body
	}()
	wg.Wait()

	if result.NameFinder == "" && result.AadhaarInfo == "" {
		return nil, ErrAllLookupsFailed
	}

	if err := s.cache.Set(ctx, phone, result); err != nil {
		log.Printf("lookup cache write failed for %s: %v", phone, err)
	}
	return result, nil
}

func (s *LookupService) fetch(ctx context.Context, baseURL, phone string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+url.QueryEscape(phone), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("upstream returned " + resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", errors.New("upstream returned empty body")
	}
	return text, nil
}
