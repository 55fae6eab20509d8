package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/enduser-digital/intelligence-api/internal/repository"
	"go.uber.org/zap"
)

// synonymVariants adds spelling variants the CRM free text commonly uses
// for a service name. Keyed by the lowercase catalog name.
var synonymVariants = map[string][]string{
	"formazione 4.0": {"formazione quattro punto zero", "formazioni 4.0"},
	"patent box":     {"patentbox"},
	"know how":       {"knowhow"},
	"bandi":          {"bando", "incentivi", "contributo"},
	"finanziamenti":  {"finanziamento", "credito"},
}

var (
	newlineRe    = regexp.MustCompile(`\n+`)
	nonTextRe    = regexp.MustCompile(`[^a-z0-9àèéìòù. ]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// normalizeText lowercases free text and strips punctuation so keyword
// matching is insensitive to CRM formatting noise
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = newlineRe.ReplaceAllString(text, " ")
	text = nonTextRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// DetectionService recognizes service lines in CRM free text. The
// keyword map is built from the service catalog, so new services are
// detected without code changes.
type DetectionService struct {
	catalogRepo *repository.CatalogRepository
	logger      *zap.Logger
}

func NewDetectionService(catalogRepo *repository.CatalogRepository, logger *zap.Logger) *DetectionService {
	return &DetectionService{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// ExtractServiceLabels returns the catalog names of every non-engagement
// service whose name or synonym appears in the description
func (s *DetectionService) ExtractServiceLabels(ctx context.Context, description string) ([]string, error) {
	if strings.TrimSpace(description) == "" {
		return nil, nil
	}

	services, err := s.catalogRepo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	desc := normalizeText(description)
	var found []string
	for i := range services {
		if services[i].IsEngagement {
			continue
		}
		for _, kw := range keywordsFor(services[i].Name) {
			if strings.Contains(desc, kw) {
				found = append(found, services[i].Name)
				break
			}
		}
	}
	return found, nil
}

// ResolveServiceCodes maps detected labels (and, optionally, raw
// description text) to service codes. Exact label match wins; partial
// containment is a fallback for CRM labels with extra decoration.
func (s *DetectionService) ResolveServiceCodes(ctx context.Context, description string, labels []string) ([]string, error) {
	services, err := s.catalogRepo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	type entry struct {
		name string
		code string
	}
	var entries []entry
	for i := range services {
		if services[i].IsEngagement || services[i].Code == "" {
			continue
		}
		entries = append(entries, entry{
			name: strings.ToLower(strings.TrimSpace(services[i].Name)),
			code: services[i].Code,
		})
	}

	found := make(map[string]struct{})

	if desc := normalizeText(description); desc != "" {
		for _, e := range entries {
			for _, kw := range keywordsFor(e.name) {
				if strings.Contains(desc, kw) {
					found[e.code] = struct{}{}
					break
				}
			}
		}
	}

	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}

		matched := false
		for _, e := range entries {
			if e.name == label {
				found[e.code] = struct{}{}
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		for _, e := range entries {
			if strings.Contains(label, e.name) || strings.Contains(e.name, label) {
				found[e.code] = struct{}{}
				break
			}
		}
	}

	codes := make([]string, 0, len(found))
	for code := range found {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// keywordsFor returns the normalized name plus its known variants
func keywordsFor(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	keywords := []string{name}
	keywords = append(keywords, synonymVariants[name]...)
	return keywords
}
