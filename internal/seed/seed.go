// Package seed holds the expert catalogue used to populate an empty store.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/Domenick1991/expertbooking/internal/repository"
	"gopkg.in/yaml.v3"
)

//go:embed experts.yaml
var defaultExperts []byte

type expertDoc struct {
	Name       string     `yaml:"name"`
	Category   string     `yaml:"category"`
	Experience int        `yaml:"experience"`
	Rating     float64    `yaml:"rating"`
	Bio        string     `yaml:"bio"`
	Calendar   []entryDoc `yaml:"calendar"`
}

type entryDoc struct {
	Date  string   `yaml:"date"`
	Slots []string `yaml:"slots"`
}

// Parse decodes a YAML list of experts with their calendars.
func Parse(data []byte) ([]domain.Expert, error) {
	var docs []expertDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode experts: %w", err)
	}

	experts := make([]domain.Expert, 0, len(docs))
	for _, d := range docs {
		if d.Name == "" || d.Category == "" {
			return nil, fmt.Errorf("expert %q: name and category are required", d.Name)
		}
		e := domain.Expert{
			Name:       d.Name,
			Category:   d.Category,
			Experience: d.Experience,
			Rating:     d.Rating,
			Bio:        d.Bio,
			Calendar:   make([]domain.CalendarEntry, 0, len(d.Calendar)),
		}
		for _, entry := range d.Calendar {
			date, err := domain.ParseDate(entry.Date)
			if err != nil {
				return nil, fmt.Errorf("expert %q: %w", d.Name, err)
			}
			e.Calendar = append(e.Calendar, domain.CalendarEntry{Date: date, Slots: entry.Slots})
		}
		experts = append(experts, e)
	}
	return experts, nil
}

func Default() ([]domain.Expert, error) {
	return Parse(defaultExperts)
}

// Apply replaces every expert in repo with experts.
func Apply(ctx context.Context, repo repository.ExpertRepository, experts []domain.Expert) error {
	if err := repo.ReplaceAll(ctx, experts); err != nil {
		return fmt.Errorf("replace experts: %w", err)
	}
	return nil
}
