package db

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"profilingpoll/internal/poll"
)

// Seed file format. Profiles are declared once under a string key and
// referenced from answer weights and default_profile.
type seedFile struct {
	Profiles []seedProfile `json:"profiles"`
	Polls    []seedPoll    `json:"polls"`
}

type seedProfile struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Text        string `json:"text"`
	Link        string `json:"link"`
	LinkText    string `json:"link_text"`
}

type seedPoll struct {
	Title          string         `json:"title"`
	Slug           string         `json:"slug"`
	Description    string         `json:"description"`
	FinishText     string         `json:"finish_text"`
	Active         bool           `json:"active"`
	DefaultProfile string         `json:"default_profile"`
	Questions      []seedQuestion `json:"questions"`
}

type seedQuestion struct {
	Text            string       `json:"text"`
	Ordering        uint         `json:"ordering"`
	MultipleAnswers bool         `json:"multiple_answers"`
	Answers         []seedAnswer `json:"answers"`
}

type seedAnswer struct {
	Text     string         `json:"text"`
	Ordering uint           `json:"ordering"`
	Weights  map[string]int `json:"weights"` // profile key -> quantifier
}

// LoadSeed populates an empty database with authored content from a JSON
// file. Skipped when any poll already exists, so restarts are harmless.
func LoadSeed(gdb *gorm.DB, path string) error {
	var count int64
	if err := gdb.Model(&poll.Poll{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[Seed] Database already has %d polls, skipping %s", count, path)
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("invalid seed format: %w", err)
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		profiles := make(map[string]uint, len(seed.Profiles))
		for _, sp := range seed.Profiles {
			p := poll.Profile{
				Description: sp.Description,
				Text:        sp.Text,
				Link:        sp.Link,
				LinkText:    sp.LinkText,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			profiles[sp.Key] = p.ID
		}

		for _, sp := range seed.Polls {
			p := poll.Poll{
				Title:       sp.Title,
				Slug:        sp.Slug,
				Description: sp.Description,
				FinishText:  sp.FinishText,
				Active:      sp.Active,
			}
			if sp.DefaultProfile != "" {
				id, ok := profiles[sp.DefaultProfile]
				if !ok {
					return fmt.Errorf("poll %q: unknown default profile %q", sp.Slug, sp.DefaultProfile)
				}
				p.DefaultProfileID = &id
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}

			for _, sq := range sp.Questions {
				q := poll.Question{
					PollID:          p.ID,
					Text:            sq.Text,
					Ordering:        sq.Ordering,
					MultipleAnswers: sq.MultipleAnswers,
				}
				if err := tx.Create(&q).Error; err != nil {
					return err
				}

				for _, sa := range sq.Answers {
					a := poll.Answer{QuestionID: q.ID, Text: sa.Text, Ordering: sa.Ordering}
					if err := tx.Create(&a).Error; err != nil {
						return err
					}
					for key, quantifier := range sa.Weights {
						id, ok := profiles[key]
						if !ok {
							return fmt.Errorf("answer %q: unknown profile %q", sa.Text, key)
						}
						link := poll.AnswerProfile{AnswerID: a.ID, ProfileID: id, Quantifier: quantifier}
						if err := tx.Create(&link).Error; err != nil {
							return err
						}
					}
				}
			}
			log.Printf("[Seed] Loaded poll %q (%d questions)", sp.Slug, len(sp.Questions))
		}
		return nil
	})
}
