package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/errors"
)

const (
	MinKeywords = 1
	MaxKeywords = 5
)

// =============== user TYPES ===============

// User is the stored search profile of one Telegram user.
type User struct {
	TelegramID      string    `json:"telegram_id"`
	Name            string    `json:"name"`
	Keywords        []string  `json:"keywords"`
	Country         string    `json:"location_preference"`
	JobType         string    `json:"job_type,omitempty"`
	ExperienceLevel string    `json:"experience_level"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// NewUser builds a validated profile. Keywords are trimmed and empties
// dropped; the country is normalized to its canonical full name before it is
// ever stored.
func NewUser(telegramID, name string, keywords []string, country, jobType string) (*User, error) {
	if strings.TrimSpace(telegramID) == "" {
		return nil, errors.NewValidation("telegram_id", "telegram_id no puede estar vacío")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("name", "name no puede estar vacío")
	}

	var cleaned []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) < MinKeywords {
		return nil, errors.ErrEmptyKeywords()
	}
	if len(cleaned) > MaxKeywords {
		return nil, errors.NewValidation("keywords",
			fmt.Sprintf("máximo %d keywords, recibidas %d", MaxKeywords, len(cleaned)))
	}

	canonical, ok := NormalizeCountry(country)
	if !ok {
		return nil, errors.ErrInvalidCountry(country, strings.Join(CountryNames(), ", "))
	}

	if jobType != "" {
		normalized, ok := NormalizeJobType(jobType)
		if !ok {
			return nil, errors.ErrInvalidJobType(jobType, strings.Join(ValidJobTypes, ", "))
		}
		jobType = normalized
	}

	return &User{
		TelegramID:      telegramID,
		Name:            name,
		Keywords:        cleaned,
		Country:         canonical,
		JobType:         jobType,
		ExperienceLevel: "mid",
		IsActive:        true,
	}, nil
}

// =============== job TYPES ===============

// Job is one external listing, held only for the duration of a search run.
type Job struct {
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	JobURL      string `json:"job_url"`
	Location    string `json:"location,omitempty"`
	IsRemote    bool   `json:"is_remote"`
	JobType     string `json:"job_type,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	DatePosted  string `json:"date_posted,omitempty"`
}

// Validate enforces the required fields every aggregated posting carries.
// Company is allowed to be empty, some platforms omit it.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return errors.NewValidation("title", "title no puede estar vacío")
	}
	if strings.TrimSpace(j.JobURL) == "" {
		return errors.NewValidation("job_url", "job_url no puede estar vacío")
	}
	if strings.TrimSpace(j.Source) == "" {
		return errors.NewValidation("source", "source no puede estar vacío")
	}
	return nil
}

// =============== matching TYPES ===============

// MatchResult pairs one job with the score and display text produced by the
// personalization step.
type MatchResult struct {
	Job                 Job     `json:"job"`
	MatchScore          float64 `json:"match_score"`
	PersonalizedMessage string  `json:"personalized_message"`
	TelegramMessage     string  `json:"telegram_message"`
}

// NewMatchResult enforces the scoring contract at the boundary: score within
// [0,100] and both message fields present.
func NewMatchResult(job Job, score float64, personalized, telegramMsg string) (*MatchResult, error) {
	if score < 0 || score > 100 {
		return nil, errors.NewValidation("match_score",
			fmt.Sprintf("match_score %.1f fuera de rango [0,100]", score))
	}
	if strings.TrimSpace(personalized) == "" {
		return nil, errors.NewValidation("personalized_message", "personalized_message no puede estar vacío")
	}
	if strings.TrimSpace(telegramMsg) == "" {
		return nil, errors.NewValidation("telegram_message", "telegram_message no puede estar vacío")
	}
	return &MatchResult{
		Job:                 job,
		MatchScore:          score,
		PersonalizedMessage: personalized,
		TelegramMessage:     telegramMsg,
	}, nil
}

// =============== rate limit TYPES ===============

// QueryLogEntry is one append-only record per orchestration invocation,
// used exclusively to compute same-day counts.
type QueryLogEntry struct {
	TelegramID string    `json:"telegram_id"`
	QueryType  string    `json:"query_type"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
}
