package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/cleaner"
	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

const (
	matchTimeout       = 30 * time.Second
	descriptionPreview = 300

	// Fixed fallback texts returned when scoring fails. The posting stays
	// attached so callers can still show and link it.
	FallbackPersonalized = "⚠️ Error analizando este job"
	FallbackTelegramMsg  = "⚠️ Error analizando este job. Intenta más tarde."
)

// Generator produces a text completion. *LLM implements it; tests fake it.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Matcher scores jobs against a user profile through the LLM.
type Matcher struct {
	gen Generator
}

func NewMatcher(gen Generator) *Matcher {
	return &Matcher{gen: gen}
}

// matchResponse mirrors the strict JSON schema the model must return.
type matchResponse struct {
	MatchScore          *float64 `json:"match_score"`
	PersonalizedMessage string   `json:"personalized_message"`
	TelegramMessage     string   `json:"telegram_message"`
}

const matchSystemPrompt = "Eres un asistente de búsqueda de empleo. Analizas una vacante contra el " +
	"perfil del usuario y devuelves SOLO un JSON con 3 campos: match_score (0-100), " +
	"personalized_message, telegram_message. telegram_message DEBE estar formateado en " +
	"Markdown con emojis, listo para enviar a Telegram."

// Worked examples steer the model toward the expected score range and the
// Telegram display convention.
var matchExamples = []struct {
	jobInfo     string
	userProfile string
	output      string
}{
	{
		jobInfo: `Job: Senior Python Developer
Company: Acme Corp
Remote: Yes
Type: Contract
Description: We're looking for a Senior Python Developer with 5+ years experience. Strong in FastAPI, PostgreSQL. Remote-first company.`,
		userProfile: `Keywords: ["python", "remote", "contract"]
Location: USA`,
		output: `{"match_score": 85, "personalized_message": "Matches porque: ✅ Python (skill exacto), ✅ Remote (como pediste), ✅ Contract (tu tipo favorito)", "telegram_message": "✅ Senior Python Developer\n🏢 Acme Corp\n📍 Remote | 💼 Contract\n⭐ Score: 85/100\n\n🤖 Matches porque: ✅ Python (skill exacto), ✅ Remote, ✅ Contract\n\n🔗 [Ver en Indeed](https://indeed.com/jobs/123)"}`,
	},
	{
		jobInfo: `Job: Java Developer - On-site
Company: OldCorp Inc
Remote: No
Type: Fulltime
Description: Looking for Java developer. On-site in New York office. Traditional enterprise environment.`,
		userProfile: `Keywords: ["python", "remote", "contract"]
Location: USA`,
		output: `{"match_score": 15, "personalized_message": "No matchea. Java ≠ Python, On-site ≠ Remote, Fulltime ≠ Contract", "telegram_message": "❌ Java Developer - On-site\n🏢 OldCorp Inc\n📍 On-site | 💼 Fulltime\n⭐ Score: 15/100\n\n🤖 No coincide con tu perfil. Buscas Python/Remote/Contract.\n\n🔗 [Ver en Indeed](https://indeed.com/jobs/456)"}`,
	},
}

// MatchJob scores one job against the user's keywords and location. It never
// returns an error: any failure (API, malformed output, out-of-range score)
// yields the fixed fallback result with score 0.
func (m *Matcher) MatchJob(ctx context.Context, job types.Job, userKeywords []string, userLocation string) types.MatchResult {
	logger := slog.With("component", "llm", "operation", "match_job")

	prompt := buildMatchPrompt(job, userKeywords, userLocation)

	ctx, cancel := context.WithTimeout(ctx, matchTimeout)
	defer cancel()

	startTime := time.Now()
	content, err := m.gen.Generate(ctx, matchSystemPrompt, prompt)
	if err != nil {
		logger.Error("job matching failed",
			"title", job.Title,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return fallbackResult(job)
	}

	cleanResponse := cleaner.CleanLlmResponse(content)
	var parsed matchResponse
	if err := json.Unmarshal([]byte(cleanResponse), &parsed); err != nil {
		logger.Error("JSON parsing failed",
			"error", err,
			"content_preview", cleanResponse[:min(100, len(cleanResponse))])
		return fallbackResult(job)
	}

	if parsed.MatchScore == nil {
		logger.Error("response missing match_score", "title", job.Title)
		return fallbackResult(job)
	}

	result, err := types.NewMatchResult(job, *parsed.MatchScore, parsed.PersonalizedMessage, parsed.TelegramMessage)
	if err != nil {
		logger.Error("response violates scoring contract", "title", job.Title, "error", err)
		return fallbackResult(job)
	}

	logger.Info("job matched",
		"title", job.Title,
		"company", job.Company,
		"score", result.MatchScore,
		"duration_ms", time.Since(startTime).Milliseconds())

	return *result
}

// MatchJobsBatch scores each job in turn, one entry per input job. Jobs that
// fail scoring get the fallback entry rather than being dropped, so ranking
// and delivery always see the full batch.
//
// Callers must keep batches small: the Gemini free tier allows 20 requests a
// day, which is why only the top postings are ever scored.
func (m *Matcher) MatchJobsBatch(ctx context.Context, jobs []types.Job, userKeywords []string, userLocation string) []types.MatchResult {
	results := make([]types.MatchResult, 0, len(jobs))
	for _, job := range jobs {
		results = append(results, m.MatchJob(ctx, job, userKeywords, userLocation))
	}
	return results
}

func fallbackResult(job types.Job) types.MatchResult {
	return types.MatchResult{
		Job:                 job,
		MatchScore:          0,
		PersonalizedMessage: FallbackPersonalized,
		TelegramMessage:     FallbackTelegramMsg,
	}
}

func buildMatchPrompt(job types.Job, userKeywords []string, userLocation string) string {
	var b strings.Builder

	for _, ex := range matchExamples {
		b.WriteString("JOB DETAILS:\n")
		b.WriteString(ex.jobInfo)
		b.WriteString("\n\nUSER PROFILE:\n")
		b.WriteString(ex.userProfile)
		b.WriteString("\n\nOUTPUT:\n")
		b.WriteString(ex.output)
		b.WriteString("\n\n")
	}

	b.WriteString("Ahora analiza este nuevo job:\n\nJOB DETAILS:\n")
	b.WriteString(formatJobInfo(job))
	b.WriteString("\n\nUSER PROFILE:\n")
	b.WriteString(formatUserProfile(userKeywords, userLocation))
	b.WriteString("\n\nRetorna JSON con 3 campos: match_score (0-100), personalized_message, telegram_message.\n")
	b.WriteString("telegram_message DEBE estar formateado en Markdown con emojis, listo para enviar a Telegram.")

	return b.String()
}

func formatJobInfo(job types.Job) string {
	remote := "No"
	if job.IsRemote {
		remote = "Yes"
	}
	jobType := job.JobType
	if jobType == "" {
		jobType = "Unknown"
	}
	description := "No description"
	if job.Description != "" {
		description = job.Description
		// Truncate on rune boundaries; byte slicing would split accented
		// characters and feed invalid UTF-8 to the API.
		if runes := []rune(description); len(runes) > descriptionPreview {
			description = string(runes[:descriptionPreview])
		}
		description += "..."
	}

	return fmt.Sprintf("Job: %s\nCompany: %s\nRemote: %s\nType: %s\nDescription: %s",
		job.Title, job.Company, remote, jobType, description)
}

func formatUserProfile(keywords []string, location string) string {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = fmt.Sprintf("%q", kw)
	}
	return fmt.Sprintf("Keywords: [%s]\nLocation: %s", strings.Join(quoted, ", "), location)
}
