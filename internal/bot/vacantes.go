package bot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/export"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/jobspy"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/store"
	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

const (
	// maxMatchedJobs caps how many postings reach the LLM per run. The
	// Gemini free tier allows 20 requests a day; everything past the cap
	// only ever appears in the CSV.
	maxMatchedJobs = 5

	deliveryPacing      = 500 * time.Millisecond
	firstProgressDelay  = 1 * time.Minute
	secondProgressDelay = 3 * time.Minute
)

// Invocation outcomes recorded in query_logs.
const (
	statusDenied     = "denied"
	statusNoProfile  = "no_profile"
	statusNoKeywords = "no_keywords"
	statusNoResults  = "no_results"
)

// exampleLinkRe matches the placeholder markdown links the LLM copies from
// its worked examples; they are stripped before the real apply URL goes in.
var exampleLinkRe = regexp.MustCompile(`\[.*?\]\(https?://.*?\)`)

type searcher interface {
	Search(ctx context.Context, p jobspy.SearchParams) ([]types.Job, error)
}

type matcher interface {
	MatchJobsBatch(ctx context.Context, jobs []types.Job, userKeywords []string, userLocation string) []types.MatchResult
}

type profileReader interface {
	GetUserProfile(ctx context.Context, telegramID string) (*types.User, error)
	AddQueryLog(ctx context.Context, telegramID, queryType, status string) error
}

type queryLimiter interface {
	CanMakeQuery(ctx context.Context, telegramID string) (bool, string)
}

// VacantesHandler runs the on-demand search flow: rate gate, profile lookup,
// aggregated search, bounded personalization, ranked delivery, full CSV
// export, invocation log.
type VacantesHandler struct {
	profiles profileReader
	limiter  queryLimiter
	search   searcher
	match    matcher
	reply    replier

	pacing              time.Duration
	firstProgressDelay  time.Duration
	secondProgressDelay time.Duration
}

func NewVacantesHandler(profiles profileReader, limiter queryLimiter, search searcher, match matcher, reply replier) *VacantesHandler {
	return &VacantesHandler{
		profiles:            profiles,
		limiter:             limiter,
		search:              search,
		match:               match,
		reply:               reply,
		pacing:              deliveryPacing,
		firstProgressDelay:  firstProgressDelay,
		secondProgressDelay: secondProgressDelay,
	}
}

// Run executes one /vacantes invocation. Every exit path records the outcome
// in query_logs; failures surface to the user as a generic message and are
// never retried.
func (h *VacantesHandler) Run(ctx context.Context, chatID int64, telegramID, userName string) {
	logger := slog.With("component", "vacantes", "telegram_id", telegramID)

	status, err := h.run(ctx, logger, chatID, telegramID, userName)
	if err != nil {
		logger.Error("error en /vacantes", "error", err)
		if sendErr := h.reply.SendText(chatID, msgGenericError(err)); sendErr != nil {
			logger.Error("no se pudo reportar el error al usuario", "error", sendErr)
		}
		status = store.StatusError
	}

	if logErr := h.profiles.AddQueryLog(ctx, telegramID, store.QueryTypeVacantes, status); logErr != nil {
		logger.Error("no se pudo registrar la consulta", "error", logErr)
	}
}

func (h *VacantesHandler) run(ctx context.Context, logger *slog.Logger, chatID int64, telegramID, userName string) (status string, err error) {
	// 1. Rate gate.
	allowed, denial := h.limiter.CanMakeQuery(ctx, telegramID)
	if !allowed {
		logger.Warn("usuario bloqueado por rate limit")
		if err := h.reply.SendText(chatID, denial); err != nil {
			return statusDenied, err
		}
		return statusDenied, nil
	}

	// 2. Profile.
	user, err := h.profiles.GetUserProfile(ctx, telegramID)
	if err != nil {
		return "", fmt.Errorf("profile lookup: %w", err)
	}
	if user == nil {
		if err := h.reply.SendText(chatID, msgNoProfile); err != nil {
			return statusNoProfile, err
		}
		return statusNoProfile, nil
	}
	if len(user.Keywords) == 0 {
		if err := h.reply.SendText(chatID, msgNoKeywords); err != nil {
			return statusNoKeywords, err
		}
		return statusNoKeywords, nil
	}

	logger.Info("/vacantes solicitado", "keywords", strings.Join(user.Keywords, ","), "country", user.Country)

	// 3. Progress notice, with two delayed edits. The timers are stopped on
	// delivery; the atomic flag covers a timer that already fired and is
	// about to edit.
	searchingID, err := h.reply.SendMarkdown(chatID, msgSearching(userName))
	if err != nil {
		return "", fmt.Errorf("sending progress notice: %w", err)
	}

	var delivered atomic.Bool
	progressEdit := func(text string) func() {
		return func() {
			if delivered.Load() {
				return
			}
			if err := h.reply.EditMarkdown(chatID, searchingID, text); err != nil {
				logger.Warn("no se pudo actualizar mensaje de progreso", "error", err)
			}
		}
	}
	t1 := time.AfterFunc(h.firstProgressDelay, progressEdit(msgProgressFirst(userName)))
	t2 := time.AfterFunc(h.secondProgressDelay, progressEdit(msgProgressSecond(userName)))
	markDelivered := func() {
		delivered.Store(true)
		t1.Stop()
		t2.Stop()
	}
	defer markDelivered()

	// 4. Aggregated search: joined keywords, profile country, no job-type
	// filter, all platforms.
	jobs, err := h.search.Search(ctx, jobspy.SearchParams{
		Keywords:  strings.Join(user.Keywords, " "),
		Country:   user.Country,
		Platforms: types.ValidPlatforms,
	})
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}
	if len(jobs) == 0 {
		markDelivered()
		if err := h.reply.SendText(chatID, msgNoResults); err != nil {
			return statusNoResults, err
		}
		return statusNoResults, nil
	}

	logger.Info("empleos encontrados", "total", len(jobs))

	// 5. Personalize only the first few postings.
	toMatch := jobs
	if len(toMatch) > maxMatchedJobs {
		toMatch = toMatch[:maxMatchedJobs]
	}
	results := h.match.MatchJobsBatch(ctx, toMatch, user.Keywords, user.Country)

	// 6. Rank by score, stable on ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	if len(results) == 0 {
		markDelivered()
		if err := h.reply.SendText(chatID, msgNoScoredResults); err != nil {
			return statusNoResults, err
		}
		return statusNoResults, nil
	}

	// 7. Deliver ranked results with pacing between sends.
	if _, err := h.reply.SendMarkdown(chatID, msgTopHeader(len(results), user.Keywords, user.Country)); err != nil {
		return "", fmt.Errorf("sending header: %w", err)
	}

	for i, result := range results {
		if _, err := h.reply.SendMarkdown(chatID, formatRankedResult(i+1, result)); err != nil {
			return "", fmt.Errorf("sending result %d: %w", i+1, err)
		}
		time.Sleep(h.pacing)
	}

	// Results are out; the pending CSV must not re-trigger progress edits.
	markDelivered()

	// 8. Export all postings, not just the matched ones.
	logger.Info("generando CSV", "total", len(jobs))
	csvData, err := export.JobsCSV(jobs)
	if err != nil {
		return "", fmt.Errorf("building CSV: %w", err)
	}

	if _, err := h.reply.SendMarkdown(chatID, msgSummary(len(results), len(jobs))); err != nil {
		return "", fmt.Errorf("sending summary: %w", err)
	}
	if err := h.reply.SendDocument(chatID, export.Filename(user.Country, len(jobs)), csvData, msgCSVCaption(len(jobs))); err != nil {
		return "", fmt.Errorf("sending CSV: %w", err)
	}
	if _, err := h.reply.SendMarkdown(chatID, msgCSVHowTo); err != nil {
		return "", fmt.Errorf("sending CSV instructions: %w", err)
	}

	logger.Info("/vacantes completado", "top", len(results), "total", len(jobs))

	return store.StatusSuccess, nil
}

// formatRankedResult strips the placeholder links the LLM copied from its
// examples and appends the posting's real apply URL.
func formatRankedResult(rank int, result types.MatchResult) string {
	cleaned := strings.TrimSpace(exampleLinkRe.ReplaceAllString(result.TelegramMessage, ""))

	jobURL := result.Job.JobURL
	return fmt.Sprintf("*#%d*\n%s\n\n🔗 [*Aplicar Ahora →*](%s)", rank, cleaned, jobURL)
}
