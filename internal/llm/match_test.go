package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

// fakeGenerator returns canned responses keyed by call count.
type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func testJob() types.Job {
	return types.Job{
		Title:       "Senior Python Developer",
		Company:     "Acme Corp",
		JobURL:      "https://indeed.com/jobs/123",
		IsRemote:    true,
		JobType:     "contract",
		Description: "Python and FastAPI work, remote-first.",
		Source:      "indeed",
	}
}

func TestMatchJobParsesStructuredResponse(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"match_score": 85, "personalized_message": "matches", "telegram_message": "✅ Senior Python Developer"}`,
	}}
	m := NewMatcher(gen)

	result := m.MatchJob(context.Background(), testJob(), []string{"python", "remote"}, "Colombia")

	assert.Equal(t, 85.0, result.MatchScore)
	assert.Equal(t, "matches", result.PersonalizedMessage)
	assert.Equal(t, "✅ Senior Python Developer", result.TelegramMessage)
	assert.Equal(t, testJob(), result.Job)
}

func TestMatchJobStripsCodeFences(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		"```json\n{\"match_score\": 70, \"personalized_message\": \"ok\", \"telegram_message\": \"msg\"}\n```",
	}}
	m := NewMatcher(gen)

	result := m.MatchJob(context.Background(), testJob(), []string{"python"}, "USA")
	assert.Equal(t, 70.0, result.MatchScore)
}

func TestMatchJobFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"api error", &fakeGenerator{errs: []error{fmt.Errorf("quota exhausted")}}},
		{"malformed json", &fakeGenerator{responses: []string{"sorry, I can't"}}},
		{"score above range", &fakeGenerator{responses: []string{`{"match_score": 150, "personalized_message": "m", "telegram_message": "t"}`}}},
		{"score below range", &fakeGenerator{responses: []string{`{"match_score": -5, "personalized_message": "m", "telegram_message": "t"}`}}},
		{"missing score", &fakeGenerator{responses: []string{`{"personalized_message": "m", "telegram_message": "t"}`}}},
		{"missing telegram message", &fakeGenerator{responses: []string{`{"match_score": 50, "personalized_message": "m"}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.gen)
			result := m.MatchJob(context.Background(), testJob(), []string{"python"}, "USA")

			assert.Equal(t, 0.0, result.MatchScore)
			assert.Equal(t, FallbackPersonalized, result.PersonalizedMessage)
			assert.Equal(t, FallbackTelegramMsg, result.TelegramMessage)
			// The posting stays attached so callers can still link it.
			assert.Equal(t, testJob(), result.Job)
		})
	}
}

func TestMatchJobsBatchSubstitutesFallback(t *testing.T) {
	// Posting #3 of 5 fails; its slot gets the fallback entry, the other
	// four keep their real scores.
	gen := &fakeGenerator{
		responses: []string{
			`{"match_score": 90, "personalized_message": "m", "telegram_message": "t1"}`,
			`{"match_score": 80, "personalized_message": "m", "telegram_message": "t2"}`,
			``,
			`{"match_score": 60, "personalized_message": "m", "telegram_message": "t4"}`,
			`{"match_score": 50, "personalized_message": "m", "telegram_message": "t5"}`,
		},
		errs: []error{nil, nil, fmt.Errorf("timeout"), nil, nil},
	}
	m := NewMatcher(gen)

	jobs := make([]types.Job, 5)
	for i := range jobs {
		jobs[i] = testJob()
		jobs[i].Title = fmt.Sprintf("Job %d", i+1)
	}

	results := m.MatchJobsBatch(context.Background(), jobs, []string{"python"}, "USA")
	require.Len(t, results, 5)

	assert.Equal(t, 90.0, results[0].MatchScore)
	assert.Equal(t, 80.0, results[1].MatchScore)
	assert.Equal(t, 0.0, results[2].MatchScore)
	assert.Equal(t, FallbackTelegramMsg, results[2].TelegramMessage)
	assert.Equal(t, "Job 3", results[2].Job.Title)
	assert.Equal(t, 60.0, results[3].MatchScore)
	assert.Equal(t, 50.0, results[4].MatchScore)
}

func TestBuildMatchPromptContents(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"match_score": 85, "personalized_message": "m", "telegram_message": "t"}`,
	}}
	m := NewMatcher(gen)

	job := testJob()
	m.MatchJob(context.Background(), job, []string{"python", "remote"}, "Colombia")

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]

	// Worked examples precede the target query.
	assert.Contains(t, prompt, "Senior Python Developer")
	assert.Contains(t, prompt, "OldCorp Inc")
	assert.Contains(t, prompt, `Keywords: ["python", "remote"]`)
	assert.Contains(t, prompt, "Location: Colombia")
	assert.Contains(t, prompt, "match_score (0-100)")
}

func TestBuildMatchPromptTruncatesDescription(t *testing.T) {
	job := testJob()
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	job.Description = string(long)

	info := formatJobInfo(job)
	assert.Contains(t, info, string(long[:300])+"...")
	assert.NotContains(t, info, string(long[:301]))
}

func TestBuildMatchPromptTruncatesOnRuneBoundary(t *testing.T) {
	job := testJob()
	// A multi-byte rune straddles the 300-character mark; truncation must
	// keep whole runes, never split one.
	job.Description = strings.Repeat("x", 299) + strings.Repeat("ó", 50)

	info := formatJobInfo(job)

	assert.True(t, utf8.ValidString(info), "prompt must stay valid UTF-8")
	assert.Contains(t, info, strings.Repeat("x", 299)+"ó...")
	assert.NotContains(t, info, "óó")
}
