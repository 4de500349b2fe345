package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/internal/profile"
	"github.com/wonny/aegis-ideas/pkg/logger"
)

// Generator runs one idea generation request
type Generator interface {
	GenerateInvestmentIdeas(ctx context.Context, req *contracts.GenerationRequest) (*contracts.IdeaGenerationResult, error)
}

// ResultSaver keeps finished results for the API
type ResultSaver interface {
	SaveResult(ctx context.Context, result *contracts.IdeaGenerationResult) error
	SaveProfileRun(ctx context.Context, profileID string, result *contracts.IdeaGenerationResult) error
}

// GenerationJob runs a generation profile on its schedule
type GenerationJob struct {
	profile   *profile.Profile
	generator Generator
	results   ResultSaver
	logger    *logger.Logger
}

// NewGenerationJob creates a job for one profile
func NewGenerationJob(p *profile.Profile, generator Generator, results ResultSaver, log *logger.Logger) *GenerationJob {
	return &GenerationJob{
		profile:   p,
		generator: generator,
		results:   results,
		logger:    log.WithField("profile", p.Meta.ProfileID),
	}
}

// Name returns the job name
func (j *GenerationJob) Name() string {
	return "generate:" + j.profile.Meta.ProfileID
}

// Schedule returns the profile's cron schedule
func (j *GenerationJob) Schedule() string {
	return j.profile.Meta.Schedule
}

// Run generates ideas for the profile and stores the result.
// A failed run is stored too so its steps stay inspectable.
func (j *GenerationJob) Run(ctx context.Context) error {
	requestID := fmt.Sprintf("%s-%s", j.profile.Meta.ProfileID, uuid.NewString())
	j.logger.WithField("request_id", requestID).Info("Starting scheduled generation")

	result, err := j.generator.GenerateInvestmentIdeas(ctx, j.profile.Request(requestID))
	if result != nil {
		j.save(ctx, result)
	}
	if err != nil {
		return fmt.Errorf("generate %s: %w", j.profile.Meta.ProfileID, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"request_id":      requestID,
		"ideas":           len(result.Ideas),
		"ideas_generated": result.Metadata.TotalIdeasGenerated,
		"duration_ms":     result.ProcessingMetrics.TotalProcessingTimeMs,
	}).Info("Scheduled generation completed")

	return nil
}

func (j *GenerationJob) save(ctx context.Context, result *contracts.IdeaGenerationResult) {
	if err := j.results.SaveResult(ctx, result); err != nil {
		j.logger.WithError(err).Warn("Failed to store result")
	}
	if err := j.results.SaveProfileRun(ctx, j.profile.Meta.ProfileID, result); err != nil {
		j.logger.WithError(err).Warn("Failed to store profile run")
	}
}
