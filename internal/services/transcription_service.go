package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/husnainkhadir/sop-generator/internal/cache"
	"github.com/husnainkhadir/sop-generator/internal/providers/llm"
	"github.com/husnainkhadir/sop-generator/internal/providers/stt"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

// FinalPassResult holds the full-recording transcription plus its refinement.
type FinalPassResult struct {
	Transcription  string `json:"transcription"`
	RefinedContent string `json:"refined_content"`
}

type TranscriptionService interface {
	// FinalPass transcribes a complete recording and refines the text into
	// step instructions. Transcription failure is fatal; refinement failure
	// falls back to the raw transcription.
	FinalPass(ctx context.Context, audio []byte, language string) (*FinalPassResult, error)
}

type transcriptionService struct {
	stt     stt.Provider
	refiner llm.Refiner
	cache   cache.Cache // nil disables refinement memoization
	log     *logrus.Logger

	refineTTL time.Duration
}

func NewTranscriptionService(sttp stt.Provider, refiner llm.Refiner, c cache.Cache, log *logrus.Logger) TranscriptionService {
	if log == nil {
		log = logrus.New()
	}
	return &transcriptionService{
		stt:       sttp,
		refiner:   refiner,
		cache:     c,
		log:       log,
		refineTTL: 24 * time.Hour,
	}
}

func (s *transcriptionService) FinalPass(ctx context.Context, audio []byte, language string) (*FinalPassResult, error) {
	const op = "TranscriptionService.FinalPass"

	if len(audio) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio is empty", nil)
	}

	text, _, err := s.stt.Transcribe(ctx, audio, language)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "transcription failed", err)
	}

	return &FinalPassResult{
		Transcription:  text,
		RefinedContent: s.refine(ctx, text),
	}, nil
}

// refine is best effort: on any failure the raw text is returned unchanged.
func (s *transcriptionService) refine(ctx context.Context, text string) string {
	if text == "" {
		return text
	}

	key := refineCacheKey(text)
	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			return cached
		}
	}

	refined, err := s.refiner.Refine(ctx, text)
	if err != nil || refined == "" {
		if err != nil {
			s.log.WithError(err).Warn("refinement failed, falling back to raw transcription")
		}
		return text
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, refined, s.refineTTL); err != nil {
			s.log.WithError(err).Debug("refinement cache write failed")
		}
	}
	return refined
}

func refineCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "refine:" + hex.EncodeToString(sum[:])
}
