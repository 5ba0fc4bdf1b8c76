package services

import (
	"context"
	"fmt"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
	"github.com/distillyzer/dz-cli/internal/core/ports/driving"
	"github.com/distillyzer/dz-cli/internal/logger"
)

// Ensure QueryService implements the driving interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions by retrieving relevant chunks,
// assembling a cited context, and calling the synthesis collaborator.
type QueryService struct {
	retriever *Retriever
	assembler *ContextAssembler
	llm       driven.LLMService
}

// NewQueryService creates a query service over the given collaborators.
func NewQueryService(retriever *Retriever, assembler *ContextAssembler, llm driven.LLMService) *QueryService {
	return &QueryService{
		retriever: retriever,
		assembler: assembler,
		llm:       llm,
	}
}

// Ask answers a single stand-alone question.
func (s *QueryService) Ask(ctx context.Context, question string, k int) (*domain.Answer, error) {
	return s.AskInConversation(ctx, question, nil, k)
}

// AskInConversation answers a question with conversational grounding.
// Retrieval failures abort the question; zero retrieved chunks yields
// domain.ErrNoResults rather than an answer synthesised from nothing.
func (s *QueryService) AskInConversation(
	ctx context.Context, question string, history []domain.Turn, k int,
) (*domain.Answer, error) {
	ranked, err := s.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, domain.ErrNoResults
	}

	contextText, citations := s.assembler.Assemble(ranked)
	if grounding := s.assembler.Grounding(history); grounding != "" {
		contextText = grounding + "\n" + contextText
	}

	logger.Stage("Synthesis")
	result, err := s.llm.Complete(ctx, driven.CompletionRequest{
		Context:  contextText,
		Question: question,
		History:  history,
	})
	if err != nil {
		return nil, domain.StageErr(domain.StageSynthesis, fmt.Errorf("completing answer: %w", err))
	}
	logger.Info("Synthesised answer: %d chars, %d tokens", len(result.Text), result.TokensUsed)

	return &domain.Answer{
		Text:       result.Text,
		Citations:  citations,
		TokensUsed: result.TokensUsed,
	}, nil
}
