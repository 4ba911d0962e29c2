package conversation

import (
	"fmt"

	"github.com/chatweet/chatweet/types"
)

// Encoder counts tokens in UTF-8 text for one tokenizer.
type Encoder interface {
	Count(text string) int
}

// EncoderRegistry resolves the tokenizer for a model identifier.
// Unknown identifiers resolve to a default encoder; an error means no
// encoder could be loaded at all.
type EncoderRegistry interface {
	EncoderFor(model string) (Encoder, error)
}

// Framing describes the fixed token overhead a model family's chat format
// adds around message content.
type Framing struct {
	// TokensPerMessage covers the start, role, and end markers of each turn.
	TokensPerMessage int

	// TokensPerName is added for a named turn, whose role marker is omitted.
	TokensPerName int

	// ReplyPriming covers the marker that primes the assistant reply.
	ReplyPriming int
}

// gpt35TurboFraming is the <|im_start|>{role}\n{content}<|im_end|>\n layout.
var gpt35TurboFraming = Framing{
	TokensPerMessage: 4,
	TokensPerName:    -1,
	ReplyPriming:     2,
}

// knownFramings maps model IDs to their message framing. Models absent from
// the map are not estimated.
var knownFramings = map[string]Framing{
	"gpt-3.5-turbo": gpt35TurboFraming,
}

// FramingFor returns the framing of model or an *UnsupportedModelError.
func FramingFor(model string) (Framing, error) {
	if f, ok := knownFramings[model]; ok {
		return f, nil
	}
	return Framing{}, &UnsupportedModelError{Model: model}
}

// Estimate computes the token count of turns under framing f with encoder enc.
// Role and name text are not encoded; see Estimator.EstimateTokens.
func (f Framing) Estimate(enc Encoder, turns []types.Turn) int {
	total := 0
	for _, turn := range turns {
		total += f.TokensPerMessage
		total += enc.Count(turn.Content)
		if turn.Named() {
			total += f.TokensPerName
		}
	}
	return total + f.ReplyPriming
}

// Estimator estimates the token count of a turn sequence for a model.
type Estimator struct {
	registry EncoderRegistry
}

// NewEstimator creates an Estimator that resolves encoders through registry.
func NewEstimator(registry EncoderRegistry) *Estimator {
	return &Estimator{registry: registry}
}

// EstimateTokens returns the number of tokens turns occupy in model's context.
// It fails with an *UnsupportedModelError for models whose framing is unknown
// and never returns a count in that case.
//
// Only turn content is encoded. The role and name text are not counted, so
// the result is about one token per turn lower than encoding every field of
// each turn would give.
func (e *Estimator) EstimateTokens(turns []types.Turn, model string) (int, error) {
	framing, err := FramingFor(model)
	if err != nil {
		return 0, err
	}

	enc, err := e.registry.EncoderFor(model)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrEncoderUnavailable, model, err)
	}

	return framing.Estimate(enc, turns), nil
}
