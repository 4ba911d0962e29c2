package conversation

import (
	"errors"
	"strings"
	"testing"

	"github.com/chatweet/chatweet/types"
)

// wordEncoder counts whitespace-separated words.
type wordEncoder struct{}

func (wordEncoder) Count(text string) int {
	return len(strings.Fields(text))
}

type staticRegistry struct {
	enc Encoder
	err error
}

func (r staticRegistry) EncoderFor(string) (Encoder, error) {
	return r.enc, r.err
}

func newWordEstimator() *Estimator {
	return NewEstimator(staticRegistry{enc: wordEncoder{}})
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name  string
		turns []types.Turn
		want  int
	}{
		{
			name:  "empty buffer",
			turns: nil,
			want:  2,
		},
		{
			name:  "single system turn",
			turns: []types.Turn{types.SystemTurn("Be terse.")},
			want:  4 + 2 + 2,
		},
		{
			name: "three turns",
			turns: []types.Turn{
				types.SystemTurn("Be terse."),
				types.UserTurn("Hi"),
				types.AssistantTurn("Hello!"),
			},
			want: (4 + 2) + (4 + 1) + (4 + 1) + 2,
		},
		{
			name:  "empty content still framed",
			turns: []types.Turn{types.UserTurn("")},
			want:  4 + 2,
		},
	}

	est := newWordEstimator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := est.EstimateTokens(tt.turns, DefaultModel)
			if err != nil {
				t.Fatalf("EstimateTokens() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EstimateTokens() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens_Deterministic(t *testing.T) {
	est := newWordEstimator()
	turns := []types.Turn{
		types.SystemTurn("You are helpful."),
		types.UserTurn("What is the capital of France?"),
		types.AssistantTurn("Paris."),
	}

	first, err := est.EstimateTokens(turns, DefaultModel)
	if err != nil {
		t.Fatalf("EstimateTokens() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := est.EstimateTokens(turns, DefaultModel)
		if err != nil {
			t.Fatalf("EstimateTokens() error = %v", err)
		}
		if got != first {
			t.Fatalf("call %d: EstimateTokens() = %d, want %d", i, got, first)
		}
	}
}

func TestEstimateTokens_MonotonicUnderAppend(t *testing.T) {
	est := newWordEstimator()
	contents := []string{"one", "two words", "three more words", "x"}

	var turns []types.Turn
	prev, err := est.EstimateTokens(turns, DefaultModel)
	if err != nil {
		t.Fatalf("EstimateTokens() error = %v", err)
	}
	for i, c := range contents {
		turns = append(turns, types.UserTurn(c))
		got, err := est.EstimateTokens(turns, DefaultModel)
		if err != nil {
			t.Fatalf("EstimateTokens() error = %v", err)
		}
		if got <= prev {
			t.Errorf("after append %d: estimate %d not greater than %d", i, got, prev)
		}
		prev = got
	}
}

func TestEstimateTokens_NamedTurn(t *testing.T) {
	est := newWordEstimator()

	plain := types.UserTurn("hello there")
	named := plain
	named.Name = "alice"

	unnamedCount, err := est.EstimateTokens([]types.Turn{plain}, DefaultModel)
	if err != nil {
		t.Fatalf("EstimateTokens() error = %v", err)
	}
	namedCount, err := est.EstimateTokens([]types.Turn{named}, DefaultModel)
	if err != nil {
		t.Fatalf("EstimateTokens() error = %v", err)
	}

	if namedCount != unnamedCount-1 {
		t.Errorf("named estimate = %d, want %d", namedCount, unnamedCount-1)
	}
}

func TestEstimateTokens_IgnoresRoleAndNameText(t *testing.T) {
	est := newWordEstimator()

	tests := []struct {
		name string
		turn types.Turn
		want int
	}{
		{name: "user", turn: types.UserTurn("hello there"), want: 4 + 2 + 2},
		{name: "system", turn: types.SystemTurn("hello there"), want: 4 + 2 + 2},
		{name: "assistant", turn: types.AssistantTurn("hello there"), want: 4 + 2 + 2},
		{name: "long name", turn: types.Turn{Role: types.RoleUser, Content: "hello there", Name: "a very long display name"}, want: 4 + 2 - 1 + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := est.EstimateTokens([]types.Turn{tt.turn}, DefaultModel)
			if err != nil {
				t.Fatalf("EstimateTokens() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EstimateTokens() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens_UnsupportedModel(t *testing.T) {
	est := newWordEstimator()
	turns := []types.Turn{types.UserTurn("hi")}

	for _, model := range []string{"gpt-4", "text-davinci-003", "claude-sonnet-4-5", ""} {
		t.Run(model, func(t *testing.T) {
			got, err := est.EstimateTokens(turns, model)
			if err == nil {
				t.Fatalf("EstimateTokens(%q) = %d, want error", model, got)
			}
			if got != 0 {
				t.Errorf("EstimateTokens(%q) returned count %d alongside error", model, got)
			}

			var unsupported *UnsupportedModelError
			if !errors.As(err, &unsupported) {
				t.Fatalf("error type = %T, want *UnsupportedModelError", err)
			}
			if unsupported.Model != model {
				t.Errorf("Model = %q, want %q", unsupported.Model, model)
			}
			if !errors.Is(err, ErrUnsupportedModel) {
				t.Error("errors.Is(err, ErrUnsupportedModel) = false")
			}
		})
	}
}

func TestEstimateTokens_EncoderUnavailable(t *testing.T) {
	est := NewEstimator(staticRegistry{err: errors.New("download failed")})

	_, err := est.EstimateTokens([]types.Turn{types.UserTurn("hi")}, DefaultModel)
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Fatalf("error = %v, want ErrEncoderUnavailable", err)
	}
	if !strings.Contains(err.Error(), "download failed") {
		t.Errorf("error %q does not carry the cause", err)
	}
}

func TestFramingFor(t *testing.T) {
	f, err := FramingFor("gpt-3.5-turbo")
	if err != nil {
		t.Fatalf("FramingFor() error = %v", err)
	}
	if f.TokensPerMessage != 4 || f.TokensPerName != -1 || f.ReplyPriming != 2 {
		t.Errorf("FramingFor() = %+v, want {4 -1 2}", f)
	}
}
