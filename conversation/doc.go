// Package conversation keeps the turn buffer of a chat session and decides
// when it must be trimmed to stay inside a model's context budget.
//
// # Buffer
//
// A [Conversation] starts with a single system turn. It is mutated only by
// [Conversation.Submit], which appends the user turn, asks the completion
// provider for a reply, appends the assistant turn, and then re-estimates the
// token count of the whole buffer:
//
//	conv, err := conversation.New(conversation.Config{
//	    SystemPrompt: "Be terse.",
//	}, completer, estimator)
//	if err != nil {
//	    return err
//	}
//	exchange, err := conv.Submit(ctx, "Hi")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(exchange.Reply, exchange.Tokens)
//
// # Token Accounting
//
// [Estimator] counts tokens with a model-specific encoder and adds the
// message framing overhead of the model family. Only the gpt-3.5-turbo
// framing is known; other models fail with [ErrUnsupportedModel] rather than
// returning a wrong number.
//
// # Truncation
//
// When the estimate after an exchange exceeds [DefaultThreshold], the first
// two turns of the buffer are dropped. The trim runs once per exchange and
// does not special-case the system turn. [Truncator] exposes opt-in variants
// that repeat until under budget or keep a leading system turn.
//
// # Concurrency
//
// A Conversation is driven by one goroutine with one exchange in flight.
// It is not safe for concurrent use; give every session its own buffer.
package conversation
