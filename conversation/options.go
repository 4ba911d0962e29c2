package conversation

// Option is a functional option for configuring a Conversation
type Option func(*Conversation)

// WithLogger sets the logger used for exchange and truncation events
func WithLogger(logger Logger) Option {
	return func(c *Conversation) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRollbackOnError removes the user turn again when the provider call
// fails. Without it the orphaned user turn stays in the buffer.
func WithRollbackOnError() Option {
	return func(c *Conversation) {
		c.rollbackOnError = true
	}
}
