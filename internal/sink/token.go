package sink

// TokenStrategy derives the idempotency token submitted with each upsert.
// A token must be a pure function of the external id so that repeated
// submissions of the same record collapse to one write on the sink side,
// across processes and runs.
type TokenStrategy interface {
	Token(externalID string) string
}

// PrefixToken prepends a fixed prefix to the external id.
type PrefixToken struct {
	Prefix string
}

func (t PrefixToken) Token(externalID string) string {
	return t.Prefix + externalID
}

// DefaultTokens is the scheme live runs use.
func DefaultTokens() TokenStrategy {
	return PrefixToken{Prefix: "sync:"}
}
