package consult

import (
	"errors"
	"strings"
)

// Validate checks that a ChatRequest carries a usable message.
// Whitespace-only content is rejected the same as an absent field.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return errors.New("message is required")
	}
	return nil
}

// Validate checks that an ExtractRequest carries both a draft and a schema.
func (r *ExtractRequest) Validate() error {
	if strings.TrimSpace(r.Draft) == "" {
		return errors.New("draft is required")
	}
	if strings.TrimSpace(r.Schema) == "" {
		return errors.New("schema is required")
	}
	return nil
}
