// Package webhook resolves and executes a workflow's webhook trigger with a
// bounded, deterministic endpoint fallback chain.
package webhook

import "errors"

var (
	// ErrNoTriggerFound is returned when a workflow has no webhook-capable
	// node at all.
	ErrNoTriggerFound = errors.New("no webhook-capable trigger node found")

	// ErrWebhookNotFound is returned when every fallback endpoint variant
	// answered 404.
	ErrWebhookNotFound = errors.New("webhook not registered on any endpoint variant")
)

// IsNoTriggerFound reports whether err means the workflow cannot be webhook
// triggered.
func IsNoTriggerFound(err error) bool {
	return errors.Is(err, ErrNoTriggerFound)
}

// IsWebhookNotFound reports whether err means all fallback attempts 404ed.
func IsWebhookNotFound(err error) bool {
	return errors.Is(err, ErrWebhookNotFound)
}
