package bot

import (
	"context"

	"rainwatch/internal/i18n"
	"rainwatch/internal/types"
)

// Notifier renders and delivers the scan's outbound messages. It is the
// delivery half the alert orchestrator depends on.
type Notifier struct {
	sender Sender
}

// NewNotifier creates a Notifier.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// SendRainAlert delivers an imminent-rain notification in the user's
// language.
func (n *Notifier) SendRainAlert(ctx context.Context, user types.User, alert *types.ImminentAlert) error {
	return n.sender.SendMarkdown(ctx, user.ID, i18n.RainAlert(user.Language, alert))
}

// SendScanSummary delivers the post-scan diagnostic message to the admin.
func (n *Notifier) SendScanSummary(ctx context.Context, adminID int64, summary types.ScanSummary, stats types.UserStats) error {
	return n.sender.SendMarkdown(ctx, adminID, i18n.ScanSummary(summary, stats))
}
