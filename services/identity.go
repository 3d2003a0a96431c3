package services

import (
	"context"
	"log/slog"
	"strings"

	"shop-bot/models"
)

// IdentityHints carries every field a bot request may use to point at the
// customer's messaging-platform identity. Callers rarely fill more than one.
type IdentityHints struct {
	PlatformID string                 // explicit field
	Context    map[string]interface{} // nested profile object, looks for context["profile"]["id"]
	SessionID  string                 // conversation session id
	SenderID   string                 // alternate field name used by older bot versions
	Label      string                 // display label for the linked identity
}

// IsValidPlatformID is the shape filter for platform identities: a numeric
// string of 13 to 20 digits. Candidates failing it are never trusted.
func IsValidPlatformID(id string) bool {
	if len(id) < 13 || len(id) > 20 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Conversation access during resolution goes through the same swappable
// indirection as the customer store.
var (
	conversationBySession    = GetConversationBySession
	conversationsForCustomer = ConversationsByCustomer
	recentConversationScan   = RecentConversations
	linkConversation         = LinkConversationCustomer
)

// hintExtractors are tried in order; the first candidate that is non-empty
// and passes the shape filter wins. The order is part of the contract, not
// cosmetic: an explicit id always beats a session id.
var hintExtractors = []func(IdentityHints) string{
	func(h IdentityHints) string { return h.PlatformID },
	func(h IdentityHints) string {
		profile, ok := h.Context["profile"].(map[string]interface{})
		if !ok {
			return ""
		}
		id, _ := profile["id"].(string)
		return id
	},
	func(h IdentityHints) string { return h.SessionID },
	func(h IdentityHints) string { return h.SenderID },
}

// ExtractPlatformID runs the hint extractors in priority order and returns
// the first shape-valid candidate, or "" when no hint survives the filter.
func ExtractPlatformID(hints IdentityHints) string {
	for _, extract := range hintExtractors {
		candidate := strings.TrimSpace(extract(hints))
		if candidate != "" && IsValidPlatformID(candidate) {
			return candidate
		}
	}
	return ""
}

// ResolvedIdentity is the output of customer resolution: the customer record
// and, when one could be determined, the platform identity that should
// receive the invoice.
type ResolvedIdentity struct {
	Customer   *models.Customer
	PlatformID string
}

// ResolveCustomer finds or creates exactly one customer for the normalized
// phone and links any newly observed platform identity to it. Idempotent:
// the same phone never produces two customers, and the same identity value
// never produces two map entries.
func ResolveCustomer(ctx context.Context, phone, name string, hints IdentityHints) (*ResolvedIdentity, error) {
	customer, err := GetCustomerByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		customer, err = CreateCustomer(ctx, name, phone)
		if err != nil {
			return nil, err
		}
	}

	// Tie the session's conversation record to the customer so that later
	// resolutions without hints can recover the platform id from the
	// customer's own conversations.
	if hints.SessionID != "" {
		linkSessionConversation(ctx, customer, hints.SessionID)
	}

	platformID := ExtractPlatformID(hints)
	if platformID != "" {
		if _, err := LinkPlatformIdentity(ctx, customer, platformID, hints.Label); err != nil {
			return nil, err
		}
		return &ResolvedIdentity{Customer: customer, PlatformID: platformID}, nil
	}

	// No hint supplied or none survived the shape filter: fall back to
	// passive discovery in stored conversation records. A failure here
	// degrades to "no identity" rather than failing the order.
	platformID = discoverPlatformID(ctx, customer, hints.SessionID)
	if platformID != "" {
		if _, err := LinkPlatformIdentity(ctx, customer, platformID, hints.Label); err != nil {
			slog.Warn("Failed to link passively discovered identity",
				"customerID", customer.ID.Hex(), "error", err)
			platformID = ""
		}
	}

	return &ResolvedIdentity{Customer: customer, PlatformID: platformID}, nil
}

// linkSessionConversation stamps the resolved customer onto the session's
// conversation. Best effort: a failure here never fails the order.
func linkSessionConversation(ctx context.Context, customer *models.Customer, sessionID string) {
	conversation, err := conversationBySession(ctx, sessionID)
	if err != nil {
		slog.Warn("Conversation lookup failed during resolution", "sessionID", sessionID, "error", err)
		return
	}
	if conversation == nil {
		return
	}
	if conversation.CustomerID != nil && *conversation.CustomerID == customer.ID {
		return
	}
	if err := linkConversation(ctx, conversation.ID, customer.ID); err != nil {
		slog.Warn("Failed to link conversation to customer",
			"conversationID", conversation.ID.Hex(),
			"customerID", customer.ID.Hex(),
			"error", err)
	}
}

// discoverPlatformID scans stored conversations for a shape-valid platform
// id belonging to the customer. Best effort only.
func discoverPlatformID(ctx context.Context, customer *models.Customer, sessionID string) string {
	// Some channels use the platform user id as the session id directly.
	if sessionID != "" && IsValidPlatformID(sessionID) {
		return sessionID
	}

	// The customer's own linked conversations may carry a usable session id.
	conversations, err := conversationsForCustomer(ctx, customer.ID)
	if err != nil {
		slog.Warn("Passive identity discovery failed", "customerID", customer.ID.Hex(), "error", err)
		return ""
	}
	for _, conversation := range conversations {
		if IsValidPlatformID(conversation.SessionID) {
			return conversation.SessionID
		}
	}

	// Last resort: recent inbound conversations whose sender name fuzzily
	// matches the customer.
	recent, err := recentConversationScan(ctx, 50)
	if err != nil {
		slog.Warn("Passive identity discovery failed", "customerID", customer.ID.Hex(), "error", err)
		return ""
	}
	for _, conversation := range recent {
		if !nameMatches(conversation.SenderName, customer.Name) {
			continue
		}
		if IsValidPlatformID(conversation.SessionID) {
			return conversation.SessionID
		}
	}

	return ""
}

// nameMatches is a loose display-name comparison: case-insensitive, and one
// side containing the other counts as a match.
func nameMatches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
