package services

import (
	"context"
	"fmt"
	"strings"

	"shop-bot/models"
)

// The intent dispatcher is a rule table, not a model. Rule order is a
// designed priority: the first matching keyword group wins, so reordering
// the table changes behavior.

// Button is a quick-reply action attached to a bot reply.
type Button struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// Reply is one bot response: text plus optional product cards and buttons.
type Reply struct {
	Text     string           `json:"text"`
	Buttons  []Button         `json:"buttons,omitempty"`
	Products []models.Product `json:"products,omitempty"`
}

// IntentDeps are the data hooks a rule handler may use. Injected so every
// rule is unit-testable without a database.
type IntentDeps struct {
	Search   ProductSearch
	Cheapest ProductSearch
}

// IntentRule pairs a keyword matcher with a handler.
type IntentRule struct {
	Name     string
	Keywords []string
	Handle   func(ctx context.Context, message string, deps IntentDeps) (Reply, error)
}

const intentProductLimit = 5

// Keyword groups carry both the Vietnamese forms customers actually type and
// their English equivalents. Kept as separate variables so rule handlers can
// strip their own keywords from the message when extracting a search term.
var (
	searchKeywords   = []string{"tìm", "tim kiem", "search", "find", "looking for", "có bán"}
	stockKeywords    = []string{"còn hàng", "con hang", "còn không", "in stock", "stock", "available"}
	orderKeywords    = []string{"đặt hàng", "dat hang", "đặt mua", "order", "mua"}
	priceKeywords    = []string{"giá", "gia bao nhieu", "bao nhiêu", "price", "how much"}
	deliveryKeywords = []string{"giao hàng", "giao hang", "ship", "delivery", "vận chuyển"}
	paymentKeywords  = []string{"thanh toán", "thanh toan", "chuyển khoản", "payment", "pay"}
	cheaperKeywords  = []string{"rẻ hơn", "re hon", "cheaper", "giá rẻ", "gia re"}
	greetingKeywords = []string{"xin chào", "chào", "hello", "hi", "hey", "alo"}
)

// IntentRules is the ordered rule table.
var IntentRules = []IntentRule{
	{Name: "search", Keywords: searchKeywords, Handle: handleSearchIntent},
	{Name: "stock", Keywords: stockKeywords, Handle: handleStockIntent},
	{Name: "order", Keywords: orderKeywords, Handle: handleOrderIntent},
	{Name: "price", Keywords: priceKeywords, Handle: handlePriceIntent},
	{Name: "delivery", Keywords: deliveryKeywords, Handle: handleDeliveryIntent},
	{Name: "payment", Keywords: paymentKeywords, Handle: handlePaymentIntent},
	{Name: "cheaper", Keywords: cheaperKeywords, Handle: handleCheaperIntent},
	{Name: "greeting", Keywords: greetingKeywords, Handle: handleGreetingIntent},
}

// ClassifyIntent lower-cases the message and returns the first rule whose
// keyword group matches, or nil when nothing matches.
func ClassifyIntent(message string) *IntentRule {
	lowered := strings.ToLower(message)
	tokens := tokenize(lowered)

	for i := range IntentRules {
		rule := &IntentRules[i]
		for _, keyword := range rule.Keywords {
			if keywordMatches(lowered, tokens, keyword) {
				return rule
			}
		}
	}
	return nil
}

// DispatchIntent classifies the message and runs the matched handler. An
// unmatched message falls through to a fixed set of suggested actions.
func DispatchIntent(ctx context.Context, message string, deps IntentDeps) (string, Reply, error) {
	rule := ClassifyIntent(message)
	if rule == nil {
		return "fallback", fallbackReply(), nil
	}

	reply, err := rule.Handle(ctx, message, deps)
	if err != nil {
		return rule.Name, Reply{}, err
	}
	return rule.Name, reply, nil
}

// keywordMatches tests one keyword against the message. Multi-word keywords
// match as substrings; short single tokens must match a whole token so that
// e.g. "hi" does not fire inside "ship".
func keywordMatches(lowered string, tokens []string, keyword string) bool {
	if strings.ContainsRune(keyword, ' ') || len([]rune(keyword)) >= 4 {
		return strings.Contains(lowered, keyword)
	}
	for _, token := range tokens {
		if token == keyword {
			return true
		}
	}
	return false
}

func tokenize(lowered string) []string {
	return strings.FieldsFunc(lowered, func(r rune) bool {
		switch r {
		case ' ', ',', '.', '!', '?', ':', ';', '\n', '\t':
			return true
		}
		return false
	})
}

// extractTerm strips the matched keywords and filler words from the message
// to leave the product search term.
func extractTerm(message string, keywords []string) string {
	lowered := strings.ToLower(message)
	for _, keyword := range keywords {
		lowered = strings.ReplaceAll(lowered, keyword, " ")
	}
	for _, filler := range []string{"cho tôi", "cho toi", "không", "khong", "shop ơi", "please", "do you have", "for"} {
		lowered = strings.ReplaceAll(lowered, filler, " ")
	}
	return strings.Join(strings.Fields(lowered), " ")
}

func handleSearchIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	term := extractTerm(message, searchKeywords)
	if term == "" {
		return Reply{Text: "What product are you looking for?"}, nil
	}

	products, err := deps.Search(ctx, term, intentProductLimit)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		return Reply{Text: fmt.Sprintf("Sorry, we couldn't find anything matching %q.", term)}, nil
	}

	return Reply{
		Text:     fmt.Sprintf("We found %d product(s) matching %q:", len(products), term),
		Products: products,
		Buttons:  orderButtons(products),
	}, nil
}

func handleStockIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	term := extractTerm(message, stockKeywords)
	if term == "" {
		return Reply{Text: "Which product would you like to check stock for?"}, nil
	}

	products, err := deps.Search(ctx, term, intentProductLimit)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		return Reply{Text: fmt.Sprintf("Sorry, we couldn't find anything matching %q.", term)}, nil
	}

	var b strings.Builder
	for _, product := range products {
		if product.Stock > 0 {
			fmt.Fprintf(&b, "%s: %g in stock\n", product.Name, product.Stock)
		} else {
			fmt.Fprintf(&b, "%s: out of stock\n", product.Name)
		}
	}
	return Reply{Text: strings.TrimSpace(b.String()), Products: products}, nil
}

func handleOrderIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	term := extractTerm(message, orderKeywords)
	if term != "" {
		products, err := deps.Search(ctx, term, intentProductLimit)
		if err != nil {
			return Reply{}, err
		}
		if len(products) > 0 {
			return Reply{
				Text:     "Great! Pick a product below and tell us the quantity, your name and phone number to place the order.",
				Products: products,
				Buttons:  orderButtons(products),
			}, nil
		}
	}
	return Reply{
		Text: "To place an order, tell us the product, quantity, your name and phone number.",
	}, nil
}

func handlePriceIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	term := extractTerm(message, priceKeywords)
	if term == "" {
		return Reply{Text: "Which product would you like a price for?"}, nil
	}

	products, err := deps.Search(ctx, term, intentProductLimit)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		return Reply{Text: fmt.Sprintf("Sorry, we couldn't find anything matching %q.", term)}, nil
	}

	var b strings.Builder
	for _, product := range products {
		fmt.Fprintf(&b, "%s: %.2f\n", product.Name, product.Price)
	}
	return Reply{Text: strings.TrimSpace(b.String()), Products: products}, nil
}

func handleDeliveryIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	return Reply{
		Text: "We deliver nationwide. Inner-city orders arrive within 24 hours; other provinces take 2-4 days. Shipping is free for orders over 500,000.",
	}, nil
}

func handlePaymentIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	return Reply{
		Text: "We accept cash on delivery and bank transfer. For transfers, your order number is the payment reference.",
	}, nil
}

func handleCheaperIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	term := extractTerm(message, cheaperKeywords)

	products, err := deps.Cheapest(ctx, term, intentProductLimit)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		return Reply{Text: "Sorry, we couldn't find a cheaper alternative right now."}, nil
	}

	return Reply{
		Text:     "Here are our most affordable options:",
		Products: products,
		Buttons:  orderButtons(products),
	}, nil
}

func handleGreetingIntent(ctx context.Context, message string, deps IntentDeps) (Reply, error) {
	return Reply{
		Text: "Hello! Welcome to our shop. You can search for products, check prices and stock, or place an order right here.",
		Buttons: []Button{
			{Title: "Search products", Payload: "search"},
			{Title: "Check prices", Payload: "price"},
			{Title: "Place an order", Payload: "order"},
		},
	}, nil
}

func fallbackReply() Reply {
	return Reply{
		Text: "Sorry, I didn't catch that. Here's what I can help with:",
		Buttons: []Button{
			{Title: "Search products", Payload: "search"},
			{Title: "Check stock", Payload: "stock"},
			{Title: "Check prices", Payload: "price"},
			{Title: "Place an order", Payload: "order"},
		},
	}
}

func orderButtons(products []models.Product) []Button {
	buttons := make([]Button, 0, len(products))
	for _, product := range products {
		buttons = append(buttons, Button{
			Title:   "Order " + product.Name,
			Payload: "order:" + product.ID.Hex(),
		})
	}
	return buttons
}
