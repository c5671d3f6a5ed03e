package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dailymcp/daily/internal/log"
)

const (
	alphaVantageURL = "https://www.alphavantage.co/query"
	coinGeckoURL    = "https://api.coingecko.com/api/v3/simple/price"
)

// cryptoIDs maps ticker symbols to CoinGecko asset ids. Symbols in this map
// are classified as crypto unless the caller forces data_type=stocks.
var cryptoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"ADA":  "cardano",
	"SOL":  "solana",
	"DOGE": "dogecoin",
	"LTC":  "litecoin",
	"XRP":  "ripple",
	"DOT":  "polkadot",
	"LINK": "chainlink",
	"UNI":  "uniswap",
}

var cryptoNames = map[string]string{
	"BTC":  "Bitcoin",
	"ETH":  "Ethereum",
	"ADA":  "Cardano",
	"SOL":  "Solana",
	"DOGE": "Dogecoin",
	"LTC":  "Litecoin",
	"XRP":  "XRP",
	"DOT":  "Polkadot",
	"LINK": "Chainlink",
	"UNI":  "Uniswap",
}

var companyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"GOOGL": "Alphabet Inc.",
	"AMZN":  "Amazon.com Inc.",
	"NVDA":  "NVIDIA Corporation",
	"META":  "Meta Platforms Inc.",
	"TSLA":  "Tesla Inc.",
}

// FinanceAdapter fetches stock quotes from Alpha Vantage (one GLOBAL_QUOTE
// call per symbol) and crypto prices from CoinGecko (one batched call).
type FinanceAdapter struct {
	avKey  string
	client *http.Client
	logger log.Logger
	now    func() time.Time

	// Overridable in tests.
	avURL string
	cgURL string
}

// NewFinanceAdapter creates the live finance adapter.
func NewFinanceAdapter(alphaVantageKey string, client *http.Client, logger log.Logger) *FinanceAdapter {
	if client == nil {
		client = NewHTTPClient()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &FinanceAdapter{
		avKey:  alphaVantageKey,
		client: client,
		logger: logger,
		now:    time.Now,
		avURL:  alphaVantageURL,
		cgURL:  coinGeckoURL,
	}
}

type globalQuoteResponse struct {
	Quote map[string]string `json:"Global Quote"`
	Note  string            `json:"Note"`
}

// Fetch splits symbols into stock and crypto groups and queries each source.
func (a *FinanceAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[FinanceInput](input)
	if err != nil {
		return nil, err
	}

	stocks, crypto := splitSymbols(in.Symbols, in.DataType)

	var items []FinanceItem
	for _, symbol := range stocks {
		item, err := a.fetchStock(ctx, symbol)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(crypto) > 0 {
		cryptoItems, err := a.fetchCrypto(ctx, crypto)
		if err != nil {
			return nil, err
		}
		items = append(items, cryptoItems...)
	}

	return financeOutput(items, a.now()), nil
}

func (a *FinanceAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(FinanceOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	if out.Data == nil {
		out.Data = []FinanceItem{}
	}
	return encodeOutput(out)
}

func (a *FinanceAdapter) fetchStock(ctx context.Context, symbol string) (FinanceItem, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", a.avKey)

	var resp globalQuoteResponse
	if err := getJSON(ctx, a.client, a.avURL, params, &resp); err != nil {
		return FinanceItem{}, fmt.Errorf("fetching quote for %s: %w", symbol, err)
	}
	// Alpha Vantage reports quota exhaustion as 200 OK with a Note.
	if resp.Note != "" {
		return FinanceItem{}, fmt.Errorf("quote source rate limit reached for %s", symbol)
	}
	if len(resp.Quote) == 0 {
		return FinanceItem{}, fmt.Errorf("no quote data for symbol %q", symbol)
	}

	price, err := strconv.ParseFloat(resp.Quote["05. price"], 64)
	if err != nil {
		return FinanceItem{}, fmt.Errorf("parsing price for %s: %w", symbol, err)
	}
	change, _ := strconv.ParseFloat(resp.Quote["09. change"], 64)
	pctStr := strings.TrimSuffix(resp.Quote["10. change percent"], "%")
	pct, _ := strconv.ParseFloat(pctStr, 64)

	name := resp.Quote["01. symbol"]
	if full, ok := companyNames[name]; ok {
		name = full
	}

	return FinanceItem{
		Symbol:        resp.Quote["01. symbol"],
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
		Currency:      "USD",
		DataType:      "stocks",
		LastUpdated:   a.now().UTC().Format(time.RFC3339),
	}, nil
}

func (a *FinanceAdapter) fetchCrypto(ctx context.Context, symbols []string) ([]FinanceItem, error) {
	ids := make([]string, 0, len(symbols))
	for _, s := range symbols {
		id, ok := cryptoIDs[s]
		if !ok {
			return nil, fmt.Errorf("unsupported crypto symbol %q", s)
		}
		ids = append(ids, id)
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	var resp map[string]struct {
		USD       float64 `json:"usd"`
		USDChange float64 `json:"usd_24h_change"`
	}
	if err := getJSON(ctx, a.client, a.cgURL, params, &resp); err != nil {
		return nil, fmt.Errorf("fetching crypto prices: %w", err)
	}

	items := make([]FinanceItem, 0, len(symbols))
	now := a.now().UTC().Format(time.RFC3339)
	for _, s := range symbols {
		quote, ok := resp[cryptoIDs[s]]
		if !ok {
			return nil, fmt.Errorf("no price data for crypto symbol %q", s)
		}
		// The API reports percent change; derive the absolute move from it.
		change := quote.USD * quote.USDChange / (100 + quote.USDChange)
		items = append(items, FinanceItem{
			Symbol:        s,
			Name:          cryptoNames[s],
			Price:         quote.USD,
			Change:        round2(change),
			ChangePercent: round2(quote.USDChange),
			Currency:      "USD",
			DataType:      "crypto",
			LastUpdated:   now,
		})
	}
	return items, nil
}

// MockFinanceAdapter synthesizes deterministic quotes from symbol hashes.
type MockFinanceAdapter struct {
	now func() time.Time
}

// NewMockFinanceAdapter creates the offline finance adapter.
func NewMockFinanceAdapter() *MockFinanceAdapter {
	return &MockFinanceAdapter{now: time.Now}
}

func (a *MockFinanceAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[FinanceInput](input)
	if err != nil {
		return nil, err
	}

	stocks, crypto := splitSymbols(in.Symbols, in.DataType)
	now := a.now().UTC().Format(time.RFC3339)

	var items []FinanceItem
	for _, s := range stocks {
		h := seed("finance", "stock", s)
		price := 20 + float64(h%48000)/100 // 20.00 .. 499.99
		pct := float64(int64(h>>16)%1001-500) / 100
		name := s
		if full, ok := companyNames[s]; ok {
			name = full
		}
		items = append(items, FinanceItem{
			Symbol:        s,
			Name:          name,
			Price:         round2(price),
			Change:        round2(price * pct / 100),
			ChangePercent: pct,
			Currency:      "USD",
			DataType:      "stocks",
			LastUpdated:   now,
		})
	}
	for _, s := range crypto {
		h := seed("finance", "crypto", s)
		price := 0.5 + float64(h%9000000)/100 // wide range, crypto-style
		pct := float64(int64(h>>20)%2001-1000) / 100
		name := s
		if full, ok := cryptoNames[s]; ok {
			name = full
		}
		items = append(items, FinanceItem{
			Symbol:        s,
			Name:          name,
			Price:         round2(price),
			Change:        round2(price * pct / 100),
			ChangePercent: pct,
			Currency:      "USD",
			DataType:      "crypto",
			LastUpdated:   now,
		})
	}

	return financeOutput(items, a.now()), nil
}

func (a *MockFinanceAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(FinanceOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	if out.Data == nil {
		out.Data = []FinanceItem{}
	}
	return encodeOutput(out)
}

// splitSymbols classifies symbols as stocks or crypto. data_type=crypto or
// data_type=stocks forces everything to one side; mixed classifies per
// symbol against the known crypto set. Duplicates are collapsed.
func splitSymbols(symbols []string, dataType string) (stocks, crypto []string) {
	seen := make(map[string]bool)
	for _, raw := range symbols {
		s := strings.ToUpper(strings.TrimSpace(raw))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true

		_, isCrypto := cryptoIDs[s]
		switch {
		case dataType == "crypto", dataType == "mixed" && isCrypto:
			crypto = append(crypto, s)
		default:
			stocks = append(stocks, s)
		}
	}
	sort.Strings(stocks)
	sort.Strings(crypto)
	return stocks, crypto
}

func financeOutput(items []FinanceItem, now time.Time) FinanceOutput {
	return FinanceOutput{
		RequestTime:  now.UTC().Format(time.RFC3339),
		TotalItems:   len(items),
		MarketStatus: marketStatus(items, now),
		Data:         items,
		Summary:      financeSummary(items),
	}
}

// marketStatus reports "open" for crypto-only requests (crypto never
// closes), exchange hours for stock-only requests, and "mixed" otherwise.
func marketStatus(items []FinanceItem, now time.Time) string {
	var hasStocks, hasCrypto bool
	for _, item := range items {
		switch item.DataType {
		case "stocks":
			hasStocks = true
		case "crypto":
			hasCrypto = true
		}
	}
	switch {
	case hasStocks && hasCrypto:
		return "mixed"
	case hasCrypto:
		return "open"
	case hasStocks:
		if stockMarketOpen(now) {
			return "open"
		}
		return "closed"
	default:
		return "closed"
	}
}

// stockMarketOpen approximates NYSE hours (9:30-16:00 ET) in UTC. Good
// enough for a status label; off by an hour around DST transitions.
func stockMarketOpen(now time.Time) bool {
	utc := now.UTC()
	if wd := utc.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	minutes := utc.Hour()*60 + utc.Minute()
	return minutes >= 13*60+30 && minutes < 20*60
}

func financeSummary(items []FinanceItem) string {
	if len(items) == 0 {
		return "No quotes returned"
	}
	gaining := 0
	for _, item := range items {
		if item.ChangePercent >= 0 {
			gaining++
		}
	}
	return fmt.Sprintf("%d of %d symbols gaining", gaining, len(items))
}

func round2(v float64) float64 {
	return round1(v*10) / 10
}
