package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// NoDataMessage is the failure reason used when the provider answered but
// carried no quote for the symbol. Distinct from transport errors.
const NoDataMessage = "no data available"

// quoteResponse mirrors the provider's quote payload. Optional fields are
// pointers so an omitted value is distinguishable from zero.
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol              string   `json:"symbol"`
	RegularMarketPrice  *float64 `json:"regularMarketPrice"`
	RegularMarketVolume *float64 `json:"regularMarketVolume"`
	MarketCap           *float64 `json:"marketCap"`
	LongName            *string  `json:"longName"`
	Sector              *string  `json:"sector"`
	Industry            *string  `json:"industry"`
}

// Client fetches current quote bundles from the market data provider.
// One call returns both the price slice and the descriptive metadata so
// the processor never queries the provider twice per event.
type Client struct {
	client *resty.Client
}

// NewClient creates a provider client bounded by the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{client: client}
}

// Fetch retrieves the latest quote for one ticker. Failures are returned as
// data on the FetchResult, never as a Go error: the caller decides what a
// failed fetch means. No retries happen here.
func (c *Client) Fetch(ctx context.Context, ticker string) models.FetchResult {
	var result quoteResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", ticker).
		SetResult(&result).
		Get("/v7/finance/quote")

	if err != nil {
		return failure(ticker, err.Error())
	}
	if !resp.IsSuccess() {
		return failure(ticker, fmt.Sprintf("provider returned status %d", resp.StatusCode()))
	}
	if e := result.QuoteResponse.Error; e != nil {
		return failure(ticker, fmt.Sprintf("provider error %s: %s", e.Code, e.Description))
	}
	if len(result.QuoteResponse.Result) == 0 {
		return failure(ticker, NoDataMessage)
	}

	quote := result.QuoteResponse.Result[0]
	if quote.RegularMarketPrice == nil {
		return failure(ticker, NoDataMessage)
	}

	return models.FetchResult{
		Ticker:    ticker,
		Price:     decimal.NewFromFloat(*quote.RegularMarketPrice),
		Volume:    optionalDecimal(quote.RegularMarketVolume),
		MarketCap: optionalDecimal(quote.MarketCap),
		Info: models.ProviderInfo{
			CompanyName: quote.LongName,
			Sector:      quote.Sector,
			Industry:    quote.Industry,
		},
		Success: true,
	}
}

func failure(ticker, reason string) models.FetchResult {
	return models.FetchResult{
		Ticker:       ticker,
		Success:      false,
		ErrorMessage: reason,
	}
}

func optionalDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
}
