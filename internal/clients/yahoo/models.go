package yahoo

import "time"

// NewsItem is a single headline from the Yahoo search endpoint.
type NewsItem struct {
	Headline    string    `json:"headline"`
	Publisher   string    `json:"publisher,omitempty"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}

// AnalystRatings counts analyst opinions in the most recent recommendation period.
// Strong buy is folded into Buy and strong sell into Sell.
type AnalystRatings struct {
	Buy  int `json:"buy"`
	Hold int `json:"hold"`
	Sell int `json:"sell"`
}

// Total returns the number of opinions counted.
func (r AnalystRatings) Total() int {
	return r.Buy + r.Hold + r.Sell
}

// PriceTarget holds the consensus analyst price target.
type PriceTarget struct {
	Symbol         string  `json:"symbol"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	Current        float64 `json:"current"`
	NumAnalysts    int     `json:"numAnalysts"`
	Recommendation string  `json:"recommendation"`
	UpsidePct      float64 `json:"upsidePct"`
}

// Profile describes the security behind a ticker.
type Profile struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Industry  string `json:"industry,omitempty"`
	Country   string `json:"country,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
	QuoteType string `json:"quoteType,omitempty"`
	MarketCap int64  `json:"marketCap,omitempty"`
}

// chartResponse mirrors the v8 chart payload.
// Quote arrays use pointers because Yahoo reports missing bars as null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// searchResponse mirrors the v1 search payload, news section only.
type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}
