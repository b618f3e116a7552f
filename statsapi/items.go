package statsapi

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strings"
)

// HighAlchemyMultiplier converts an item's store price to its high alchemy
// value.
const HighAlchemyMultiplier = 0.6

// ItemPrice is one item search result.
type ItemPrice struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	StorePrice int    `json:"storePrice"`
}

// HighAlchemy returns the rounded high alchemy value of the item.
func (i ItemPrice) HighAlchemy() int {
	return int(math.Round(float64(i.StorePrice) * HighAlchemyMultiplier))
}

// ItemClient searches item prices.
type ItemClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Search returns every item whose name matches query.
func (c *ItemClient) Search(ctx context.Context, query string) ([]ItemPrice, error) {
	hc := http.DefaultClient
	if c.HTTPClient != nil {
		hc = c.HTTPClient
	}
	base := DefaultBaseURL
	if c.BaseURL != "" {
		base = strings.TrimRight(c.BaseURL, "/")
	}
	var out []ItemPrice
	if err := do(ctx, hc, http.MethodGet, base+"/item/search", "item_search", url.Values{"query": {query}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BestMatch returns the item whose name equals query ignoring case, or else
// the item with the shortest name. It reports false for an empty list.
func BestMatch(items []ItemPrice, query string) (ItemPrice, bool) {
	var (
		shortest ItemPrice
		found    bool
	)
	for _, it := range items {
		if strings.EqualFold(it.Name, query) {
			return it, true
		}
		if !found || len(it.Name) < len(shortest.Name) {
			shortest, found = it, true
		}
	}
	return shortest, found
}
