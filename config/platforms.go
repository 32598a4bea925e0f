package config

import (
	"sort"
	"strings"
	"time"

	"pricehound/models"
)

// SelectorSet is one ordered group of field locators tried as a unit against
// a document. Sets are tried in order and the first one whose container
// selector matches at least one node wins outright; sets are never merged.
type SelectorSet struct {
	Container string
	Title     []string
	Price     []string
	Link      []string
	Image     []string
}

// APIConfig describes a platform that exposes a JSON search endpoint instead
// of parseable HTML. Paths are gjson lookup expressions applied per item.
type APIConfig struct {
	SearchURL string // template with {query}
	ItemsPath string
	TitlePath string
	PricePath string
	LinkPath  string
	ImagePath string
}

// PlatformConfig is the static per-platform configuration. The table is
// initialized once and never mutated at request time.
type PlatformConfig struct {
	Key          string
	Name         string
	BaseURL      string
	SearchURL    string // template with {query}
	SelectorSets []SelectorSet
	API          *APIConfig
	RequiresJS   bool
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	Priority     int // lower is submitted first
}

// SearchURLFor substitutes the query into the platform's search template.
func (p PlatformConfig) SearchURLFor(query string) string {
	encoded := strings.ReplaceAll(strings.TrimSpace(query), " ", "+")
	url := p.SearchURL
	if p.API != nil {
		url = p.API.SearchURL
	}
	return strings.ReplaceAll(url, "{query}", encoded)
}

// Platforms is the full platform table, keyed by platform key.
var Platforms = map[string]PlatformConfig{
	"amazon": {
		Key:       "amazon",
		Name:      "Amazon",
		BaseURL:   "https://www.amazon.in",
		SearchURL: "https://www.amazon.in/s?k={query}",
		SelectorSets: []SelectorSet{
			{
				Container: `div[data-component-type="s-search-result"]`,
				Title:     []string{"h2 a span", "h2", "span.a-size-medium"},
				Price:     []string{"span.a-price-whole", "span.a-price", "span.a-offscreen"},
				Link:      []string{"h2 a", "a.a-link-normal"},
				Image:     []string{"img.s-image"},
			},
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 3 * time.Second,
		Priority:     1,
	},
	"flipkart": {
		Key:       "flipkart",
		Name:      "Flipkart",
		BaseURL:   "https://www.flipkart.com",
		SearchURL: "https://www.flipkart.com/search?q={query}",
		SelectorSets: []SelectorSet{
			{
				Container: "div._1AtVbE",
				Title:     []string{"div._4rR01T", "a.s1Q9rs", "div._2WkVRV", "a[title]"},
				Price:     []string{"div._30jeq3", "div._1_WHN1", "div._3I9_wc"},
				Link:      []string{"a._1fQZEK", "a.s1Q9rs"},
				Image:     []string{"img._396cs4", "img"},
			},
			{
				Container: "div[data-id]",
				Title:     []string{"div.KzDlHZ", "a.wjcEIp"},
				Price:     []string{"div.Nx9bqj"},
				Link:      []string{"a.CGtC98", "a.wjcEIp"},
				Image:     []string{"img.DByuf4"},
			},
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 3 * time.Second,
		Priority:     2,
	},
	"swiggy_instamart": {
		Key:       "swiggy_instamart",
		Name:      "Swiggy Instamart",
		BaseURL:   "https://www.swiggy.com",
		SearchURL: "https://www.swiggy.com/instamart/search?query={query}",
		SelectorSets: []SelectorSet{
			{
				Container: "div.sc-jTgLJQ",
				Title:     []string{"div.sc-aXZVg", "div.product-name"},
				Price:     []string{"span.sc-kDDrLX", "span.rupee"},
				Image:     []string{"img.sc-hLQSwg", "img"},
			},
			{
				Container: `div[data-testid="item-card"]`,
				Title:     []string{"div.novMV", "h3"},
				Price:     []string{`div[data-testid="item-offer-price"]`, "span"},
				Image:     []string{"img"},
			},
		},
		RequiresJS:   true,
		RateLimitMin: 2 * time.Second,
		RateLimitMax: 4 * time.Second,
		Priority:     3,
	},
	"blinkit": {
		Key:     "blinkit",
		Name:    "Blinkit",
		BaseURL: "https://blinkit.com",
		// Blinkit answers its own storefront search over a JSON endpoint, so
		// this adapter skips HTML entirely and maps response fields directly.
		API: &APIConfig{
			SearchURL: "https://blinkit.com/v1/layout/search?q={query}",
			ItemsPath: "response.snippets",
			TitlePath: "data.name.text",
			PricePath: "data.normal_price.text",
			LinkPath:  "data.deeplink",
			ImagePath: "data.image.url",
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 2 * time.Second,
		Priority:     4,
	},
	"zepto": {
		Key:       "zepto",
		Name:      "Zepto",
		BaseURL:   "https://www.zp.delivery",
		SearchURL: "https://www.zp.delivery/search?query={query}",
		SelectorSets: []SelectorSet{
			{
				Container: `div[data-testid="product-card"]`,
				Title:     []string{"h3", "p.font-semibold"},
				Price:     []string{"h4", "p.text-gray-900"},
				Image:     []string{"img"},
			},
		},
		RequiresJS:   true,
		RateLimitMin: 2 * time.Second,
		RateLimitMax: 4 * time.Second,
		Priority:     5,
	},
	"bigbasket": {
		Key:       "bigbasket",
		Name:      "BigBasket",
		BaseURL:   "https://www.bigbasket.com",
		SearchURL: "https://www.bigbasket.com/ps/?q={query}",
		SelectorSets: []SelectorSet{
			{
				Container: "div.SKU-Content",
				Title:     []string{"h3.Description___StyledH", "h3"},
				Price:     []string{"div.Pricing___StyledDiv", "span.Pricing"},
				Link:      []string{"a"},
				Image:     []string{"img"},
			},
			{
				Container: "div.item.prod-deck",
				Title:     []string{"a.ng-binding"},
				Price:     []string{"span.discnt-price"},
				Link:      []string{"a"},
				Image:     []string{"img"},
			},
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 3 * time.Second,
		Priority:     6,
	},
	"croma": {
		Key:       "croma",
		Name:      "Croma",
		BaseURL:   "https://www.croma.com",
		SearchURL: "https://www.croma.com/searchB?q={query}",
		SelectorSets: []SelectorSet{
			{
				Container: "li.product-item",
				Title:     []string{"h3.product-title", "a.product-title"},
				Price:     []string{"span.amount", "span.new-price"},
				Link:      []string{"a.product-title", "a"},
				Image:     []string{"img.product-img", "img"},
			},
			{
				Container: "div.product-tile",
				Title:     []string{"h3.product-title"},
				Price:     []string{"span.amount"},
				Link:      []string{"a"},
				Image:     []string{"img"},
			},
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 3 * time.Second,
		Priority:     7,
	},
	"vijay_sales": {
		Key:       "vijay_sales",
		Name:      "Vijay Sales",
		BaseURL:   "https://www.vijaysales.com",
		SearchURL: "https://www.vijaysales.com/search/{query}",
		SelectorSets: []SelectorSet{
			{
				Container: "div.product-thumb",
				Title:     []string{"h2 a", "div.product-name"},
				Price:     []string{"span.price", "div.product-price"},
				Link:      []string{"a"},
				Image:     []string{"img"},
			},
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 3 * time.Second,
		Priority:     8,
	},
	"reliance_digital": {
		Key:       "reliance_digital",
		Name:      "Reliance Digital",
		BaseURL:   "https://www.reliancedigital.in",
		SearchURL: "https://www.reliancedigital.in/search?q={query}",
		SelectorSets: []SelectorSet{
			{
				Container: "div.sp",
				Title:     []string{"p.sp__name", "div.RIL-product-list__product_name"},
				Price:     []string{"span.TextWeb__Text", "span.RIL-product-list__price"},
				Link:      []string{"a"},
				Image:     []string{"img.sp__image", "img"},
			},
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 3 * time.Second,
		Priority:     9,
	},
	"myntra": {
		Key:       "myntra",
		Name:      "Myntra",
		BaseURL:   "https://www.myntra.com",
		SearchURL: "https://www.myntra.com/{query}",
		SelectorSets: []SelectorSet{
			{
				Container: "li.product-base",
				Title:     []string{"h3.product-brand", "h4.product-product"},
				Price:     []string{"span.product-discountedPrice", "div.product-price"},
				Link:      []string{"a"},
				Image:     []string{"img.img-responsive", "img"},
			},
		},
		RateLimitMin: 1 * time.Second,
		RateLimitMax: 3 * time.Second,
		Priority:     10,
	},
}

// CategoryPlatforms maps each category to the platforms worth querying for it.
var CategoryPlatforms = map[models.Category][]string{
	models.CategoryGrocery:     {"amazon", "flipkart", "swiggy_instamart", "blinkit", "zepto", "bigbasket"},
	models.CategoryElectronics: {"amazon", "flipkart", "croma", "vijay_sales", "reliance_digital"},
	models.CategoryFashion:     {"amazon", "flipkart", "myntra"},
	models.CategoryGeneral:     {"amazon", "flipkart"},
}

// CategoryKeywords drives the classifier. Whole-token matches score higher
// than substring matches.
var CategoryKeywords = map[models.Category][]string{
	models.CategoryGrocery: {
		"milk", "bread", "rice", "dal", "atta", "flour", "oil", "ghee",
		"sugar", "salt", "spices", "masala", "tea", "coffee",
		"fruits", "vegetables", "apple", "banana", "orange", "onion", "potato", "tomato",
		"eggs", "butter", "cheese", "paneer", "yogurt", "curd",
		"biscuits", "cookies", "chips", "snacks", "chocolate",
		"grocery", "food", "beverages",
	},
	models.CategoryElectronics: {
		"phone", "mobile", "iphone", "samsung", "oneplus", "laptop", "macbook",
		"tablet", "ipad", "tv", "television", "camera", "headphones", "earphones",
		"watch", "smartwatch", "refrigerator", "washing machine", "ac",
		"playstation", "xbox", "electronics", "gadget",
	},
	models.CategoryFashion: {
		"shirt", "tshirt", "jeans", "pants", "dress", "shoes", "sandals",
		"saree", "kurta", "jacket", "clothing", "fashion", "wear",
	},
}

// CategoryPriority breaks classifier score ties. The order is a deliberate
// product decision: fashion beats electronics beats grocery.
var CategoryPriority = []models.Category{
	models.CategoryFashion,
	models.CategoryElectronics,
	models.CategoryGrocery,
	models.CategoryGeneral,
}

// QueryStopWords are stripped before classification and relevance matching.
var QueryStopWords = map[string]bool{
	"find": true, "search": true, "get": true, "show": true, "tell": true,
	"what": true, "whats": true, "price": true, "cost": true, "cheap": true,
	"cheapest": true, "best": true, "lowest": true, "for": true, "of": true,
	"the": true, "me": true, "a": true, "an": true, "is": true, "are": true,
	"please": true, "can": true, "you": true, "i": true, "want": true,
	"need": true, "looking": true, "buy": true, "purchase": true, "deal": true,
	"on": true,
}

// Get returns the config for a platform key.
func Get(key string) (PlatformConfig, bool) {
	cfg, ok := Platforms[key]
	return cfg, ok
}

// Keys returns all configured platform keys, ordered by priority.
func Keys() []string {
	keys := make([]string, 0, len(Platforms))
	for k := range Platforms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return Platforms[keys[i]].Priority < Platforms[keys[j]].Priority
	})
	return keys
}
