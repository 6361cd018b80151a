package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/bububa/atomic-assistant/schema"
	"github.com/bububa/atomic-assistant/tools"
)

const (
	ToolName        = "web_search"
	ToolDescription = "Search the web for information, news, references and other content. Returns a list of results with a short content snippet and URLs for further exploration."
)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

// Input Schema for input to a tool for searching for information, news, references, and other content using SearxNG.
type Input struct {
	schema.Base
	// Queries list of search queries.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of search queries." validate:"required,min=1,dive,required"`
	// Category: Category of the search queries."
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search queries." validate:"omitempty,oneof=general news social_media"`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

func (s *Input) SetDefaults() {
	if s.Category == EmptyCategory {
		s.Category = GeneralCategory
	}
}

func (s Input) String() string {
	return schema.JSON(s)
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	schema.Base
	// URL The URL of the search result
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result"`
	// Title The title of the search result
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The content snippet of the search result"`
	// Query The query used to obtain this search result
	Query string `json:"query" jsonschema:"title=query,description=The query used to obtain this search result"`
	// Category of the search result
	Category Category `json:"category,omitempty" jsonschema:"title=category"`
	// Metadata is the date metadata of the result if any
	Metadata string `json:"metadata,omitempty" jsonschema:"title=metadata"`
	// PublishedDate of the result if any
	PublishedDate string  `json:"publishedDate,omitempty" jsonschema:"title=publishedDate"`
	Score         float64 `json:"score,omitempty" jsonschema:"title=score"`
}

func (s SearchResultItem) String() string {
	return schema.JSON(s)
}

// SearchResponse represents the entire response from the local search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output represents the output of the SearxNG search tool.
type Output struct {
	schema.Base
	// Results List of search result items
	Results []SearchResultItem `json:"results" jsonschema:"title=results,description=List of search result items"`
	// Category The category of the search results
	Category Category `json:"category,omitempty" jsonschema:"title=category,description=Category of the search results."`
}

func (s Output) String() string {
	return schema.JSON(s)
}

type Config struct {
	language   string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// SearxngSearch performs searches on SearxNG based on the provided queries and category.
type SearxngSearch struct {
	Config
}

func New(opts ...Option) *SearxngSearch {
	ret := new(SearxngSearch)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	ret.baseURL = strings.TrimRight(ret.baseURL, "/")
	return ret
}

// Tool exposes the search as the web_search tool
func (t *SearxngSearch) Tool(opts ...tools.Option) *tools.Func[Input, Output] {
	return tools.NewFunc(ToolName, ToolDescription, t.Run, opts...)
}

// Run runs every query, merges the results, drops incomplete and duplicated ones
// and keeps the best maxResults by score.
func (t *SearxngSearch) Run(ctx context.Context, input *Input) (*Output, error) {
	category := input.Category
	if category == EmptyCategory {
		category = GeneralCategory
	}
	var (
		results []SearchResultItem
		seen    = make(map[string]struct{})
	)
	for _, query := range input.Queries {
		items, err := t.fetchSearchResults(ctx, query, input.Category)
		if err != nil {
			return nil, tools.NewExternalServiceError("search", "query", err)
		}
		for _, item := range items {
			if item.URL == "" || item.Title == "" || item.Content == "" {
				continue
			}
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			results = append(results, item)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > t.maxResults {
		results = results[:t.maxResults]
	}
	if results == nil {
		results = []SearchResultItem{}
	}
	return &Output{
		Results:  results,
		Category: category,
	}, nil
}

// fetchSearchResults queries the local search engine and returns the parsed search response
func (t *SearxngSearch) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	// Encode the query parameter
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("engines", "bing,duckduckgo,google,startpage,yandex")
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying local search engine: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search engine: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
	}

	return searchResponse.Results, nil
}
