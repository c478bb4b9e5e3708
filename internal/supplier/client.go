package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stocksync_api/config/values"
	"stocksync_api/metrics"
	"stocksync_api/pkg/jsondoc"
	"stocksync_api/pkg/logger"
)

// Client talks to the supplier API: one auth call per run, then batched and
// paginated product fetches. The http.Client is shared across the whole run
// and injected by the caller.
type Client struct {
	authURL     string
	productsURL string
	email       string
	password    string

	httpClient *http.Client
	limiter    *rate.Limiter
	chunkLimit int
	pageSize   int
	runMetrics *metrics.UpdateMetrics
	log        logger.Logger
}

func NewClient(authURL, productsURL, email, password string, httpClient *http.Client,
	vals values.SyncValues, runMetrics *metrics.UpdateMetrics, log logger.Logger) *Client {
	return &Client{
		authURL:     authURL,
		productsURL: productsURL,
		email:       email,
		password:    password,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(vals.FetchRateLimit), vals.FetchRateLimit),
		chunkLimit:  vals.SkuChunkLimit,
		pageSize:    vals.PageSize,
		runMetrics:  runMetrics,
		log:         log,
	}
}

// Authenticate exchanges the configured credentials for a bearer token. Any
// failure here is fatal for the run.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.email == "" || c.password == "" {
		return "", fmt.Errorf("supplier credentials are not set")
	}

	requestBody, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordRequest("supplier", "auth", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authentication failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	doc, err := jsondoc.Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse auth response: %w", err)
	}
	token := doc.OptString("token", "")
	if token == "" {
		return "", fmt.Errorf("auth response carried no token")
	}
	return token, nil
}

// FetchStock retrieves stock records for every requested SKU, chunked to the
// API's per-request SKU limit and paged per chunk. Parsed records stream
// into accept; page and chunk failures go to diag and never abort the other
// chunks. Only context cancellation stops the whole fetch.
func (c *Client) FetchStock(ctx context.Context, token string, skus []string,
	accept func(StockRecord), diag func(error)) error {

	if len(skus) == 0 {
		return nil
	}

	chunks := chunkSkus(skus, c.chunkLimit)
	c.log.Log("Fetching stock for %d SKUs in %d chunks (limit %d, page size %d)",
		len(skus), len(chunks), c.chunkLimit, c.pageSize)

	for chunkIdx, chunk := range chunks {
		if err := c.fetchChunk(ctx, token, chunkIdx, chunk, accept, diag); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// chunk already reported through diag, move on
		}
	}
	return nil
}

func (c *Client) fetchChunk(ctx context.Context, token string, chunkIdx int, skus []string,
	accept func(StockRecord), diag func(error)) error {

	skuParam := strings.Join(skus, ",")
	pageNumber := 1
	totalPages := 1 // enter the loop at least once

	for pageNumber <= totalPages {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		doc, err := c.fetchPage(ctx, token, skuParam, pageNumber)
		if err != nil {
			c.runMetrics.FailedPages.Add(1)
			diag(fmt.Errorf("chunk %d page %d: %w", chunkIdx+1, pageNumber, err))
			return err
		}

		for _, item := range doc.OptArray("result") {
			sku := strings.TrimSpace(item.OptString("sku", ""))
			if sku == "" {
				c.log.Log("Discarding supplier record without sku (chunk %d page %d)", chunkIdx+1, pageNumber)
				continue
			}
			c.runMetrics.FetchedRecords.Add(1)
			accept(StockRecord{
				Sku:      sku,
				StockQty: item.OptString("stock_qty", "0"),
				Cost:     item.OptString("cost", "0.00"),
				Price:    item.OptString("price", ""),
			})
		}

		totalPages = doc.OptInt("total_pages", pageNumber)
		pageNumber = doc.OptInt("current_page", pageNumber) + 1
	}
	return nil
}

func (c *Client) fetchPage(ctx context.Context, token, skuParam string, pageNumber int) (jsondoc.Doc, error) {
	query := url.Values{}
	query.Set("skus", skuParam)
	query.Set("page_size", strconv.Itoa(c.pageSize))
	query.Set("page_number", strconv.Itoa(pageNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.productsURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create products request: %w", err)
	}
	req.Header.Set("Authorization", "jwt "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("products request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordRequest("supplier", "products", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read products response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("products request returned %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	doc, err := jsondoc.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse products response: %w (body fragment: %s)", err, truncate(string(body), 256))
	}
	return doc, nil
}

// chunkSkus splits skus into sub-lists of at most limit entries, preserving
// order and duplicates.
func chunkSkus(skus []string, limit int) [][]string {
	if limit <= 0 {
		limit = 1
	}
	var chunks [][]string
	for start := 0; start < len(skus); start += limit {
		end := start + limit
		if end > len(skus) {
			end = len(skus)
		}
		chunks = append(chunks, skus[start:end])
	}
	return chunks
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
