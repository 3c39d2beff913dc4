package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/MKhiriev/drpg-sync/internal/config"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/utils"
	"github.com/MKhiriev/drpg-sync/models"
)

const (
	userAgent = "drpg-sync"
	// tokenRefreshMargin renews a bearer token this long before it expires.
	tokenRefreshMargin = time.Minute
	// siteID selects the DriveThruRPG storefront on the shared API.
	siteID = "10"
)

// HTTPCatalog talks to the catalog REST API with resty. API calls share a
// rate limiter and a bearer token obtained from the configured API key;
// file downloads go straight to the signed link.
type HTTPCatalog struct {
	api     *utils.HTTPClient
	files   *utils.HTTPClient
	limiter *rate.Limiter
	cfg     config.Catalog

	mu    sync.Mutex
	token string

	logger *logger.Logger
}

// NewHTTPCatalog builds the client from catalog settings. Zero limits fall
// back to the package defaults.
func NewHTTPCatalog(cfg config.Catalog, log *logger.Logger) (*HTTPCatalog, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("invalid catalog api url: empty address")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = config.DefaultPageSize
	}
	if cfg.PrepareAttempts <= 0 {
		cfg.PrepareAttempts = config.DefaultPrepareAttempts
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := max(cfg.RateBurst, 1)

	return &HTTPCatalog{
		api:     utils.NewHTTPClient(cfg.URL, cfg.RequestTimeout, userAgent),
		files:   utils.NewHTTPClient("", cfg.DownloadTimeout, userAgent),
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
		logger:  log,
	}, nil
}

// ListPurchases implements [CatalogFetcher]. It walks order_products page by
// page until an empty page and flattens every product into one item per
// file.
func (c *HTTPCatalog) ListPurchases(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem

	for page := 1; ; page++ {
		var products []productDTO
		err := c.call(ctx, "list purchases", &products, func(r *resty.Request) (*resty.Response, error) {
			return r.SetQueryParams(map[string]string{
				"page":         strconv.Itoa(page),
				"pageSize":     strconv.Itoa(c.cfg.PageSize),
				"getChecksums": "1",
				"library":      "1",
				"archived":     "0",
			}).Get("order_products")
		})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(products) == 0 {
			break
		}

		pageItems, unreadable := toCatalogItems(products)
		for _, ts := range unreadable {
			c.logger.Warn().Str("func", "HTTPCatalog.ListPurchases").Str("timestamp", ts).Msg("unreadable fileLastModified, treating as unknown")
		}
		c.logger.Debug().
			Str("func", "HTTPCatalog.ListPurchases").
			Int("page", page).
			Int("products", len(products)).
			Int("files", len(pageItems)).
			Msg("fetched catalog page")

		items = append(items, pageItems...)
	}

	return items, nil
}

// ResolveDownloadURL implements [CatalogFetcher]. The catalog prepares links
// asynchronously: prepare is called once, then check is polled until the
// status leaves "Preparing".
func (c *HTTPCatalog) ResolveDownloadURL(ctx context.Context, item models.CatalogItem) (string, error) {
	orderProductID, index, err := parseResolveToken(item.ResolveToken)
	if err != nil {
		return "", err
	}

	params := map[string]string{
		"siteId":       siteID,
		"index":        index,
		"getChecksums": "0",
	}
	request := func(endpoint string) func(r *resty.Request) (*resty.Response, error) {
		return func(r *resty.Request) (*resty.Response, error) {
			return r.SetPathParam("id", orderProductID).
				SetQueryParams(params).
				Get("order_products/{id}/" + endpoint)
		}
	}

	var msg prepareResponse
	if err = c.call(ctx, "prepare download", &msg, request("prepare")); err != nil {
		return "", err
	}

	for attempt := 1; msg.pending(); attempt++ {
		if attempt > c.cfg.PrepareAttempts {
			return "", fmt.Errorf("%w: download link for %s not ready after %d checks", ErrTransient, item.ID, c.cfg.PrepareAttempts)
		}
		if err = sleepContext(ctx, c.cfg.PollInterval); err != nil {
			return "", err
		}
		msg = prepareResponse{}
		if err = c.call(ctx, "check download", &msg, request("check")); err != nil {
			return "", err
		}
	}

	if msg.URL == "" {
		return "", fmt.Errorf("%w: no download url for %s (status %q)", ErrBadResponse, item.ID, msg.Status)
	}

	return msg.URL, nil
}

// Fetch implements [FileFetcher]. The body is returned unread so the caller
// can stream it to disk.
func (c *HTTPCatalog) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	resp, err := c.files.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "*/*").
		Get(url)
	if err != nil {
		return nil, 0, mapTransportError(ctx, "fetch file", err)
	}

	body := resp.RawBody()
	if err = mapStatus(resp.StatusCode(), "", true); err != nil {
		if body != nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
			body.Close()
		}
		return nil, 0, err
	}

	size := int64(-1)
	if resp.RawResponse != nil {
		size = resp.RawResponse.ContentLength
	}

	return body, size, nil
}

// call performs one rate-limited, authenticated API request and decodes the
// JSON body into out. A 401 refreshes the token and retries once.
func (c *HTTPCatalog) call(ctx context.Context, op string, out any, do func(*resty.Request) (*resty.Response, error)) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		token, err := c.bearer(ctx, attempt > 0)
		if err != nil {
			return err
		}

		resp, err := do(c.api.R().SetContext(ctx).SetAuthToken(token))
		if err != nil {
			return mapTransportError(ctx, op, err)
		}

		err = mapHTTPError(resp)
		if errors.Is(err, ErrUnauthorized) && attempt == 0 {
			c.logger.Debug().Str("func", "HTTPCatalog.call").Str("op", op).Msg("bearer token refused, refreshing")
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err = json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBadResponse, op, err)
		}
		return nil
	}
}

// bearer returns a usable token, exchanging the API key when there is none,
// when it is about to expire or when force is set.
func (c *HTTPCatalog) bearer(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.token != "" && !utils.TokenExpiresWithin(c.token, tokenRefreshMargin) {
		return c.token, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	}

	var out authResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetQueryParam("applicationKey", c.cfg.Token).
		Post("auth_key")
	if err != nil {
		return "", mapTransportError(ctx, "authenticate", err)
	}
	if err = mapHTTPError(resp); err != nil {
		c.logger.Err(err).Str("func", "HTTPCatalog.bearer").Msg("api key exchange failed")
		return "", fmt.Errorf("authenticate: %w", err)
	}
	if err = json.Unmarshal(resp.Body(), &out); err != nil || out.Token == "" {
		return "", fmt.Errorf("%w: authenticate: missing token", ErrBadResponse)
	}

	c.token = out.Token
	c.logger.Debug().Str("func", "HTTPCatalog.bearer").Msg("obtained bearer token")

	return c.token, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
