// Package api is the typed client for the Carmen back-office API.
//
// Reads return the three flat classification collections; writes dispatch
// create/update/delete per entity. The client interprets a response as
// successful when it carries a 2xx status and the response envelope has no
// error field. All calls take a context; the UI passes a per-program
// context so in-flight requests are dropped (not aborted mid-write) when
// the program exits.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/carmensoftware/carmen-catalog/pkg/debug"
	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

const defaultTimeout = 15 * time.Second

// StatusError is returned for responses outside the 2xx range, or for 2xx
// responses whose envelope carries an error message.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.Status)
	}
	return fmt.Sprintf("%s %s failed (status %d)", e.Method, e.Path, e.Status)
}

// envelope is the standard Carmen response wrapper.
type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error,omitempty"`
}

// ClientOpts configures a Client. BaseURL is required; Token is the bearer
// token attached to every request.
type ClientOpts struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the Carmen API.
type Client struct {
	httpClient *resty.Client
	token      string
}

// NewClient builds a client for the given base URL and token.
func NewClient(opts ClientOpts) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	c := &Client{token: opts.Token}
	c.httpClient = resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return c
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	r := c.httpClient.NewRequest().SetContext(ctx)
	if c.token != "" {
		r.SetAuthToken(c.token)
	}
	if result != nil {
		r.SetResult(result)
	}
	return r
}

// handleError turns >399 responses into a StatusError. Without this,
// failing responses would carry a nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, &StatusError{
			Method: res.Request.Method,
			Path:   res.Request.URL,
			Status: res.StatusCode(),
		}
	}
	return res, nil
}

// checkEnvelope rejects 2xx responses whose body carries an error field.
func checkEnvelope(res *resty.Response, errMsg string) error {
	if errMsg == "" {
		return nil
	}
	return &StatusError{
		Method:  res.Request.Method,
		Path:    res.Request.URL,
		Status:  res.StatusCode(),
		Message: errMsg,
	}
}

// FetchCategories returns every product category.
func (c *Client) FetchCategories(ctx context.Context) ([]model.Category, error) {
	result := &envelope[[]model.Category]{}
	res, err := handleError(c.req(ctx, result).Get("/api/product-categories"))
	if err != nil {
		return nil, err
	}
	if err := checkEnvelope(res, result.Error); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// FetchSubCategories returns every product subcategory.
func (c *Client) FetchSubCategories(ctx context.Context) ([]model.SubCategory, error) {
	result := &envelope[[]model.SubCategory]{}
	res, err := handleError(c.req(ctx, result).Get("/api/product-subcategories"))
	if err != nil {
		return nil, err
	}
	if err := checkEnvelope(res, result.Error); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// FetchItemGroups returns every product item group.
func (c *Client) FetchItemGroups(ctx context.Context) ([]model.ItemGroup, error) {
	result := &envelope[[]model.ItemGroup]{}
	res, err := handleError(c.req(ctx, result).Get("/api/product-item-groups"))
	if err != nil {
		return nil, err
	}
	if err := checkEnvelope(res, result.Error); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Refresh fetches the three collections concurrently and returns them as
// one bundle. Any single failure fails the whole refresh; the caller keeps
// rendering its previous tree in that case.
func (c *Client) Refresh(ctx context.Context) (model.Collections, error) {
	started := time.Now()
	var cols model.Collections

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := c.FetchCategories(gctx)
		cols.Categories = cats
		return err
	})
	g.Go(func() error {
		subs, err := c.FetchSubCategories(gctx)
		cols.SubCategories = subs
		return err
	})
	g.Go(func() error {
		groups, err := c.FetchItemGroups(gctx)
		cols.ItemGroups = groups
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Collections{}, err
	}

	debug.Log("refresh: %d categories, %d subcategories, %d item groups in %v",
		len(cols.Categories), len(cols.SubCategories), len(cols.ItemGroups), time.Since(started))
	return cols, nil
}

// writeCall posts or puts a payload and validates the envelope.
func (c *Client) writeCall(ctx context.Context, method, path string, payload any) error {
	result := &envelope[map[string]any]{}
	r := c.req(ctx, result).SetBody(payload)

	var res *resty.Response
	var err error
	switch method {
	case resty.MethodPost:
		res, err = handleError(r.Post(path))
	case resty.MethodPut:
		res, err = handleError(r.Put(path))
	default:
		return fmt.Errorf("unsupported write method %q", method)
	}
	if err != nil {
		return err
	}
	return checkEnvelope(res, result.Error)
}

func (c *Client) deleteCall(ctx context.Context, path string) error {
	result := &envelope[map[string]any]{}
	res, err := handleError(c.req(ctx, result).Delete(path))
	if err != nil {
		return err
	}
	return checkEnvelope(res, result.Error)
}

// CreateCategory creates a new category.
func (c *Client) CreateCategory(ctx context.Context, p model.CategoryPayload) error {
	return c.writeCall(ctx, resty.MethodPost, "/api/product-categories", p)
}

// UpdateCategory updates an existing category.
func (c *Client) UpdateCategory(ctx context.Context, p model.CategoryPayload) error {
	return c.writeCall(ctx, resty.MethodPut, "/api/product-categories/"+p.ID, p)
}

// DeleteCategory deletes a category by id.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.deleteCall(ctx, "/api/product-categories/"+id)
}

// CreateSubCategory creates a new subcategory under its referenced category.
func (c *Client) CreateSubCategory(ctx context.Context, p model.SubCategoryPayload) error {
	return c.writeCall(ctx, resty.MethodPost, "/api/product-subcategories", p)
}

// UpdateSubCategory updates an existing subcategory.
func (c *Client) UpdateSubCategory(ctx context.Context, p model.SubCategoryPayload) error {
	return c.writeCall(ctx, resty.MethodPut, "/api/product-subcategories/"+p.ID, p)
}

// DeleteSubCategory deletes a subcategory by id.
func (c *Client) DeleteSubCategory(ctx context.Context, id string) error {
	return c.deleteCall(ctx, "/api/product-subcategories/"+id)
}

// CreateItemGroup creates a new item group under its referenced subcategory.
func (c *Client) CreateItemGroup(ctx context.Context, p model.ItemGroupPayload) error {
	return c.writeCall(ctx, resty.MethodPost, "/api/product-item-groups", p)
}

// UpdateItemGroup updates an existing item group.
func (c *Client) UpdateItemGroup(ctx context.Context, p model.ItemGroupPayload) error {
	return c.writeCall(ctx, resty.MethodPut, "/api/product-item-groups/"+p.ID, p)
}

// DeleteItemGroup deletes an item group by id.
func (c *Client) DeleteItemGroup(ctx context.Context, id string) error {
	return c.deleteCall(ctx, "/api/product-item-groups/"+id)
}
