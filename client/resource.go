package client

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"talentdesk/grid"
	"talentdesk/models"

	"github.com/valyala/fasthttp"
)

// Params are the list query parameters shared by every list endpoint.
// Filters are sent as extra query parameters in key order.
type Params struct {
	Skip      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Filters   map[string]any
}

func (p Params) values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(p.Skip))
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.SortBy != "" {
		v.Set("sort_by", p.SortBy)
		if p.SortOrder != "" {
			v.Set("sort_order", p.SortOrder)
		}
	}
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := p.Filters[k]; val != nil {
			v.Set(k, fmt.Sprint(val))
		}
	}
	return v
}

// API is the CRUD surface a Store works against.
type API[T any] interface {
	List(ctx context.Context, p Params) (grid.Window[T], error)
	Get(ctx context.Context, publicID string) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, publicID string, item *T) (*T, error)
	Delete(ctx context.Context, publicID string) error
}

// Resource is one REST collection such as /crm/companies.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: APIPrefix + path}
}

func Companies(c *Client) *Resource[models.Company] {
	return NewResource[models.Company](c, "/crm/companies")
}

func Contacts(c *Client) *Resource[models.Contact] {
	return NewResource[models.Contact](c, "/crm/contacts")
}

func Leads(c *Client) *Resource[models.Lead] {
	return NewResource[models.Lead](c, "/crm/leads")
}

func Deals(c *Client) *Resource[models.Deal] {
	return NewResource[models.Deal](c, "/crm/deals")
}

func Tasks(c *Client) *Resource[models.Task] {
	return NewResource[models.Task](c, "/crm/tasks")
}

func Candidates(c *Client) *Resource[models.Candidate] {
	return NewResource[models.Candidate](c, "/candidates")
}

func Tickets(c *Client) *Resource[models.SupportTicket] {
	return NewResource[models.SupportTicket](c, "/support/tickets")
}

func (r *Resource[T]) List(ctx context.Context, p Params) (grid.Window[T], error) {
	var w grid.Window[T]
	err := r.c.call(ctx, fasthttp.MethodGet, r.path, p.values(), nil, &w)
	return w, err
}

func (r *Resource[T]) Get(ctx context.Context, publicID string) (*T, error) {
	var item T
	if err := r.c.call(ctx, fasthttp.MethodGet, r.path+"/"+url.PathEscape(publicID), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Create(ctx context.Context, item *T) (*T, error) {
	var created T
	if err := r.c.call(ctx, fasthttp.MethodPost, r.path, nil, item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update sends the whole item; the server treats it as the full draft.
func (r *Resource[T]) Update(ctx context.Context, publicID string, item *T) (*T, error) {
	var updated T
	if err := r.c.call(ctx, fasthttp.MethodPut, r.path+"/"+url.PathEscape(publicID), nil, item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Resource[T]) Delete(ctx context.Context, publicID string) error {
	return r.c.call(ctx, fasthttp.MethodDelete, r.path+"/"+url.PathEscape(publicID), nil, nil, nil)
}
