package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"talentdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// backend is an httptest server that records every request.
type backend struct {
	*httptest.Server
	mu   sync.Mutex
	seen []seenRequest
}

func newBackend(t *testing.T, handle func(w http.ResponseWriter, r *http.Request, body map[string]any)) *backend {
	t.Helper()
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
		b.mu.Lock()
		b.seen = append(b.seen, seenRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone(), Body: body})
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handle(w, r, body)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) requests(method string) []seenRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []seenRequest
	for _, r := range b.seen {
		if method == "" || r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

func window(items ...any) map[string]any {
	if items == nil {
		items = []any{}
	}
	return map[string]any{"items": items, "total": len(items), "page": 0, "pageSize": 10, "totalPages": 1}
}

func TestRequestErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail string", http.StatusNotFound, `{"success":false,"error":"Failed to fetch company","detail":"Failed to fetch company: not found"}`, "Failed to fetch company: not found"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","name"],"msg":"field required"},{"msg":"second"}]}`, "field required"},
		{"no detail", http.StatusInternalServerError, `{"success":false}`, FallbackMessage},
		{"empty detail", http.StatusBadRequest, `{"detail":""}`, FallbackMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, FallbackMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := Companies(New(srv.URL)).Get(context.Background(), "c-1")

			var re *RequestError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.Status)
			assert.Equal(t, tt.message, re.Message)
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestTransportFailureIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := Companies(New(srv.URL)).List(context.Background(), Params{})
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, re.Status)
	assert.Equal(t, FallbackMessage, re.Message)
	assert.Error(t, re.Unwrap())
}

func TestListUnwrapsEnvelope(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		ok(w, http.StatusOK, map[string]any{
			"items": []any{map[string]any{"public_id": "c-1", "name": "Acme", "status": "active"}},
			"total": 11, "page": 1, "pageSize": 10, "totalPages": 2,
		})
	})
	c := New(srv.URL, WithToken("tok-1"))

	w, err := Companies(c).List(context.Background(), Params{
		Skip: 10, Limit: 10, Search: "ac", SortBy: "name", SortOrder: "desc",
		Filters: map[string]any{"status": "active", "industry": nil},
	})
	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.Equal(t, "Acme", w.Items[0].Name)
	assert.Equal(t, "c-1", w.Items[0].PublicID)
	assert.EqualValues(t, 11, w.Total)
	assert.Equal(t, 2, w.TotalPages)

	req := srv.requests(http.MethodGet)[0]
	assert.Equal(t, "/api/v1/crm/companies", req.Path)
	assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
	assert.Equal(t, url.Values{
		"skip": {"10"}, "limit": {"10"}, "search": {"ac"},
		"sort_by": {"name"}, "sort_order": {"desc"}, "status": {"active"},
	}, req.Query)
}

func TestCompanyDialogRequiresName(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		ok(w, http.StatusCreated, map[string]any{})
	})
	store := NewStore[models.Company](Companies(New(srv.URL)))
	d := NewDialog[models.Company](store, nil)

	d.Open(nil)
	d.Edit(func(c *models.Company) {
		c.Name = ""
		c.Industry = "Logistics"
	})
	_, err := d.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	assert.Empty(t, srv.requests(""), "nothing may reach the server")
	assert.True(t, d.IsOpen())
	assert.False(t, d.Submitting())
	assert.Equal(t, "Logistics", d.Draft().Industry)
	assert.Equal(t, err, d.Err())
}

func TestContactEditSendsOneFullDraftPut(t *testing.T) {
	jane := map[string]any{"id": 4, "public_id": "ct-1", "first_name": "Jane", "last_name": "Doe", "email": "jane@x.com", "status": "active"}
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		switch r.Method {
		case http.MethodGet:
			ok(w, http.StatusOK, window(jane))
		case http.MethodPut:
			ok(w, http.StatusOK, body)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "unexpected"})
		}
	})
	page := NewListPage(NewStore[models.Contact](Contacts(New(srv.URL))), 10)
	require.NoError(t, page.Refresh(context.Background()))

	items := page.Store().State().Items
	require.Len(t, items, 1)

	d := NewDialog[models.Contact](page.Store(), nil)
	d.Open(&items[0])
	require.True(t, d.Editing())
	d.Edit(func(c *models.Contact) { c.Email = "jane@y.com" })

	saved, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jane@y.com", saved.Email)
	assert.False(t, d.IsOpen())

	puts := srv.requests(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Equal(t, "/api/v1/crm/contacts/ct-1", puts[0].Path)
	assert.Equal(t, "Jane", puts[0].Body["first_name"])
	assert.Equal(t, "Doe", puts[0].Body["last_name"])
	assert.Equal(t, "jane@y.com", puts[0].Body["email"])
	assert.Equal(t, "active", puts[0].Body["status"])

	assert.Len(t, srv.requests(http.MethodGet), 2, "the list is re-fetched after the update")
	assert.Equal(t, "jane@x.com", items[0].Email, "editing the draft leaves the listed record alone")
}

func TestTaskOverdueQuickFilter(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		ok(w, http.StatusOK, window())
	})
	page := NewListPage(NewStore[models.Task](Tasks(New(srv.URL))), 10)
	ctx := context.Background()

	require.NoError(t, page.SetFilter(ctx, "priority", "high"))
	require.NoError(t, page.SetPage(ctx, 3))

	overdue, found := FindQuickFilter(TaskQuickFilters, "Overdue")
	require.True(t, found)
	require.NoError(t, page.ApplyQuickFilter(ctx, overdue.Filters))

	st := page.State()
	assert.Equal(t, 0, st.Page)
	assert.Equal(t, map[string]any{"overdue_only": true}, st.ActiveFilters)
	assert.Equal(t, StatusSuccess, st.Status)

	gets := srv.requests(http.MethodGet)
	require.Len(t, gets, 3)
	assert.Equal(t, "30", gets[1].Query.Get("skip"))
	assert.Equal(t, url.Values{"skip": {"0"}, "limit": {"10"}, "overdue_only": {"true"}}, gets[2].Query)

	st.ActiveFilters["overdue_only"] = false
	assert.Equal(t, true, page.State().ActiveFilters["overdue_only"], "state is returned as a copy")
}

func TestListPageControls(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		if r.URL.Query().Get("search") == "boom" {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "detail": "Failed to fetch companies"})
			return
		}
		ok(w, http.StatusOK, window())
	})
	page := NewListPage(NewStore[models.Company](Companies(New(srv.URL))), 25)
	ctx := context.Background()
	assert.Equal(t, StatusIdle, page.State().Status)

	require.NoError(t, page.SetPage(ctx, 2))
	require.NoError(t, page.SetSearch(ctx, "acme"))
	assert.Equal(t, 0, page.State().Page)

	require.NoError(t, page.Sort(ctx, "name"))
	require.NoError(t, page.Sort(ctx, "name"))
	last := srv.requests(http.MethodGet)[3]
	assert.Equal(t, "name", last.Query.Get("sort_by"))
	assert.Equal(t, "desc", last.Query.Get("sort_order"))
	assert.Equal(t, "acme", last.Query.Get("search"))

	require.NoError(t, page.SetPageSize(ctx, 50))
	assert.Equal(t, "50", srv.requests(http.MethodGet)[4].Query.Get("limit"))

	err := page.SetSearch(ctx, "boom")
	require.Error(t, err)
	st := page.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, "Failed to fetch companies", st.Err.(*RequestError).Message)
	assert.Equal(t, err, page.Store().State().Err)
}

func TestDialogOpenResets(t *testing.T) {
	d := NewDialog[models.Company](NewStore[models.Company](nil), nil)
	acme := models.Company{Name: "Acme", Industry: "Retail"}
	acme.PublicID = "c-1"
	globex := models.Company{Name: "Globex"}
	globex.PublicID = "c-2"

	d.Open(&acme)
	d.Edit(func(c *models.Company) { c.Name = "Acme Corp" })
	assert.Equal(t, "Acme", acme.Name)

	d.Open(&globex)
	assert.Equal(t, "Globex", d.Draft().Name)
	assert.Equal(t, "", d.Draft().Industry)

	d.Open(nil)
	assert.False(t, d.Editing())
	assert.Equal(t, models.Company{}, d.Draft())

	d.Close()
	assert.False(t, d.IsOpen())
	_, err := d.Submit(context.Background())
	assert.ErrorIs(t, err, ErrDialogClosed)
}

func TestDialogKeepsDraftOnFailure(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "error": "Failed to create company", "detail": "Failed to create company: conflict"})
	})
	store := NewStore[models.Company](Companies(New(srv.URL)))
	d := NewDialog[models.Company](store, nil)

	d.Open(nil)
	d.Edit(func(c *models.Company) { c.Name = "Initech" })
	_, err := d.Submit(context.Background())

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Failed to create company: conflict", re.Message)
	assert.True(t, d.IsOpen())
	assert.False(t, d.Submitting())
	assert.Equal(t, "Initech", d.Draft().Name)
	assert.Len(t, srv.requests(http.MethodPost), 1)
	assert.Empty(t, srv.requests(http.MethodGet), "no re-fetch after a failed mutation")
}
