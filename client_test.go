package requestbridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	requestbridge "github.com/opengovern/request-bridge"
	"github.com/opengovern/request-bridge/mock"
	"github.com/opengovern/request-bridge/tokenstore"
)

func newTestClient(mt *mock.Transport) *requestbridge.Client {
	return requestbridge.New(requestbridge.Config{
		BaseURL:   "https://api.example.com",
		Transport: mt,
	})
}

func TestSendGetDecodesJSON(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{Responses: []*requestbridge.WireResponse{
		mock.JSONResponse(200, `{"x":1}`),
	}}
	c := newTestClient(mt)

	res, err := c.Send(context.Background(), &requestbridge.RequestConfig{
		Method: requestbridge.MethodGet,
		Path:   "/data",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if res.StatusCode != 200 || !res.OK {
		t.Fatalf("got status=%d ok=%v, want 200/true", res.StatusCode, res.OK)
	}

	data, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data has type %T, want map", res.Data)
	}
	if data["x"] != float64(1) {
		t.Fatalf("data[x] = %v, want 1", data["x"])
	}

	req := mt.LastRequest()
	if req.URL != "https://api.example.com/data" {
		t.Fatalf("resolved URL = %q", req.URL)
	}
	if req.Method != "GET" {
		t.Fatalf("method = %q, want GET", req.Method)
	}
}

func TestSendPostSerializesBodyAndInjectsToken(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{Responses: []*requestbridge.WireResponse{
		mock.JSONResponse(201, `{"id":7}`),
	}}
	c := newTestClient(mt)

	_, err := c.Send(context.Background(), &requestbridge.RequestConfig{
		Method: requestbridge.MethodPost,
		Path:   "/post",
		Body:   struct {
			Name string `json:"name"`
		}{Name: "John"},
		Token: "abc",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	req := mt.LastRequest()
	if got := req.Headers["Authorization"]; got != "Bearer abc" {
		t.Fatalf("Authorization = %q, want %q", got, "Bearer abc")
	}
	if got := req.Headers["Content-Type"]; got != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", got)
	}
	if got := string(req.Body); got != `{"name":"John"}` {
		t.Fatalf("serialized body = %s", got)
	}
}

func TestTokenOverridesCallerAuthorization(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{}
	c := newTestClient(mt)

	_, err := c.Send(context.Background(), &requestbridge.RequestConfig{
		Method:  requestbridge.MethodGet,
		Path:    "/secure",
		Headers: map[string]string{"authorization": "Basic c3R1ZmY="},
		Token:   "abc",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	req := mt.LastRequest()
	if got := req.Headers["Authorization"]; got != "Bearer abc" {
		t.Fatalf("Authorization = %q, want token to win", got)
	}
	if _, ok := req.Headers["authorization"]; ok {
		t.Fatalf("lower-cased duplicate authorization header survived the merge")
	}
}

func TestMultipartSuppressesInjectedContentType(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{}
	c := newTestClient(mt)

	form := requestbridge.NewForm().
		AddField("kind", "report").
		AddFile("file", "report.csv", []byte("a,b\n1,2\n"))

	_, err := c.Send(context.Background(), &requestbridge.RequestConfig{
		Method:  requestbridge.MethodPost,
		Path:    "/upload",
		Headers: map[string]string{"Content-Type": "application/json"},
		Form:    form,
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	ct := mt.LastRequest().Headers["Content-Type"]
	if !strings.HasPrefix(ct, "multipart/form-data; boundary=") {
		t.Fatalf("Content-Type = %q, want multipart with boundary", ct)
	}
}

func TestStatusCodeRanges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		wantOK bool
	}{
		{200, true},
		{204, true},
		{299, true},
		{199, false},
		{301, false},
		{404, false},
		{500, false},
	}

	for _, tc := range cases {
		mt := &mock.Transport{Responses: []*requestbridge.WireResponse{
			mock.JSONResponse(tc.status, `{}`),
		}}
		c := newTestClient(mt)

		res, err := c.Get(context.Background(), "/probe")
		if tc.wantOK {
			if err != nil {
				t.Fatalf("status %d: unexpected error %v", tc.status, err)
			}
			if !res.OK {
				t.Fatalf("status %d: OK = false", tc.status)
			}
			continue
		}

		re, ok := requestbridge.AsRequestError(err)
		if !ok {
			t.Fatalf("status %d: error %v is not a RequestError", tc.status, err)
		}
		if re.Kind != requestbridge.ErrKindHTTPStatus {
			t.Fatalf("status %d: kind = %s, want http_status", tc.status, re.Kind)
		}
		if !requestbridge.IsStatus(err, tc.status) {
			t.Fatalf("status %d: IsStatus did not match", tc.status)
		}
	}
}

func TestPostHookInterceptsUnauthorized(t *testing.T) {
	t.Parallel()

	errUnauthorized := errors.New("unauthorized: token rejected")

	mt := &mock.Transport{Responses: []*requestbridge.WireResponse{
		mock.JSONResponse(401, `{"message":"bad token"}`),
	}}
	c := newTestClient(mt)
	c.UsePostResponseHook(requestbridge.InterceptStatus(401, errUnauthorized))

	_, err := c.Get(context.Background(), "/secure")
	if !errors.Is(err, errUnauthorized) {
		t.Fatalf("error %v does not carry the hook's substitute", err)
	}
	re, ok := requestbridge.AsRequestError(err)
	if !ok {
		t.Fatalf("error %v is not a RequestError", err)
	}
	if re.Kind != requestbridge.ErrKindHookFailure {
		t.Fatalf("kind = %s, want hook_failure, not a generic status error", re.Kind)
	}
}

func TestNetworkFailureSkipsSuccessBranch(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{Err: errors.New("connection refused")}
	c := newTestClient(mt)

	var sawErr, sawResp bool
	c.UsePostResponseHook(func(ctx context.Context, ex *requestbridge.Exchange) error {
		if ex.Err != nil {
			sawErr = true
		}
		if ex.Response != nil {
			sawResp = true
		}
		return nil
	})

	_, err := c.Get(context.Background(), "/data")
	re, ok := requestbridge.AsRequestError(err)
	if !ok || re.Kind != requestbridge.ErrKindNetwork {
		t.Fatalf("error = %v, want network kind", err)
	}
	if !sawErr {
		t.Fatalf("post-response hook never saw the error branch")
	}
	if sawResp {
		t.Fatalf("post-response hook saw a response for a failed transport")
	}
}

func TestPreHookFailureAbortsSend(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{}
	c := newTestClient(mt)

	boom := errors.New("hook exploded")
	c.UsePreRequestHook(func(ctx context.Context, cfg *requestbridge.RequestConfig) error {
		return boom
	})

	_, err := c.Get(context.Background(), "/data")
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want the hook failure", err)
	}
	re, _ := requestbridge.AsRequestError(err)
	if re == nil || re.Kind != requestbridge.ErrKindHookFailure {
		t.Fatalf("error = %v, want hook_failure kind", err)
	}
	if len(mt.Requests()) != 0 {
		t.Fatalf("transport was invoked despite the aborted send")
	}
}

func TestHookChainsRunInRegistrationOrder(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{}
	c := newTestClient(mt)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		c.UsePreRequestHook(func(ctx context.Context, cfg *requestbridge.RequestConfig) error {
			order = append(order, "pre-"+name)
			return nil
		})
		c.UsePostResponseHook(func(ctx context.Context, ex *requestbridge.Exchange) error {
			order = append(order, "post-"+name)
			return nil
		})
	}

	if _, err := c.Get(context.Background(), "/data"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	want := []string{"pre-first", "pre-second", "pre-third", "post-first", "post-second", "post-third"}
	require.Equal(t, want, order)
}

func TestTokenStoreReadOncePerSend(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	reads := 0
	store := tokenstore.Func(func(ctx context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		reads++
		return "stored-token", nil
	})

	mt := &mock.Transport{}
	c := requestbridge.New(requestbridge.Config{
		BaseURL:    "https://api.example.com",
		Transport:  mt,
		TokenStore: store,
	})

	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), "/data"); err != nil {
			t.Fatalf("Send returned error: %v", err)
		}
	}

	if reads != 3 {
		t.Fatalf("store read %d times across 3 sends, want 3", reads)
	}
	if got := mt.LastRequest().Headers["Authorization"]; got != "Bearer stored-token" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestJSONBodyRoundTrip(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{Handler: func(ctx context.Context, req *requestbridge.WireRequest) (*requestbridge.WireResponse, error) {
		return &requestbridge.WireResponse{
			StatusCode: 200,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       req.Body,
		}, nil
	}}
	c := newTestClient(mt)

	type payload struct {
		Name  string         `json:"name"`
		Count int            `json:"count"`
		Tags  []string       `json:"tags"`
		Meta  map[string]any `json:"meta"`
	}
	in := payload{
		Name:  "John",
		Count: 3,
		Tags:  []string{"a", "b"},
		Meta:  map[string]any{"active": true},
	}

	res, err := c.Post(context.Background(), "/echo", in)
	require.NoError(t, err)

	// Deep-equal through a JSON round trip of the original.
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	var want any
	require.NoError(t, json.Unmarshal(raw, &want))
	require.Equal(t, want, res.Data)
}

func TestCancellationFlaggedOnNetworkError(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{Handler: func(ctx context.Context, req *requestbridge.WireRequest) (*requestbridge.WireResponse, error) {
		return nil, ctx.Err()
	}}
	c := newTestClient(mt)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/slow")
	re, ok := requestbridge.AsRequestError(err)
	if !ok {
		t.Fatalf("error %v is not a RequestError", err)
	}
	if re.Kind != requestbridge.ErrKindNetwork || !re.Canceled {
		t.Fatalf("got kind=%s canceled=%v, want network/true", re.Kind, re.Canceled)
	}
}

func TestQueryParametersEncoded(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{}
	c := newTestClient(mt)

	_, err := c.Send(context.Background(), &requestbridge.RequestConfig{
		Method: requestbridge.MethodGet,
		Path:   "/search",
		Query:  map[string]string{"q": "a b", "page": "2"},
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	u, err := url.Parse(mt.LastRequest().URL)
	if err != nil {
		t.Fatalf("parsing resolved URL: %v", err)
	}
	if got := u.Query().Get("q"); got != "a b" {
		t.Fatalf("q = %q, want %q", got, "a b")
	}
	if got := u.Query().Get("page"); got != "2" {
		t.Fatalf("page = %q, want 2", got)
	}
}

func TestRequestIDHookStampsHeader(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{}
	c := newTestClient(mt)
	c.UsePreRequestHook(requestbridge.RequestIDHook("X-Request-Id"))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), "/data"); err != nil {
			t.Fatalf("Send returned error: %v", err)
		}
		id := mt.LastRequest().Headers["X-Request-Id"]
		if id == "" {
			t.Fatalf("request went out without a request ID")
		}
		if seen[id] {
			t.Fatalf("request ID %q reused across sends", id)
		}
		seen[id] = true
	}
}

func TestSendRejectsBadConfigs(t *testing.T) {
	t.Parallel()

	c := newTestClient(&mock.Transport{})
	ctx := context.Background()

	cases := []*requestbridge.RequestConfig{
		nil,
		{Method: "TRACE", Path: "/x"},
		{Method: requestbridge.MethodGet},
		{Method: requestbridge.MethodPost, Path: "/x", Body: 1, Form: requestbridge.NewForm()},
	}
	for i, cfg := range cases {
		if _, err := c.Send(ctx, cfg); err == nil {
			t.Fatalf("case %d: Send accepted an invalid config", i)
		}
	}
}

func TestTransportFuncAndTextDecode(t *testing.T) {
	t.Parallel()

	transport := requestbridge.TransportFunc(func(ctx context.Context, req *requestbridge.WireRequest) (*requestbridge.WireResponse, error) {
		return mock.TextResponse(200, "pong"), nil
	})
	c := requestbridge.New(requestbridge.Config{Transport: transport})

	res, err := c.Get(context.Background(), "/ping")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if res.Data != "pong" {
		t.Fatalf("Data = %v (%T), want string pong", res.Data, res.Data)
	}
}

func TestConcurrentSends(t *testing.T) {
	t.Parallel()

	mt := &mock.Transport{Responses: []*requestbridge.WireResponse{
		mock.JSONResponse(200, `{"ok":true}`),
	}}
	c := newTestClient(mt)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background(), "/data")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Send failed: %v", err)
		}
	}
	if got := len(mt.Requests()); got != 16 {
		t.Fatalf("transport saw %d requests, want 16", got)
	}
}
